package dialogue

import (
	"strconv"
	"strings"
)

// WebhookRequest mirrors the fulfillment payload POSTed by the
// conversational platform on every turn.
type WebhookRequest struct {
	Session     string `json:"session"`
	QueryResult struct {
		QueryText      string         `json:"queryText"`
		Parameters     map[string]any `json:"parameters"`
		OutputContexts []Context      `json:"outputContexts"`
		Intent         struct {
			DisplayName string `json:"displayName"`
		} `json:"intent"`
	} `json:"queryResult"`
	OriginalDetectIntentRequest struct {
		Payload map[string]any `json:"payload"`
	} `json:"originalDetectIntentRequest"`
}

// WebhookResponse is the structured body returned to the platform.
type WebhookResponse struct {
	FulfillmentText string         `json:"fulfillmentText"`
	OutputContexts  []Context      `json:"outputContexts,omitempty"`
	Payload         map[string]any `json:"payload,omitempty"`
}

// Context is a named, time-limited bag of parameters carried between turns.
// The platform round-trips every context whose lifespan has not expired, so
// a flow that wants state on the next turn must re-emit its context here.
type Context struct {
	Name          string         `json:"name"`
	LifespanCount int            `json:"lifespanCount"`
	Parameters    map[string]any `json:"parameters,omitempty"`
}

// Context short names used by the flows.
const (
	ctxCollectUserInfo      = "collect_user_info"
	ctxSelectedProfessional = "selected_professional"
	ctxKnownUser            = "known_user"
)

// contextShortName returns the trailing segment of a fully qualified context
// name ("projects/.../sessions/.../contexts/<short>").
func contextShortName(full string) string {
	if idx := strings.LastIndex(full, "/"); idx >= 0 {
		return full[idx+1:]
	}
	return full
}

// qualifiedContextName builds the wire name for a context within a session.
func qualifiedContextName(session, short string) string {
	if session == "" {
		return short
	}
	return session + "/contexts/" + short
}

// findContext returns the first context with the given short name, or nil.
func findContext(contexts []Context, short string) *Context {
	for i := range contexts {
		if contextShortName(contexts[i].Name) == short && contexts[i].LifespanCount > 0 {
			return &contexts[i]
		}
	}
	return nil
}

// stringParam extracts a parameter as a string, unwrapping the platform's
// occasional {"name": "..."} person objects.
func stringParam(params map[string]any, keys ...string) string {
	for _, key := range keys {
		v, ok := params[key]
		if !ok {
			continue
		}
		switch val := v.(type) {
		case string:
			if s := strings.TrimSpace(val); s != "" {
				return s
			}
		case map[string]any:
			if name, ok := val["name"].(string); ok {
				if s := strings.TrimSpace(name); s != "" {
					return s
				}
			}
		case float64:
			return strconv.FormatFloat(val, 'f', -1, 64)
		}
	}
	return ""
}
