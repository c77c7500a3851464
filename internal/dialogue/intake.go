package dialogue

import (
	"context"
	"strconv"
	"strings"

	"github.com/devSereneMINDS/Backend-Serene-MINDS/internal/clients"
	"github.com/devSereneMINDS/Backend-Serene-MINDS/internal/notify"
)

// Intake flow steps, carried inside the collect_user_info context so the
// stateless webhook can resume the flow on the next turn.
const (
	stepName = "name"
	stepAge  = "age"
	stepCity = "city"
)

// intakeState is the typed form of the collect_user_info context. Age stays a
// string until the city step, where the whole record is validated before the
// client row is written.
type intakeState struct {
	Step     string
	Name     string
	Age      string
	Location string
}

// intakeFromContext decodes the collect_user_info context, or returns nil
// when the flow is not in progress.
func intakeFromContext(contexts []Context) *intakeState {
	c := findContext(contexts, ctxCollectUserInfo)
	if c == nil {
		return nil
	}
	return &intakeState{
		Step:     stringParam(c.Parameters, "step"),
		Name:     stringParam(c.Parameters, "name"),
		Age:      stringParam(c.Parameters, "age"),
		Location: stringParam(c.Parameters, "location"),
	}
}

// toContext re-emits the state for the next turn. A handler that drops this
// call ends the flow: the platform expires contexts that are not re-emitted.
func (s *intakeState) toContext(session string) Context {
	return Context{
		Name:          qualifiedContextName(session, ctxCollectUserInfo),
		LifespanCount: intakeLifespan,
		Parameters: map[string]any{
			"step":     s.Step,
			"name":     s.Name,
			"age":      s.Age,
			"location": s.Location,
		},
	}
}

const intakeLifespan = 5

func (h *Handler) handleGetUserInfo(t *turn) *WebhookResponse {
	st := &intakeState{Step: stepName}
	return &WebhookResponse{
		FulfillmentText: utterAskName,
		OutputContexts:  []Context{st.toContext(t.session)},
	}
}

func (h *Handler) handleGetUserName(t *turn) *WebhookResponse {
	st := intakeFromContext(t.contexts)
	if st == nil {
		st = &intakeState{Step: stepName}
	}
	name := stringParam(t.params, "person", "name", "any")
	if name == "" {
		name = strings.TrimSpace(t.queryText)
	}
	if name == "" {
		st.Step = stepName
		return &WebhookResponse{
			FulfillmentText: utterAskNameAgain,
			OutputContexts:  []Context{st.toContext(t.session)},
		}
	}
	st.Name = name
	st.Step = stepAge
	return &WebhookResponse{
		FulfillmentText: "Nice to meet you, " + name + "! " + utterAskAge,
		OutputContexts:  []Context{st.toContext(t.session)},
	}
}

func (h *Handler) handleGetUserAge(t *turn) *WebhookResponse {
	st := intakeFromContext(t.contexts)
	if st == nil {
		st = &intakeState{}
	}
	age := stringParam(t.params, "age", "number")
	if age == "" {
		age = strings.TrimSpace(t.queryText)
	}
	if age == "" {
		st.Step = stepAge
		return &WebhookResponse{
			FulfillmentText: utterAskAgeAgain,
			OutputContexts:  []Context{st.toContext(t.session)},
		}
	}
	st.Age = age
	st.Step = stepCity
	return &WebhookResponse{
		FulfillmentText: utterAskCity,
		OutputContexts:  []Context{st.toContext(t.session)},
	}
}

// handleGetUserCity closes the intake flow: the carried-forward age is
// validated here, the client row is upserted, and the welcome plus catalogue
// campaigns go out in that order. Persistence waits until name, age, and city
// are all in hand so an abandoned flow leaves no partial record behind.
func (h *Handler) handleGetUserCity(ctx context.Context, t *turn) (*WebhookResponse, error) {
	st := intakeFromContext(t.contexts)
	if st == nil || st.Name == "" {
		fresh := &intakeState{Step: stepName}
		return &WebhookResponse{
			FulfillmentText: utterAskName,
			OutputContexts:  []Context{fresh.toContext(t.session)},
		}, nil
	}

	city := stringParam(t.params, "geo-city", "city", "location")
	if city == "" {
		city = strings.TrimSpace(t.queryText)
	}
	if city == "" {
		st.Step = stepCity
		return &WebhookResponse{
			FulfillmentText: utterAskCityAgain,
			OutputContexts:  []Context{st.toContext(t.session)},
		}, nil
	}

	age, err := strconv.Atoi(strings.TrimSpace(st.Age))
	if err != nil || age <= 0 || age > 150 {
		st.Step = stepAge
		st.Age = ""
		return &WebhookResponse{
			FulfillmentText: utterAgeInvalid,
			OutputContexts:  []Context{st.toContext(t.session)},
		}, nil
	}
	st.Location = city

	// Some channels do not supply the caller's number. Without an identity
	// key there is nothing to upsert against, so the turn completes with
	// the confirmation alone.
	if t.phone == "" {
		h.logger.Warn("intake finished without caller phone", "session", t.session)
		return &WebhookResponse{FulfillmentText: registeredText(st.Name)}, nil
	}

	rec, err := h.clients.UpsertByPhone(ctx, t.phone, clients.UpsertFields{
		Name: &st.Name,
		Age:  &age,
		City: &city,
	})
	if err != nil {
		return nil, err
	}

	if err := h.sender.Send(ctx, notify.WhatsAppMessage{
		CampaignName:   campaignClientOnboarding,
		Destination:    rec.PhoneNo,
		TemplateParams: []string{rec.Name},
	}); err != nil {
		h.logger.Warn("onboarding whatsapp dropped", "destination", rec.PhoneNo, "error", err)
	}
	if err := h.sender.Send(ctx, notify.WhatsAppMessage{
		CampaignName:   campaignServicesCatalogue,
		Destination:    rec.PhoneNo,
		TemplateParams: []string{rec.Name},
	}); err != nil {
		h.logger.Warn("catalogue whatsapp dropped", "destination", rec.PhoneNo, "error", err)
	}

	return &WebhookResponse{FulfillmentText: registeredText(rec.Name)}, nil
}

func registeredText(name string) string {
	return "Thank you, " + name + "! You're all set. I've sent our services catalogue to your WhatsApp. How can I help you today?"
}
