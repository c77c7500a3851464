package dialogue

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/devSereneMINDS/Backend-Serene-MINDS/internal/clients"
	"github.com/devSereneMINDS/Backend-Serene-MINDS/internal/notify"
	"github.com/devSereneMINDS/Backend-Serene-MINDS/internal/professionals"
	"github.com/devSereneMINDS/Backend-Serene-MINDS/pkg/logging"
)

// WhatsApp campaign templates driven by the dialogue flows.
const (
	campaignClientOnboarding    = "client_onboarding"
	campaignServicesCatalogue   = "services_catalogue"
	campaignProfessionalProfile = "professional_profile"
	campaignBookingLinkShare    = "booking_link_share"
)

// Canned utterances. The fallback text doubles as the 500 body so the
// conversational channel never sees a bare error.
const (
	utterFallback     = "I'm sorry, I didn't quite get that. Could you say it again?"
	utterWelcome      = "Hi! I'm the Serene MINDS assistant. I can help you find a psychologist or a wellness buddy. To get started, just say \"register me\"."
	utterAskName      = "Happy to help! What's your name?"
	utterAskNameAgain = "Sorry, I didn't catch your name. What should I call you?"
	utterAskAge       = "How old are you?"
	utterAskAgeAgain  = "Sorry, I didn't catch that. How old are you?"
	utterAskCity      = "Got it. Which city are you in?"
	utterAskCityAgain = "Sorry, I didn't catch the city. Which city are you in?"
	utterAgeInvalid   = "That age doesn't look right. How old are you?"
	utterBookGuard    = "I don't have a professional picked out for you yet. Ask me to suggest one first!"
)

type professionalFinder interface {
	FindRandom(ctx context.Context, expertise string) (*professionals.Professional, error)
}

type clientStore interface {
	FindByPhone(ctx context.Context, phone string) (*clients.Client, error)
	UpsertByPhone(ctx context.Context, phone string, fields clients.UpsertFields) (*clients.Client, error)
}

type campaignSender interface {
	Send(ctx context.Context, msg notify.WhatsAppMessage) error
}

// turn is one webhook invocation's worth of input, extracted once by the
// controller and threaded through every flow handler.
type turn struct {
	session   string
	queryText string
	params    map[string]any
	contexts  []Context
	phone     string
}

// Handler is the webhook controller for the conversational platform. It owns
// no session state: all continuity rides in the request's contexts.
type Handler struct {
	matcher professionalFinder
	clients clientStore
	sender  campaignSender
	logger  *logging.Logger

	countryCallingCode string
	bookingBaseURL     string
	fallbackExpertise  string
	defaultPhotoURL    string

	// observe, when set, receives (intent display name, "ok"|"error") per turn.
	observe func(intent, outcome string)
}

// HandlerConfig wires the webhook controller.
type HandlerConfig struct {
	Matcher            professionalFinder
	Clients            clientStore
	Sender             campaignSender
	Logger             *logging.Logger
	CountryCallingCode string
	BookingBaseURL     string
	FallbackExpertise  string
	DefaultPhotoURL    string
	Observer           func(intent, outcome string)
}

// NewHandler creates the webhook controller.
func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.CountryCallingCode == "" {
		cfg.CountryCallingCode = "91"
	}
	if cfg.FallbackExpertise == "" {
		cfg.FallbackExpertise = professionals.ExpertiseWellnessBuddy
	}
	return &Handler{
		matcher:            cfg.Matcher,
		clients:            cfg.Clients,
		sender:             cfg.Sender,
		logger:             cfg.Logger,
		countryCallingCode: cfg.CountryCallingCode,
		bookingBaseURL:     cfg.BookingBaseURL,
		fallbackExpertise:  cfg.FallbackExpertise,
		defaultPhotoURL:    cfg.DefaultPhotoURL,
		observe:            cfg.Observer,
	}
}

var errMissingIntent = errors.New("dialogue: request has no intent display name")

// Webhook handles POST /api/webhook. Recognized turns always answer 200 with
// a fulfillment body; a missing intent name, a panic, or a critical-path
// database failure answers 500 with the fallback utterance instead of a raw
// error.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	var req WebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("webhook body undecodable", "error", err)
		h.respondFallback(w)
		return
	}

	displayName := req.QueryResult.Intent.DisplayName
	resp, err := h.handleTurn(r.Context(), &req)
	if err != nil {
		h.logger.Error("webhook turn failed", "intent", displayName, "error", err)
		h.observeTurn(displayName, "error")
		h.respondFallback(w)
		return
	}
	h.observeTurn(displayName, "ok")
	writeResponse(w, http.StatusOK, resp)
}

func (h *Handler) handleTurn(ctx context.Context, req *WebhookRequest) (resp *WebhookResponse, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("webhook handler panicked", "panic", rec)
			resp, err = nil, errors.New("dialogue: handler panic")
		}
	}()

	if req.QueryResult.Intent.DisplayName == "" {
		return nil, errMissingIntent
	}

	t := &turn{
		session:   req.Session,
		queryText: req.QueryResult.QueryText,
		params:    req.QueryResult.Parameters,
		contexts:  req.QueryResult.OutputContexts,
		phone:     NormalizePhone(phoneFromPayload(req.OriginalDetectIntentRequest.Payload), h.countryCallingCode),
	}

	switch intent := ParseIntent(req.QueryResult.Intent.DisplayName); intent {
	case IntentWelcome:
		return h.handleWelcome(ctx, t), nil
	case IntentFallback:
		return &WebhookResponse{FulfillmentText: utterFallback}, nil
	case IntentGetUserInfo:
		return h.handleGetUserInfo(t), nil
	case IntentGetUserName:
		return h.handleGetUserName(t), nil
	case IntentGetUserAge:
		return h.handleGetUserAge(t), nil
	case IntentGetUserCity:
		return h.handleGetUserCity(ctx, t)
	case IntentGetClinical:
		return h.suggest(ctx, t, professionals.ExpertiseClinical)
	case IntentGetCounseling:
		return h.suggest(ctx, t, professionals.ExpertiseCounseling)
	case IntentGetScholar:
		return h.suggest(ctx, t, professionals.ExpertiseWellnessBuddy)
	case IntentBookSession:
		return h.handleBookSession(ctx, t), nil
	case IntentSuggestAnother:
		return h.handleSuggestAnother(ctx, t)
	default:
		return &WebhookResponse{FulfillmentText: utterFallback}, nil
	}
}

// handleWelcome greets returning users by name when the caller's number maps
// to a known client. Lookup failures degrade to the generic greeting; the
// welcome turn has no critical-path persistence.
func (h *Handler) handleWelcome(ctx context.Context, t *turn) *WebhookResponse {
	if t.phone == "" {
		return &WebhookResponse{FulfillmentText: utterWelcome}
	}
	rec, err := h.clients.FindByPhone(ctx, t.phone)
	if err != nil {
		if !errors.Is(err, clients.ErrNotFound) {
			h.logger.Warn("welcome lookup failed", "error", err)
		}
		return &WebhookResponse{FulfillmentText: utterWelcome}
	}
	known := Context{
		Name:          qualifiedContextName(t.session, ctxKnownUser),
		LifespanCount: 5,
		Parameters:    map[string]any{"client_id": rec.ID, "name": rec.Name},
	}
	return &WebhookResponse{
		FulfillmentText: "Welcome back, " + rec.Name + "! How can I help you today?",
		OutputContexts:  []Context{known},
	}
}

// phoneFromPayload digs the caller's number out of the channel-specific
// payload. WhatsApp channels report it either at the top level or nested
// under the message envelope; its absence is normal for test consoles.
func phoneFromPayload(payload map[string]any) string {
	if payload == nil {
		return ""
	}
	keys := []string{"phone", "from", "sender"}
	if s := stringParam(payload, keys...); s != "" {
		return s
	}
	for _, nest := range []string{"data", "message"} {
		if m, ok := payload[nest].(map[string]any); ok {
			if s := stringParam(m, keys...); s != "" {
				return s
			}
		}
	}
	return ""
}

func (h *Handler) respondFallback(w http.ResponseWriter) {
	writeResponse(w, http.StatusInternalServerError, &WebhookResponse{FulfillmentText: utterFallback})
}

func (h *Handler) observeTurn(intent, outcome string) {
	if h.observe != nil {
		h.observe(intent, outcome)
	}
}

func writeResponse(w http.ResponseWriter, status int, resp *WebhookResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
