package dialogue

import (
	"context"
	"strconv"
	"strings"

	"github.com/devSereneMINDS/Backend-Serene-MINDS/internal/notify"
	"github.com/devSereneMINDS/Backend-Serene-MINDS/internal/professionals"
)

// selectedProfessional is the typed form of the selected_professional context.
// It caches the match shown in the current conversation so the follow-up
// intents (book, suggest another) do not re-query the directory.
type selectedProfessional struct {
	ID          int64
	Name        string
	Expertise   string
	PhotoURL    string
	BookingLink string
}

func selectionFromContext(contexts []Context) *selectedProfessional {
	c := findContext(contexts, ctxSelectedProfessional)
	if c == nil {
		return nil
	}
	id, _ := strconv.ParseInt(stringParam(c.Parameters, "id"), 10, 64)
	return &selectedProfessional{
		ID:          id,
		Name:        stringParam(c.Parameters, "name"),
		Expertise:   stringParam(c.Parameters, "area_of_expertise"),
		PhotoURL:    stringParam(c.Parameters, "photo_url"),
		BookingLink: stringParam(c.Parameters, "booking_link"),
	}
}

func (s *selectedProfessional) toContext(session string) Context {
	return Context{
		Name:          qualifiedContextName(session, ctxSelectedProfessional),
		LifespanCount: selectionLifespan,
		Parameters: map[string]any{
			"id":                strconv.FormatInt(s.ID, 10),
			"name":              s.Name,
			"area_of_expertise": s.Expertise,
			"photo_url":         s.PhotoURL,
			"booking_link":      s.BookingLink,
		},
	}
}

const selectionLifespan = 5

// suggest picks a random professional for the expertise tag, shares the
// profile card over WhatsApp, and emits the selected_professional context.
// Zero matches is a conversational dead end, not an error.
func (h *Handler) suggest(ctx context.Context, t *turn, expertise string) (*WebhookResponse, error) {
	prof, err := h.matcher.FindRandom(ctx, expertise)
	if err != nil {
		return nil, err
	}
	if prof == nil {
		return &WebhookResponse{FulfillmentText: noneFoundText(expertise)}, nil
	}

	languages := strings.Join(prof.Languages, ", ")
	if languages == "" {
		languages = "English, Hindi"
	}
	photo := prof.PhotoURL
	if photo == "" {
		photo = h.defaultPhotoURL
	}
	sel := &selectedProfessional{
		ID:          prof.ID,
		Name:        prof.FullName,
		Expertise:   prof.AreaOfExpertise,
		PhotoURL:    photo,
		BookingLink: h.bookingBaseURL + "/" + strconv.FormatInt(prof.ID, 10),
	}

	if err := h.sender.Send(ctx, notify.WhatsAppMessage{
		CampaignName:   campaignProfessionalProfile,
		Destination:    t.phone,
		TemplateParams: []string{prof.FullName, prof.AreaOfExpertise, languages},
		Media:          &notify.Media{URL: photo, Filename: "profile.jpg"},
	}); err != nil {
		h.logger.Warn("profile whatsapp dropped", "destination", t.phone, "error", err)
	}

	text := "I'd recommend " + prof.FullName + ", a " + prof.AreaOfExpertise +
		" who speaks " + languages + ". I've shared their profile on WhatsApp. Shall I book a session for you?"
	return &WebhookResponse{
		FulfillmentText: text,
		OutputContexts:  []Context{sel.toContext(t.session)},
	}, nil
}

// handleBookSession requires a prior suggestion. The booked state is terminal
// for the sub-flow: no context is re-emitted, so a repeat booking request
// lands back on the guard.
func (h *Handler) handleBookSession(ctx context.Context, t *turn) *WebhookResponse {
	sel := selectionFromContext(t.contexts)
	if sel == nil {
		return &WebhookResponse{FulfillmentText: utterBookGuard}
	}

	if err := h.sender.Send(ctx, notify.WhatsAppMessage{
		CampaignName:   campaignBookingLinkShare,
		Destination:    t.phone,
		TemplateParams: []string{sel.Name, sel.BookingLink},
	}); err != nil {
		h.logger.Warn("booking link whatsapp dropped", "destination", t.phone, "error", err)
	}

	return &WebhookResponse{
		FulfillmentText: "Great choice! Book your session with " + sel.Name + " here: " + sel.BookingLink,
	}
}

// handleSuggestAnother re-rolls within the category cached in the selection
// context, falling back to the configured default category when no selection
// is in flight. Repeats of the same professional are possible.
func (h *Handler) handleSuggestAnother(ctx context.Context, t *turn) (*WebhookResponse, error) {
	expertise := h.fallbackExpertise
	if sel := selectionFromContext(t.contexts); sel != nil && sel.Expertise != "" {
		expertise = sel.Expertise
	}
	return h.suggest(ctx, t, expertise)
}

func noneFoundText(expertise string) string {
	label := expertise
	if label == "" {
		label = professionals.ExpertiseWellnessBuddy
	}
	return "Sorry, we don't have a " + label + " available right now. Would you like to try another category?"
}
