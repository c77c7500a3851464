package dialogue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/devSereneMINDS/Backend-Serene-MINDS/internal/clients"
	"github.com/devSereneMINDS/Backend-Serene-MINDS/internal/notify"
	"github.com/devSereneMINDS/Backend-Serene-MINDS/internal/professionals"
)

const testSession = "projects/serene/agent/sessions/abc123"

type stubMatcher struct {
	prof  *professionals.Professional
	err   error
	calls []string
}

func (s *stubMatcher) FindRandom(_ context.Context, expertise string) (*professionals.Professional, error) {
	s.calls = append(s.calls, expertise)
	return s.prof, s.err
}

type stubClients struct {
	found     *clients.Client
	findErr   error
	upserted  *clients.Client
	upsertErr error

	upsertPhones []string
	upsertFields []clients.UpsertFields
}

func (s *stubClients) FindByPhone(context.Context, string) (*clients.Client, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.found == nil {
		return nil, clients.ErrNotFound
	}
	return s.found, nil
}

func (s *stubClients) UpsertByPhone(_ context.Context, phone string, fields clients.UpsertFields) (*clients.Client, error) {
	s.upsertPhones = append(s.upsertPhones, phone)
	s.upsertFields = append(s.upsertFields, fields)
	if s.upsertErr != nil {
		return nil, s.upsertErr
	}
	if s.upserted != nil {
		return s.upserted, nil
	}
	rec := &clients.Client{ID: 1, PhoneNo: phone}
	if fields.Name != nil {
		rec.Name = *fields.Name
	}
	if fields.Age != nil {
		rec.Age = fields.Age
	}
	if fields.City != nil {
		rec.City = *fields.City
	}
	return rec, nil
}

type stubSender struct {
	sent []notify.WhatsAppMessage
	err  error
}

func (s *stubSender) Send(_ context.Context, msg notify.WhatsAppMessage) error {
	s.sent = append(s.sent, msg)
	return s.err
}

type fixture struct {
	handler *Handler
	matcher *stubMatcher
	clients *stubClients
	sender  *stubSender
}

func newFixture() *fixture {
	f := &fixture{
		matcher: &stubMatcher{},
		clients: &stubClients{},
		sender:  &stubSender{},
	}
	f.handler = NewHandler(HandlerConfig{
		Matcher:         f.matcher,
		Clients:         f.clients,
		Sender:          f.sender,
		BookingBaseURL:  "https://sereneminds.life/book",
		DefaultPhotoURL: "https://assets.example.com/default.png",
	})
	return f
}

type turnRequest struct {
	intent   string
	params   map[string]any
	contexts []Context
	phone    string
	query    string
}

func (tr turnRequest) body(t *testing.T) []byte {
	t.Helper()
	payload := map[string]any{}
	if tr.phone != "" {
		payload["phone"] = tr.phone
	}
	req := map[string]any{
		"session": testSession,
		"queryResult": map[string]any{
			"queryText":      tr.query,
			"parameters":     tr.params,
			"outputContexts": tr.contexts,
			"intent":         map[string]any{"displayName": tr.intent},
		},
		"originalDetectIntentRequest": map[string]any{"payload": payload},
	}
	b, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	return b
}

func postTurn(t *testing.T, h *Handler, tr turnRequest) (int, WebhookResponse) {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/api/webhook", bytes.NewReader(tr.body(t)))
	w := httptest.NewRecorder()
	h.Webhook(w, r)
	var resp WebhookResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return w.Code, resp
}

func TestWebhookUnknownIntentFallsBack(t *testing.T) {
	f := newFixture()
	code, resp := postTurn(t, f.handler, turnRequest{intent: "orderPizza"})
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if resp.FulfillmentText != utterFallback {
		t.Fatalf("text = %q, want fallback utterance", resp.FulfillmentText)
	}
}

func TestWebhookMissingIntentIs500(t *testing.T) {
	f := newFixture()
	code, resp := postTurn(t, f.handler, turnRequest{})
	if code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", code)
	}
	if resp.FulfillmentText != utterFallback {
		t.Fatalf("text = %q, want fallback utterance", resp.FulfillmentText)
	}
}

func TestWebhookUpsertFailureIs500WithFallback(t *testing.T) {
	f := newFixture()
	f.clients.upsertErr = errors.New("connection refused")
	st := intakeState{Step: stepCity, Name: "Asha", Age: "29"}
	code, resp := postTurn(t, f.handler, turnRequest{
		intent:   displayGetUserCity,
		params:   map[string]any{"geo-city": "Pune"},
		contexts: []Context{st.toContext(testSession)},
		phone:    "919876543210",
	})
	if code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", code)
	}
	if resp.FulfillmentText != utterFallback {
		t.Fatalf("text = %q, want fallback utterance", resp.FulfillmentText)
	}
}

func TestIntakeFlowEndToEnd(t *testing.T) {
	f := newFixture()
	phone := "+91 98765-43210"

	_, resp := postTurn(t, f.handler, turnRequest{intent: displayGetUserInfo, phone: phone})
	if resp.FulfillmentText != utterAskName {
		t.Fatalf("step 1 text = %q", resp.FulfillmentText)
	}

	_, resp = postTurn(t, f.handler, turnRequest{
		intent:   displayGetUserName,
		params:   map[string]any{"person": map[string]any{"name": "Asha"}},
		contexts: resp.OutputContexts,
		phone:    phone,
	})
	if !strings.Contains(resp.FulfillmentText, "Asha") {
		t.Fatalf("step 2 text = %q, want name echoed", resp.FulfillmentText)
	}

	_, resp = postTurn(t, f.handler, turnRequest{
		intent:   displayGetUserAge,
		params:   map[string]any{"age": 29},
		contexts: resp.OutputContexts,
		phone:    phone,
	})
	if resp.FulfillmentText != utterAskCity {
		t.Fatalf("step 3 text = %q", resp.FulfillmentText)
	}

	code, resp := postTurn(t, f.handler, turnRequest{
		intent:   displayGetUserCity,
		params:   map[string]any{"geo-city": "Pune"},
		contexts: resp.OutputContexts,
		phone:    phone,
	})
	if code != http.StatusOK {
		t.Fatalf("final status = %d, want 200", code)
	}
	if len(resp.OutputContexts) != 0 {
		t.Fatalf("final turn re-emitted %d contexts, flow should end", len(resp.OutputContexts))
	}

	if len(f.clients.upsertPhones) != 1 {
		t.Fatalf("upsert called %d times, want 1", len(f.clients.upsertPhones))
	}
	if got := f.clients.upsertPhones[0]; got != "919876543210" {
		t.Fatalf("upsert phone = %q, want normalized form", got)
	}
	fields := f.clients.upsertFields[0]
	if fields.Name == nil || *fields.Name != "Asha" {
		t.Fatalf("upsert name = %v, want Asha", fields.Name)
	}
	if fields.Age == nil || *fields.Age != 29 {
		t.Fatalf("upsert age = %v, want 29", fields.Age)
	}
	if fields.City == nil || *fields.City != "Pune" {
		t.Fatalf("upsert city = %v, want Pune", fields.City)
	}

	if len(f.sender.sent) != 2 {
		t.Fatalf("sent %d campaigns, want 2", len(f.sender.sent))
	}
	if f.sender.sent[0].CampaignName != campaignClientOnboarding {
		t.Fatalf("first campaign = %q, want %q", f.sender.sent[0].CampaignName, campaignClientOnboarding)
	}
	if f.sender.sent[1].CampaignName != campaignServicesCatalogue {
		t.Fatalf("second campaign = %q, want %q", f.sender.sent[1].CampaignName, campaignServicesCatalogue)
	}
}

func TestIntakeInvalidAgeReprompts(t *testing.T) {
	for _, age := range []string{"abc", "0", "-4", "200"} {
		f := newFixture()
		st := intakeState{Step: stepCity, Name: "Asha", Age: age}
		code, resp := postTurn(t, f.handler, turnRequest{
			intent:   displayGetUserCity,
			params:   map[string]any{"geo-city": "Pune"},
			contexts: []Context{st.toContext(testSession)},
			phone:    "919876543210",
		})
		if code != http.StatusOK {
			t.Fatalf("age %q: status = %d, want 200", age, code)
		}
		if resp.FulfillmentText != utterAgeInvalid {
			t.Fatalf("age %q: text = %q, want re-prompt", age, resp.FulfillmentText)
		}
		next := intakeFromContext(resp.OutputContexts)
		if next == nil {
			t.Fatalf("age %q: context dropped, accumulated state lost", age)
		}
		if next.Step != stepAge || next.Name != "Asha" {
			t.Fatalf("age %q: context = %+v, want step back at age with name kept", age, next)
		}
		if len(f.clients.upsertPhones) != 0 {
			t.Fatalf("age %q: upsert ran on invalid age", age)
		}
	}
}

func TestIntakeNotificationFailureDoesNotFailTurn(t *testing.T) {
	f := newFixture()
	f.sender.err = errors.New("gateway timeout")
	st := intakeState{Step: stepCity, Name: "Asha", Age: "29"}
	code, resp := postTurn(t, f.handler, turnRequest{
		intent:   displayGetUserCity,
		params:   map[string]any{"geo-city": "Pune"},
		contexts: []Context{st.toContext(testSession)},
		phone:    "919876543210",
	})
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200 despite send failures", code)
	}
	if !strings.Contains(resp.FulfillmentText, "Asha") {
		t.Fatalf("text = %q, want confirmation", resp.FulfillmentText)
	}
}

func TestIntakeWithoutCallerPhoneSkipsUpsert(t *testing.T) {
	f := newFixture()
	st := intakeState{Step: stepCity, Name: "Asha", Age: "29"}
	code, _ := postTurn(t, f.handler, turnRequest{
		intent:   displayGetUserCity,
		params:   map[string]any{"geo-city": "Pune"},
		contexts: []Context{st.toContext(testSession)},
	})
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if len(f.clients.upsertPhones) != 0 {
		t.Fatal("upsert ran without an identity key")
	}
	if len(f.sender.sent) != 0 {
		t.Fatal("campaigns sent without a destination")
	}
}

func TestSuggestEmitsSelectionContext(t *testing.T) {
	f := newFixture()
	f.matcher.prof = &professionals.Professional{
		ID:              7,
		FullName:        "Dr. Mehta",
		AreaOfExpertise: professionals.ExpertiseClinical,
		Languages:       []string{"English", "Marathi"},
		PhotoURL:        "https://assets.example.com/mehta.jpg",
	}
	code, resp := postTurn(t, f.handler, turnRequest{
		intent: displayGetClinical,
		phone:  "919876543210",
	})
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	sel := selectionFromContext(resp.OutputContexts)
	if sel == nil {
		t.Fatal("no selected_professional context emitted")
	}
	if sel.ID != 7 || sel.Name != "Dr. Mehta" || sel.Expertise != professionals.ExpertiseClinical {
		t.Fatalf("selection = %+v", sel)
	}
	if sel.BookingLink != "https://sereneminds.life/book/7" {
		t.Fatalf("booking link = %q", sel.BookingLink)
	}
	if len(f.sender.sent) != 1 || f.sender.sent[0].CampaignName != campaignProfessionalProfile {
		t.Fatalf("sent = %+v, want one profile campaign", f.sender.sent)
	}
	if f.sender.sent[0].Media == nil || f.sender.sent[0].Media.URL != "https://assets.example.com/mehta.jpg" {
		t.Fatalf("profile campaign media = %+v", f.sender.sent[0].Media)
	}
}

func TestSuggestDefaultsLanguagesAndPhoto(t *testing.T) {
	f := newFixture()
	f.matcher.prof = &professionals.Professional{
		ID:              3,
		FullName:        "Ravi",
		AreaOfExpertise: professionals.ExpertiseWellnessBuddy,
	}
	_, resp := postTurn(t, f.handler, turnRequest{intent: displayGetScholar, phone: "919876543210"})
	if !strings.Contains(resp.FulfillmentText, "English, Hindi") {
		t.Fatalf("text = %q, want default language list", resp.FulfillmentText)
	}
	if f.sender.sent[0].Media.URL != "https://assets.example.com/default.png" {
		t.Fatalf("media = %+v, want default photo", f.sender.sent[0].Media)
	}
}

func TestSuggestNoMatchEmitsNoContext(t *testing.T) {
	f := newFixture()
	code, resp := postTurn(t, f.handler, turnRequest{intent: displayGetCounseling, phone: "919876543210"})
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if len(resp.OutputContexts) != 0 {
		t.Fatalf("contexts = %+v, want none on zero matches", resp.OutputContexts)
	}
	if len(f.sender.sent) != 0 {
		t.Fatal("campaign sent despite no match")
	}
	if !strings.Contains(resp.FulfillmentText, professionals.ExpertiseCounseling) {
		t.Fatalf("text = %q, want category named", resp.FulfillmentText)
	}
}

func TestBookWithoutSelectionHitsGuard(t *testing.T) {
	f := newFixture()
	code, resp := postTurn(t, f.handler, turnRequest{intent: displayBookSession, phone: "919876543210"})
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if resp.FulfillmentText != utterBookGuard {
		t.Fatalf("text = %q, want guard message", resp.FulfillmentText)
	}
	if len(f.sender.sent) != 0 {
		t.Fatal("booking campaign sent without a selection")
	}
}

func TestBookSharesBookingLink(t *testing.T) {
	f := newFixture()
	sel := selectedProfessional{
		ID:          7,
		Name:        "Dr. Mehta",
		Expertise:   professionals.ExpertiseClinical,
		BookingLink: "https://sereneminds.life/book/7",
	}
	_, resp := postTurn(t, f.handler, turnRequest{
		intent:   displayBookSession,
		contexts: []Context{sel.toContext(testSession)},
		phone:    "919876543210",
	})
	if !strings.Contains(resp.FulfillmentText, "https://sereneminds.life/book/7") {
		t.Fatalf("text = %q, want booking link", resp.FulfillmentText)
	}
	if len(resp.OutputContexts) != 0 {
		t.Fatal("booked turn re-emitted contexts, repeat booking should hit the guard")
	}
	if len(f.sender.sent) != 1 || f.sender.sent[0].CampaignName != campaignBookingLinkShare {
		t.Fatalf("sent = %+v, want booking link campaign", f.sender.sent)
	}
}

func TestSuggestAnotherReusesCachedCategory(t *testing.T) {
	f := newFixture()
	f.matcher.prof = &professionals.Professional{ID: 9, FullName: "Ira", AreaOfExpertise: professionals.ExpertiseCounseling}
	sel := selectedProfessional{ID: 2, Name: "Old", Expertise: professionals.ExpertiseCounseling}
	postTurn(t, f.handler, turnRequest{
		intent:   displaySuggestAnother,
		contexts: []Context{sel.toContext(testSession)},
		phone:    "919876543210",
	})
	if len(f.matcher.calls) != 1 || f.matcher.calls[0] != professionals.ExpertiseCounseling {
		t.Fatalf("matcher calls = %v, want cached category", f.matcher.calls)
	}
}

func TestSuggestAnotherWithoutSelectionUsesFallbackCategory(t *testing.T) {
	f := newFixture()
	f.matcher.prof = &professionals.Professional{ID: 9, FullName: "Ira", AreaOfExpertise: professionals.ExpertiseWellnessBuddy}
	postTurn(t, f.handler, turnRequest{intent: displaySuggestAnother, phone: "919876543210"})
	if len(f.matcher.calls) != 1 || f.matcher.calls[0] != professionals.ExpertiseWellnessBuddy {
		t.Fatalf("matcher calls = %v, want fallback category", f.matcher.calls)
	}
}

func TestWelcomeGreetsKnownUser(t *testing.T) {
	f := newFixture()
	f.clients.found = &clients.Client{ID: 4, Name: "Asha", PhoneNo: "919876543210"}
	_, resp := postTurn(t, f.handler, turnRequest{intent: displayWelcome, phone: "919876543210"})
	if !strings.Contains(resp.FulfillmentText, "Asha") {
		t.Fatalf("text = %q, want personalized greeting", resp.FulfillmentText)
	}
	if findContext(resp.OutputContexts, ctxKnownUser) == nil {
		t.Fatal("known_user context not emitted")
	}
}

func TestWelcomeLookupFailureDegrades(t *testing.T) {
	f := newFixture()
	f.clients.findErr = errors.New("connection refused")
	code, resp := postTurn(t, f.handler, turnRequest{intent: displayWelcome, phone: "919876543210"})
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if resp.FulfillmentText != utterWelcome {
		t.Fatalf("text = %q, want generic greeting", resp.FulfillmentText)
	}
}
