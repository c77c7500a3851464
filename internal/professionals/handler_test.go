package professionals

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/devSereneMINDS/Backend-Serene-MINDS/internal/notify"
	"github.com/devSereneMINDS/Backend-Serene-MINDS/pkg/logging"
)

type stubDirectory struct {
	created *Professional
	err     error
}

func (s *stubDirectory) List(context.Context) ([]*Professional, error) { return nil, s.err }

func (s *stubDirectory) GetByID(context.Context, int64) (*Professional, error) {
	return s.created, s.err
}

func (s *stubDirectory) Create(_ context.Context, req *CreateRequest) (*Professional, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	s.created = &Professional{
		ID:              11,
		FullName:        req.FullName,
		Email:           req.Email,
		Phone:           req.Phone,
		AreaOfExpertise: req.AreaOfExpertise,
	}
	return s.created, nil
}

func (s *stubDirectory) Update(context.Context, int64, map[string]any) (*Professional, error) {
	return nil, s.err
}

func (s *stubDirectory) Delete(context.Context, int64) error { return s.err }

type stubNotifier struct {
	sent []notify.WhatsAppMessage
	err  error
}

func (s *stubNotifier) Send(_ context.Context, msg notify.WhatsAppMessage) error {
	s.sent = append(s.sent, msg)
	return s.err
}

func postCreate(t *testing.T, h *Handler, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/professionals", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	return rec
}

func TestCreateSendsOnboardingMessage(t *testing.T) {
	dir := &stubDirectory{}
	notifier := &stubNotifier{}
	h := NewHandler(dir, notifier, logging.New("error"))

	rec := postCreate(t, h, CreateRequest{
		FullName:        "Aditi Sharma",
		Email:           "aditi@example.com",
		Phone:           "919900112235",
		AreaOfExpertise: ExpertiseWellnessBuddy,
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(notifier.sent))
	}
	msg := notifier.sent[0]
	if msg.CampaignName != "professional_onboarding" || msg.Destination != "919900112235" {
		t.Fatalf("message = %+v", msg)
	}
}

func TestCreateSucceedsWhenOnboardingMessageFails(t *testing.T) {
	dir := &stubDirectory{}
	notifier := &stubNotifier{err: errors.New("gateway down")}
	h := NewHandler(dir, notifier, logging.New("error"))

	rec := postCreate(t, h, CreateRequest{
		FullName:        "Aditi Sharma",
		Email:           "aditi@example.com",
		Phone:           "919900112235",
		AreaOfExpertise: ExpertiseWellnessBuddy,
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
}

func TestCreateRejectsMissingFields(t *testing.T) {
	h := NewHandler(&stubDirectory{}, &stubNotifier{}, logging.New("error"))

	rec := postCreate(t, h, CreateRequest{Email: "aditi@example.com"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetUnknownProfessional(t *testing.T) {
	h := NewHandler(&stubDirectory{err: ErrNotFound}, nil, logging.New("error"))

	req := withIDParam(httptest.NewRequest(http.MethodGet, "/api/professionals/9", nil), "9")
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
