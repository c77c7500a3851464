package otp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/devSereneMINDS/Backend-Serene-MINDS/internal/notify"
	"github.com/devSereneMINDS/Backend-Serene-MINDS/pkg/logging"
)

// campaignProfessionalAuth carries the OTP to the professional on WhatsApp.
const campaignProfessionalAuth = "professional_authentication"

type codeStore interface {
	Generate(ctx context.Context, email string) (string, error)
	Verify(ctx context.Context, email, code string) error
}

type campaignSender interface {
	Send(ctx context.Context, msg notify.WhatsAppMessage) error
}

// Handler exposes OTP generation and verification for professional sign-in.
// The code travels over email and, when a phone is supplied, WhatsApp too.
type Handler struct {
	store    codeStore
	email    notify.EmailSender
	whatsapp campaignSender
	logger   *logging.Logger
}

// NewHandler creates an OTP handler.
func NewHandler(store codeStore, email notify.EmailSender, whatsapp campaignSender, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, email: email, whatsapp: whatsapp, logger: logger}
}

type generateRequest struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
	Name  string `json:"name"`
}

// Generate handles POST /api/otp/generate. The code itself never appears in
// the response body.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" {
		http.Error(w, "email is required", http.StatusBadRequest)
		return
	}

	code, err := h.store.Generate(r.Context(), req.Email)
	if err != nil {
		h.logger.Error("otp generate failed", "error", err)
		http.Error(w, "failed to generate code", http.StatusInternalServerError)
		return
	}

	if err := h.email.Send(r.Context(), notify.EmailMessage{
		To:      req.Email,
		ToName:  req.Name,
		Subject: "Your Serene MINDS verification code",
		Body:    fmt.Sprintf("Your verification code is %s. It expires in 5 minutes.", code),
	}); err != nil {
		h.logger.Error("otp email failed", "error", err)
		http.Error(w, "failed to deliver code", http.StatusInternalServerError)
		return
	}

	if h.whatsapp != nil && req.Phone != "" {
		if err := h.whatsapp.Send(r.Context(), notify.WhatsAppMessage{
			CampaignName:   campaignProfessionalAuth,
			Destination:    req.Phone,
			TemplateParams: []string{code},
		}); err != nil {
			h.logger.Warn("otp whatsapp dropped", "destination", req.Phone, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "OTP sent"})
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// Verify handles POST /api/otp/verify.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Code == "" {
		http.Error(w, "email and code are required", http.StatusBadRequest)
		return
	}

	if err := h.store.Verify(r.Context(), req.Email, req.Code); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			http.Error(w, "code expired or not requested", http.StatusGone)
		case errors.Is(err, ErrMismatch):
			http.Error(w, "incorrect code", http.StatusUnauthorized)
		default:
			h.logger.Error("otp verify failed", "error", err)
			http.Error(w, "failed to verify code", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "OTP verified"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
