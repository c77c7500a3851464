package appointments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/devSereneMINDS/Backend-Serene-MINDS/internal/clients"
	"github.com/devSereneMINDS/Backend-Serene-MINDS/internal/notify"
	"github.com/devSereneMINDS/Backend-Serene-MINDS/internal/professionals"
	"github.com/devSereneMINDS/Backend-Serene-MINDS/pkg/logging"
)

// Confirmation campaigns sent after a booking is committed.
const (
	campaignProfessionalAppointment  = "professional_appointment"
	campaignClientAppointmentDetails = "client_appointment_details"
	campaignClientOnboardingFollowUp = "client_onboarding"
	appointmentTimeLayout            = "Mon, 02 Jan 2006 at 3:04 PM"
)

type store interface {
	Create(ctx context.Context, req *CreateRequest) (*Appointment, error)
	GetByID(ctx context.Context, id int64) (*Appointment, error)
	ListByClient(ctx context.Context, clientID int64) ([]*Appointment, error)
	ListByProfessional(ctx context.Context, professionalID int64) ([]*ProfessionalAppointment, error)
	UpdateStatus(ctx context.Context, id int64, status Status) (*Appointment, error)
	Delete(ctx context.Context, id int64) error
}

type clientDirectory interface {
	GetByID(ctx context.Context, id int64) (*clients.Client, error)
}

type professionalDirectory interface {
	GetByID(ctx context.Context, id int64) (*professionals.Professional, error)
}

type campaignSender interface {
	Send(ctx context.Context, msg notify.WhatsAppMessage) error
}

// Handler exposes appointment CRUD plus the confirmation fan-out. All
// notifications run after the row is committed and are best-effort: a failed
// email or campaign never rolls back or fails the booking.
type Handler struct {
	repo          store
	clients       clientDirectory
	professionals professionalDirectory
	email         notify.EmailSender
	whatsapp      campaignSender
	logger        *logging.Logger
}

// NewHandler creates an appointments handler.
func NewHandler(repo store, clientDir clientDirectory, profDir professionalDirectory, email notify.EmailSender, whatsapp campaignSender, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:          repo,
		clients:       clientDir,
		professionals: profDir,
		email:         email,
		whatsapp:      whatsapp,
		logger:        logger,
	}
}

// Create handles POST /api/appointments.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	appt, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("appointment create failed", "error", err)
		http.Error(w, "failed to create appointment", http.StatusInternalServerError)
		return
	}

	h.notifyBooked(r.Context(), appt)
	writeJSON(w, http.StatusCreated, appt)
}

// notifyBooked sends both confirmation emails and the three WhatsApp
// campaigns. Every failure is logged and swallowed.
func (h *Handler) notifyBooked(ctx context.Context, appt *Appointment) {
	client, err := h.clients.GetByID(ctx, appt.ClientID)
	if err != nil {
		h.logger.Warn("confirmation skipped, client lookup failed", "client_id", appt.ClientID, "error", err)
		return
	}
	prof, err := h.professionals.GetByID(ctx, appt.ProfessionalID)
	if err != nil {
		h.logger.Warn("confirmation skipped, professional lookup failed", "professional_id", appt.ProfessionalID, "error", err)
		return
	}
	when := appt.StartsAt.Format(appointmentTimeLayout)

	if h.email != nil {
		if err := h.email.Send(ctx, notify.EmailMessage{
			To:      prof.Email,
			ToName:  prof.FullName,
			Subject: "New appointment booked",
			Body:    fmt.Sprintf("Hi %s, %s booked a session with you on %s.", prof.FullName, client.Name, when),
		}); err != nil {
			h.logger.Warn("professional confirmation email dropped", "error", err)
		}
		if err := h.email.Send(ctx, notify.EmailMessage{
			To:      client.Email,
			ToName:  client.Name,
			Subject: "Your session is confirmed",
			Body:    fmt.Sprintf("Hi %s, your session with %s on %s is confirmed. Join here: %s", client.Name, prof.FullName, when, appt.MeetLink),
		}); err != nil {
			h.logger.Warn("client confirmation email dropped", "error", err)
		}
	}

	if h.whatsapp == nil {
		return
	}
	sends := []notify.WhatsAppMessage{
		{
			CampaignName:   campaignProfessionalAppointment,
			Destination:    prof.Phone,
			TemplateParams: []string{prof.FullName, client.Name, when},
		},
		{
			CampaignName:   campaignClientAppointmentDetails,
			Destination:    client.PhoneNo,
			TemplateParams: []string{client.Name, prof.FullName, when, appt.MeetLink},
		},
		{
			CampaignName:   campaignClientOnboardingFollowUp,
			Destination:    client.PhoneNo,
			TemplateParams: []string{client.Name},
		},
	}
	for _, msg := range sends {
		if err := h.whatsapp.Send(ctx, msg); err != nil {
			h.logger.Warn("confirmation whatsapp dropped", "campaign", msg.CampaignName, "error", err)
		}
	}
}

// Get handles GET /api/appointments/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	appt, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		h.logger.Error("appointment get failed", "error", err)
		http.Error(w, "failed to fetch appointment", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// ListByClient handles GET /api/appointments/client/{id}.
func (h *Handler) ListByClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	list, err := h.repo.ListByClient(r.Context(), id)
	if err != nil {
		h.logger.Error("appointment list by client failed", "error", err)
		http.Error(w, "failed to fetch appointments", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ListByProfessional handles GET /api/appointments/professional/{id}.
func (h *Handler) ListByProfessional(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	list, err := h.repo.ListByProfessional(r.Context(), id)
	if err != nil {
		h.logger.Error("appointment list by professional failed", "error", err)
		http.Error(w, "failed to fetch appointments", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// UpdateStatus handles PATCH /api/appointments/{id}/status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body struct {
		Status Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	appt, err := h.repo.UpdateStatus(r.Context(), id, body.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidStatus):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrNotFound):
			http.Error(w, "appointment not found", http.StatusNotFound)
		default:
			h.logger.Error("appointment status update failed", "error", err)
			http.Error(w, "failed to update appointment", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// Delete handles DELETE /api/appointments/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		h.logger.Error("appointment delete failed", "error", err)
		http.Error(w, "failed to delete appointment", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Appointment deleted successfully"})
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
