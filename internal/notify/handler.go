package notify

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/devSereneMINDS/Backend-Serene-MINDS/pkg/logging"
)

// Handler exposes the manual send endpoints: invitation email, custom email,
// and direct WhatsApp campaign sends.
type Handler struct {
	email      EmailSender
	dispatcher *Dispatcher
	logger     *logging.Logger
}

// NewHandler creates a notify handler.
func NewHandler(email EmailSender, dispatcher *Dispatcher, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{email: email, dispatcher: dispatcher, logger: logger}
}

type invitationRequest struct {
	Email            string `json:"email"`
	Content          string `json:"content"`
	PsychologistName string `json:"psychologistName"`
}

// SendInvitation handles POST /api/send/invitation.
func (h *Handler) SendInvitation(w http.ResponseWriter, r *http.Request) {
	var req invitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Content == "" || req.PsychologistName == "" {
		http.Error(w, "email, content, and psychologist's name are required", http.StatusBadRequest)
		return
	}

	msg := EmailMessage{
		To:      req.Email,
		Subject: fmt.Sprintf("Schedule an Appointment with %s", req.PsychologistName),
		Body:    fmt.Sprintf("%s has invited you to book an appointment through Serene MINDS: %s", req.PsychologistName, req.Content),
		HTML:    invitationHTML(req.PsychologistName, req.Content),
	}
	if err := h.email.Send(r.Context(), msg); err != nil {
		h.logger.Error("invitation email failed", "error", err, "to", req.Email)
		http.Error(w, "error sending invitation", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Invitation sent successfully!"})
}

type customEmailRequest struct {
	Email   string `json:"email"`
	Content string `json:"content"`
	Subject string `json:"subject"`
}

// SendCustomEmail handles POST /api/send/custom.
func (h *Handler) SendCustomEmail(w http.ResponseWriter, r *http.Request) {
	var req customEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Content == "" {
		http.Error(w, "email and content are required", http.StatusBadRequest)
		return
	}
	subject := req.Subject
	if subject == "" {
		subject = "Message from Serene MINDS"
	}
	msg := EmailMessage{
		To:      req.Email,
		Subject: subject,
		Body:    req.Content,
		HTML:    fmt.Sprintf("<p>%s</p>", req.Content),
	}
	if err := h.email.Send(r.Context(), msg); err != nil {
		h.logger.Error("custom email failed", "error", err, "to", req.Email)
		http.Error(w, "error sending custom email", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Email sent successfully!"})
}

type whatsappSendRequest struct {
	CampaignName   string   `json:"campaignName"`
	Destination    string   `json:"destination"`
	TemplateParams []string `json:"templateParams"`
	Media          *Media   `json:"media,omitempty"`
}

// SendWhatsApp handles POST /api/whatsapp. Unlike the dialogue flows, a
// gateway failure here is the whole point of the request and is surfaced.
func (h *Handler) SendWhatsApp(w http.ResponseWriter, r *http.Request) {
	var req whatsappSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	msg := WhatsAppMessage{
		CampaignName:   req.CampaignName,
		Destination:    req.Destination,
		TemplateParams: req.TemplateParams,
		Media:          req.Media,
	}
	if err := h.dispatcher.Send(r.Context(), msg); err != nil {
		h.logger.Error("manual whatsapp send failed", "error", err, "campaign", req.CampaignName)
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"success": false,
			"message": "Failed to send WhatsApp message",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "WhatsApp message sent successfully.",
	})
}

func invitationHTML(psychologistName, bookingLink string) string {
	return fmt.Sprintf(`<p>Hello,</p>
<p>%s has invited you to book an appointment through Serene MINDS.</p>
<p><a href="%s">Book Your Appointment Here</a></p>
<p>This is an automated message. Please do not reply.</p>
<p>Best regards,<br>Serene MINDS Team</p>`, psychologistName, bookingLink)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
