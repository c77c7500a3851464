package professionals

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/devSereneMINDS/Backend-Serene-MINDS/internal/notify"
	"github.com/devSereneMINDS/Backend-Serene-MINDS/pkg/logging"
)

type directory interface {
	List(ctx context.Context) ([]*Professional, error)
	GetByID(ctx context.Context, id int64) (*Professional, error)
	Create(ctx context.Context, req *CreateRequest) (*Professional, error)
	Update(ctx context.Context, id int64, fields map[string]any) (*Professional, error)
	Delete(ctx context.Context, id int64) error
}

type campaignNotifier interface {
	Send(ctx context.Context, msg notify.WhatsAppMessage) error
}

// Handler exposes CRUD endpoints for the professional directory.
type Handler struct {
	repo     directory
	notifier campaignNotifier
	logger   *logging.Logger
}

// NewHandler creates a professionals handler. The notifier may be nil, in
// which case onboarding messages are skipped.
func NewHandler(repo directory, notifier campaignNotifier, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, notifier: notifier, logger: logger}
}

// List handles GET /api/professionals.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	pros, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list professionals", "error", err)
		http.Error(w, "failed to list professionals", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, pros)
}

// Get handles GET /api/professionals/{professionalID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "professionalID")
	if !ok {
		return
	}
	p, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "professional not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to fetch professional", "error", err, "id", id)
		http.Error(w, "failed to fetch professional", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Create handles POST /api/professionals. Onboarding WhatsApp delivery is
// best-effort; a failed send never fails the registration.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	p, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrMissingFullName) || errors.Is(err, ErrMissingEmail) || errors.Is(err, ErrMissingPhone) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to create professional", "error", err)
		http.Error(w, "failed to create professional", http.StatusInternalServerError)
		return
	}

	if h.notifier != nil {
		msg := notify.WhatsAppMessage{
			CampaignName:   "professional_onboarding",
			Destination:    p.Phone,
			TemplateParams: []string{p.FullName},
		}
		if err := h.notifier.Send(r.Context(), msg); err != nil {
			h.logger.Warn("onboarding whatsapp dropped", "error", err, "professional_id", p.ID)
		}
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Professional created successfully",
		"data":    p,
	})
}

// Update handles PUT /api/professionals/{professionalID}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "professionalID")
	if !ok {
		return
	}
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	p, err := h.repo.Update(r.Context(), id, fields)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoFieldsToUpdate):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrNotFound):
			http.Error(w, "professional not found", http.StatusNotFound)
		default:
			h.logger.Error("failed to update professional", "error", err, "id", id)
			http.Error(w, "failed to update professional", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Professional updated successfully",
		"data":    p,
	})
}

// Delete handles DELETE /api/professionals/{professionalID}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "professionalID")
	if !ok {
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "professional not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to delete professional", "error", err, "id", id)
		http.Error(w, "failed to delete professional", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Professional deleted successfully"})
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
