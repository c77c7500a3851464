package clients

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/devSereneMINDS/Backend-Serene-MINDS/pkg/logging"
)

type store interface {
	List(ctx context.Context) ([]*Client, error)
	GetByID(ctx context.Context, id int64) (*Client, error)
	GetByEmail(ctx context.Context, email string) (*Client, error)
	Create(ctx context.Context, req *CreateRequest) (*Client, error)
	Update(ctx context.Context, id int64, fields map[string]any) (*Client, error)
	Delete(ctx context.Context, id int64) error
	UpsertQAndAByEmail(ctx context.Context, email string, blob map[string]string) (*Client, error)
}

// Handler exposes CRUD endpoints for client profiles.
type Handler struct {
	repo   store
	logger *logging.Logger
}

// NewHandler creates a clients handler.
func NewHandler(repo store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /api/clients.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	cs, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list clients", "error", err)
		http.Error(w, "failed to list clients", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

// Get handles GET /api/clients/{clientID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "clientID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	c, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "client not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to fetch client", "error", err, "id", id)
		http.Error(w, "failed to fetch client", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// GetByEmail handles GET /api/clients/email/{email}.
func (h *Handler) GetByEmail(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if email == "" {
		http.Error(w, "missing email", http.StatusBadRequest)
		return
	}
	c, err := h.repo.GetByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "client not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to fetch client by email", "error", err)
		http.Error(w, "failed to fetch client", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Create handles POST /api/clients.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	c, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrNameEmailRequired) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to create client", "error", err)
		http.Error(w, "failed to create client", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Client created successfully",
		"data":    c,
	})
}

// Update handles PUT /api/clients/{clientID}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "clientID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	c, err := h.repo.Update(r.Context(), id, fields)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoFieldsToUpdate):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrNotFound):
			http.Error(w, "client not found", http.StatusNotFound)
		default:
			h.logger.Error("failed to update client", "error", err, "id", id)
			http.Error(w, "failed to update client", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Client updated successfully",
		"data":    c,
	})
}

// Delete handles DELETE /api/clients/{clientID}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "clientID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "client not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to delete client", "error", err, "id", id)
		http.Error(w, "failed to delete client", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Client deleted successfully"})
}

// intakeFormRequest is the wire shape of a hosted intake form submission.
type intakeFormRequest struct {
	Data struct {
		Fields []struct {
			Key   string `json:"key"`
			Type  string `json:"type"`
			Value any    `json:"value"`
		} `json:"fields"`
	} `json:"data"`
}

// SubmitIntakeForm handles POST /api/clients/intake: it flattens the
// submitted fields into a Q&A blob and upserts it by the submitted email.
func (h *Handler) SubmitIntakeForm(w http.ResponseWriter, r *http.Request) {
	var req intakeFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	blob := make(map[string]string, len(req.Data.Fields))
	var email string
	for _, f := range req.Data.Fields {
		value := flattenFormValue(f.Value)
		if value == "" {
			continue
		}
		blob[f.Key] = value
		if strings.EqualFold(f.Key, "email") || strings.Contains(strings.ToLower(f.Key), "email") {
			email = strings.ToLower(strings.TrimSpace(value))
		}
	}
	if email == "" {
		http.Error(w, "email is required", http.StatusBadRequest)
		return
	}

	c, err := h.repo.UpsertQAndAByEmail(r.Context(), email, blob)
	if err != nil {
		h.logger.Error("intake form upsert failed", "error", err, "email", email)
		http.Error(w, "failed to process form submission", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"client":  c,
	})
}

func flattenFormValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := flattenFormValue(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ",")
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
