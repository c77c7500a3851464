package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/devSereneMINDS/Backend-Serene-MINDS/internal/professionals"
	"github.com/devSereneMINDS/Backend-Serene-MINDS/pkg/logging"
)

type orderCreator interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
}

type paymentStore interface {
	Create(ctx context.Context, orderID string, clientID, professionalID, amountPaise int64, currency, receipt string) (*Payment, error)
	MarkPaid(ctx context.Context, orderID, paymentID string) (*Payment, error)
}

type professionalDirectory interface {
	GetByID(ctx context.Context, id int64) (*professionals.Professional, error)
}

// Handler exposes order creation and payment verification.
type Handler struct {
	gateway       orderCreator
	repo          paymentStore
	professionals professionalDirectory
	keyID         string
	keySecret     string
	logger        *logging.Logger
}

// NewHandler creates a payments handler. The key pair is the same one the
// gateway client authenticates with; the secret also keys signature checks.
func NewHandler(gateway orderCreator, repo paymentStore, profDir professionalDirectory, keyID, keySecret string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		gateway:       gateway,
		repo:          repo,
		professionals: profDir,
		keyID:         keyID,
		keySecret:     keySecret,
		logger:        logger,
	}
}

type createOrderRequest struct {
	ClientID       int64  `json:"client_id"`
	ProfessionalID int64  `json:"professional_id"`
	AmountPaise    int64  `json:"amount_paise"`
	Currency       string `json:"currency"`
}

type createOrderResponse struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}

// CreateOrder handles POST /api/payments/order. The professional's linked
// account receives the marketplace share of the order.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.AmountPaise <= 0 {
		http.Error(w, ErrInvalidAmount.Error(), http.StatusBadRequest)
		return
	}
	if req.ClientID <= 0 || req.ProfessionalID <= 0 {
		http.Error(w, "client_id and professional_id are required", http.StatusBadRequest)
		return
	}

	prof, err := h.professionals.GetByID(r.Context(), req.ProfessionalID)
	if err != nil {
		if errors.Is(err, professionals.ErrNotFound) {
			http.Error(w, "professional not found", http.StatusNotFound)
			return
		}
		h.logger.Error("order professional lookup failed", "error", err)
		http.Error(w, "failed to create order", http.StatusInternalServerError)
		return
	}
	if prof.RazorpayAccount == "" {
		h.logger.Warn("professional has no linked account, skipping transfer split", "professional_id", prof.ID)
	}

	receipt := "smx_" + uuid.NewString()
	order, err := h.gateway.CreateOrder(r.Context(), OrderRequest{
		AmountPaise:     req.AmountPaise,
		Currency:        req.Currency,
		Receipt:         receipt,
		TransferAccount: prof.RazorpayAccount,
	})
	if err != nil {
		h.logger.Error("order create failed", "error", err)
		http.Error(w, "failed to create order", http.StatusBadGateway)
		return
	}

	if _, err := h.repo.Create(r.Context(), order.ID, req.ClientID, req.ProfessionalID, order.Amount, order.Currency, receipt); err != nil {
		h.logger.Error("order persist failed", "order_id", order.ID, "error", err)
		http.Error(w, "failed to create order", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, createOrderResponse{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		KeyID:    h.keyID,
	})
}

type verifyRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// Verify handles POST /api/payments/verify. A bad signature is a client
// error, not a server one.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if !VerifyPaymentSignature(req.OrderID, req.PaymentID, req.Signature, h.keySecret) {
		http.Error(w, ErrSignatureMismatch.Error(), http.StatusBadRequest)
		return
	}

	payment, err := h.repo.MarkPaid(r.Context(), req.OrderID, req.PaymentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "payment not found", http.StatusNotFound)
			return
		}
		h.logger.Error("mark paid failed", "order_id", req.OrderID, "error", err)
		http.Error(w, "failed to record payment", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
