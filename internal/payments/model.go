package payments

import "time"

// Payment lifecycle states mirrored from the gateway.
const (
	StatusCreated = "created"
	StatusPaid    = "paid"
	StatusFailed  = "failed"
)

// Payment is a locally persisted gateway order for one appointment.
type Payment struct {
	ID             int64     `json:"id"`
	OrderID        string    `json:"order_id"`
	PaymentID      string    `json:"payment_id,omitempty"`
	ClientID       int64     `json:"client_id"`
	ProfessionalID int64     `json:"professional_id"`
	AmountPaise    int64     `json:"amount_paise"`
	Currency       string    `json:"currency"`
	Receipt        string    `json:"receipt"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Order is the gateway's view of a created order.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// OrderRequest describes an order to open with the gateway. When
// TransferAccount is set, the marketplace share is routed to that linked
// account as part of the same order.
type OrderRequest struct {
	AmountPaise     int64
	Currency        string
	Receipt         string
	TransferAccount string
}
