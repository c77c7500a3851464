package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/devSereneMINDS/Backend-Serene-MINDS/pkg/logging"
)

const defaultRazorpayBaseURL = "https://api.razorpay.com"

// RazorpayClient opens orders with the Razorpay Orders API, splitting the
// professional's share to their linked account on the same order.
type RazorpayClient struct {
	keyID       string
	keySecret   string
	baseURL     string
	transferPct int64
	httpClient  *http.Client
	logger      *logging.Logger
}

// RazorpayConfig configures the gateway client.
type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	// TransferPct is the share of each order routed to the professional's
	// linked account, in whole percent.
	TransferPct int64
	Timeout     time.Duration
	HTTPClient  *http.Client
	Logger      *logging.Logger
}

// NewRazorpayClient creates a gateway client.
func NewRazorpayClient(cfg RazorpayConfig) (*RazorpayClient, error) {
	if cfg.KeyID == "" || cfg.KeySecret == "" {
		return nil, ErrMissingCredentials
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultRazorpayBaseURL
	}
	if cfg.TransferPct <= 0 || cfg.TransferPct > 100 {
		cfg.TransferPct = 75
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &RazorpayClient{
		keyID:       cfg.KeyID,
		keySecret:   cfg.KeySecret,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		transferPct: cfg.TransferPct,
		httpClient:  client,
		logger:      cfg.Logger,
	}, nil
}

type orderTransfer struct {
	Account  string `json:"account"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type orderPayload struct {
	Amount    int64           `json:"amount"`
	Currency  string          `json:"currency"`
	Receipt   string          `json:"receipt,omitempty"`
	Transfers []orderTransfer `json:"transfers,omitempty"`
}

// CreateOrder opens an order with the gateway and returns its descriptor.
func (c *RazorpayClient) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if req.AmountPaise <= 0 {
		return nil, ErrInvalidAmount
	}
	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}
	payload := orderPayload{
		Amount:   req.AmountPaise,
		Currency: currency,
		Receipt:  req.Receipt,
	}
	if req.TransferAccount != "" {
		payload.Transfers = []orderTransfer{{
			Account:  req.TransferAccount,
			Amount:   req.AmountPaise * c.transferPct / 100,
			Currency: currency,
		}}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("payments: marshal order: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("payments: build order request: %w", err)
	}
	httpReq.SetBasicAuth(c.keyID, c.keySecret)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("payments: order request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("payments: order rejected: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("payments: decode order: %w", err)
	}
	c.logger.Info("razorpay order created", "order_id", order.ID, "amount_paise", order.Amount)
	return &order, nil
}
