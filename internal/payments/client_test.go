package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCreateOrderSplitsTransfer(t *testing.T) {
	var got orderPayload
	var gotAuthUser, gotAuthPass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/orders" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotAuthUser, gotAuthPass, _ = r.BasicAuth()
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Order{
			ID:       "order_abc",
			Amount:   got.Amount,
			Currency: got.Currency,
			Receipt:  got.Receipt,
			Status:   "created",
		})
	}))
	defer srv.Close()

	client, err := NewRazorpayClient(RazorpayConfig{
		KeyID:       "rzp_test_key",
		KeySecret:   "rzp_test_secret",
		BaseURL:     srv.URL,
		TransferPct: 75,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	order, err := client.CreateOrder(context.Background(), OrderRequest{
		AmountPaise:     100000,
		Receipt:         "smx_1",
		TransferAccount: "acc_prof_1",
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.ID != "order_abc" {
		t.Fatalf("order id = %q", order.ID)
	}
	if gotAuthUser != "rzp_test_key" || gotAuthPass != "rzp_test_secret" {
		t.Fatalf("basic auth = %q/%q", gotAuthUser, gotAuthPass)
	}
	if got.Currency != "INR" {
		t.Fatalf("currency = %q, want INR default", got.Currency)
	}
	if len(got.Transfers) != 1 {
		t.Fatalf("transfers = %+v, want one split", got.Transfers)
	}
	tr := got.Transfers[0]
	if tr.Account != "acc_prof_1" || tr.Amount != 75000 || tr.Currency != "INR" {
		t.Fatalf("transfer = %+v, want 75%% to acc_prof_1", tr)
	}
}

func TestCreateOrderOmitsTransferWithoutAccount(t *testing.T) {
	var got orderPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(Order{ID: "order_abc", Amount: got.Amount, Currency: got.Currency})
	}))
	defer srv.Close()

	client, err := NewRazorpayClient(RazorpayConfig{KeyID: "k", KeySecret: "s", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.CreateOrder(context.Background(), OrderRequest{AmountPaise: 5000}); err != nil {
		t.Fatalf("create order: %v", err)
	}
	if len(got.Transfers) != 0 {
		t.Fatalf("transfers = %+v, want none", got.Transfers)
	}
}

func TestCreateOrderRejectionCarriesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"description":"Authentication failed"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, err := NewRazorpayClient(RazorpayConfig{KeyID: "k", KeySecret: "bad", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.CreateOrder(context.Background(), OrderRequest{AmountPaise: 5000})
	if err == nil {
		t.Fatal("expected error on 401")
	}
	if !strings.Contains(err.Error(), "401") || !strings.Contains(err.Error(), "Authentication failed") {
		t.Fatalf("err = %v, want status and body surfaced", err)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	if _, err := NewRazorpayClient(RazorpayConfig{}); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("err = %v, want ErrMissingCredentials", err)
	}

	client, err := NewRazorpayClient(RazorpayConfig{KeyID: "k", KeySecret: "s"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.CreateOrder(context.Background(), OrderRequest{}); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}
}
