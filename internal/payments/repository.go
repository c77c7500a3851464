package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const paymentColumns = `id, order_id, payment_id, client_id, professional_id, amount_paise, currency, receipt, status, created_at, updated_at`

// Repository provides persistence for gateway orders.
type Repository struct {
	db db
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("payments: pgx pool required")
	}
	return &Repository{db: pool}
}

// newRepositoryWithDB allows injecting mocks for tests.
func newRepositoryWithDB(db db) *Repository {
	return &Repository{db: db}
}

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	if err := row.Scan(
		&p.ID,
		&p.OrderID,
		&p.PaymentID,
		&p.ClientID,
		&p.ProfessionalID,
		&p.AmountPaise,
		&p.Currency,
		&p.Receipt,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persists a freshly opened gateway order.
func (r *Repository) Create(ctx context.Context, orderID string, clientID, professionalID, amountPaise int64, currency, receipt string) (*Payment, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO payment (order_id, client_id, professional_id, amount_paise, currency, receipt, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+paymentColumns,
		orderID, clientID, professionalID, amountPaise, currency, receipt, StatusCreated,
	)
	p, err := scanPayment(row)
	if err != nil {
		return nil, fmt.Errorf("payments: insert: %w", err)
	}
	return p, nil
}

// GetByOrderID returns the payment for a gateway order.
func (r *Repository) GetByOrderID(ctx context.Context, orderID string) (*Payment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payment WHERE order_id = $1`, orderID)
	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("payments: get by order: %w", err)
	}
	return p, nil
}

// MarkPaid records the verified gateway payment id against the order.
func (r *Repository) MarkPaid(ctx context.Context, orderID, paymentID string) (*Payment, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE payment SET payment_id = $1, status = $2, updated_at = NOW()
		WHERE order_id = $3
		RETURNING `+paymentColumns,
		paymentID, StatusPaid, orderID,
	)
	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("payments: mark paid: %w", err)
	}
	return p, nil
}
