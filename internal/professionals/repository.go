package professionals

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const professionalColumns = `id, full_name, email, phone, photo_url, area_of_expertise, about_me, city, languages, services, razorpay_account, created_at, updated_at`

// Repository provides persistence for the professional directory.
type Repository struct {
	db db
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("professionals: pgx pool required")
	}
	return &Repository{db: pool}
}

// newRepositoryWithDB allows injecting mocks for tests.
func newRepositoryWithDB(db db) *Repository {
	return &Repository{db: db}
}

func scanProfessional(row pgx.Row) (*Professional, error) {
	var p Professional
	if err := row.Scan(
		&p.ID,
		&p.FullName,
		&p.Email,
		&p.Phone,
		&p.PhotoURL,
		&p.AreaOfExpertise,
		&p.AboutMe,
		&p.City,
		&p.Languages,
		&p.Services,
		&p.RazorpayAccount,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns the full directory.
func (r *Repository) List(ctx context.Context) ([]*Professional, error) {
	query := `SELECT ` + professionalColumns + ` FROM professional ORDER BY id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("professionals: list: %w", err)
	}
	defer rows.Close()

	var out []*Professional
	for rows.Next() {
		p, err := scanProfessional(rows)
		if err != nil {
			return nil, fmt.Errorf("professionals: scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetByID fetches a single professional.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Professional, error) {
	query := `SELECT ` + professionalColumns + ` FROM professional WHERE id = $1`
	p, err := scanProfessional(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("professionals: get: %w", err)
	}
	return p, nil
}

// ListByExpertise returns every professional carrying the exact expertise tag.
func (r *Repository) ListByExpertise(ctx context.Context, expertise string) ([]*Professional, error) {
	query := `SELECT ` + professionalColumns + ` FROM professional WHERE area_of_expertise = $1`
	rows, err := r.db.Query(ctx, query, expertise)
	if err != nil {
		return nil, fmt.Errorf("professionals: list by expertise: %w", err)
	}
	defer rows.Close()

	var out []*Professional
	for rows.Next() {
		p, err := scanProfessional(rows)
		if err != nil {
			return nil, fmt.Errorf("professionals: scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Create inserts a new professional row.
func (r *Repository) Create(ctx context.Context, req *CreateRequest) (*Professional, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	services := req.Services
	if services == nil && req.AreaOfExpertise == ExpertiseWellnessBuddy {
		services = defaultWellnessService
	}
	query := `
		INSERT INTO professional (full_name, email, phone, photo_url, area_of_expertise, about_me, city, languages, services, razorpay_account)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + professionalColumns
	p, err := scanProfessional(r.db.QueryRow(ctx, query,
		req.FullName,
		req.Email,
		req.Phone,
		req.PhotoURL,
		req.AreaOfExpertise,
		req.AboutMe,
		req.City,
		req.Languages,
		services,
		req.RazorpayAccount,
	))
	if err != nil {
		return nil, fmt.Errorf("professionals: insert: %w", err)
	}
	return p, nil
}

// updatableColumns is the allowlist for partial updates.
var updatableColumns = map[string]struct{}{
	"full_name":         {},
	"email":             {},
	"phone":             {},
	"photo_url":         {},
	"area_of_expertise": {},
	"about_me":          {},
	"city":              {},
	"languages":         {},
	"services":          {},
	"razorpay_account":  {},
}

// Update applies a partial update and returns the fresh row.
func (r *Repository) Update(ctx context.Context, id int64, fields map[string]any) (*Professional, error) {
	setClauses := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	for _, col := range sortedKeys(fields) {
		if _, ok := updatableColumns[col]; !ok {
			continue
		}
		args = append(args, fields[col])
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if len(setClauses) == 0 {
		return nil, ErrNoFieldsToUpdate
	}
	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE professional SET %s, updated_at = NOW() WHERE id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), len(args), professionalColumns,
	)
	p, err := scanProfessional(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("professionals: update: %w", err)
	}
	return p, nil
}

// Delete removes a professional.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM professional WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("professionals: delete: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// sortedKeys keeps the generated SQL deterministic.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
