package clients

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

const clientColumns = `id, name, email, phone_no, age, sex, city, zipcode, diagnosis, photo_url, q_and_a, session_count, created_at, updated_at`

// Repository provides persistence for client profiles.
type Repository struct {
	db db
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("clients: pgx pool required")
	}
	return &Repository{db: pool}
}

// newRepositoryWithDB allows injecting mocks for tests.
func newRepositoryWithDB(db db) *Repository {
	return &Repository{db: db}
}

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	if err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Email,
		&c.PhoneNo,
		&c.Age,
		&c.Sex,
		&c.City,
		&c.Zipcode,
		&c.Diagnosis,
		&c.PhotoURL,
		&c.QAndA,
		&c.SessionCount,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all clients.
func (r *Repository) List(ctx context.Context) ([]*Client, error) {
	rows, err := r.db.Query(ctx, `SELECT `+clientColumns+` FROM client ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("clients: list: %w", err)
	}
	defer rows.Close()

	var out []*Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("clients: scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByID fetches a single client.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Client, error) {
	c, err := scanClient(r.db.QueryRow(ctx, `SELECT `+clientColumns+` FROM client WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("clients: get: %w", err)
	}
	return c, nil
}

// GetByEmail fetches a client by email, case-insensitively.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*Client, error) {
	c, err := scanClient(r.db.QueryRow(ctx, `SELECT `+clientColumns+` FROM client WHERE email ILIKE $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("clients: get by email: %w", err)
	}
	return c, nil
}

// FindByPhone fetches a client by the normalized phone number.
func (r *Repository) FindByPhone(ctx context.Context, phone string) (*Client, error) {
	c, err := scanClient(r.db.QueryRow(ctx, `SELECT `+clientColumns+` FROM client WHERE phone_no = $1 LIMIT 1`, phone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("clients: find by phone: %w", err)
	}
	return c, nil
}

// Create inserts a new client row from the API payload.
func (r *Repository) Create(ctx context.Context, req *CreateRequest) (*Client, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	query := `
		INSERT INTO client (name, email, phone_no, age, sex, city, zipcode, diagnosis, photo_url, q_and_a)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + clientColumns
	c, err := scanClient(r.db.QueryRow(ctx, query,
		req.Name,
		req.Email,
		req.PhoneNo,
		req.Age,
		req.Sex,
		req.City,
		req.Zipcode,
		req.Diagnosis,
		req.PhotoURL,
		req.QAndA,
	))
	if err != nil {
		return nil, fmt.Errorf("clients: insert: %w", err)
	}
	return c, nil
}

// UpsertByPhone looks up a client by the normalized phone number and either
// merges the supplied fields into the existing row or inserts a fresh one.
// Supplied fields overwrite; omitted (nil) fields are preserved. Two
// sequential statements are acceptable here: intake traffic is
// low-concurrency per phone number, and the unique index on phone_no makes
// a duplicate insert fail closed.
func (r *Repository) UpsertByPhone(ctx context.Context, phone string, fields UpsertFields) (*Client, error) {
	if strings.TrimSpace(phone) == "" {
		return nil, ErrMissingIdentity
	}

	existing, err := r.FindByPhone(ctx, phone)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		query := `
			UPDATE client
			SET name = COALESCE($2, name),
			    age = COALESCE($3, age),
			    city = COALESCE($4, city),
			    email = COALESCE($5, email),
			    q_and_a = COALESCE($6, q_and_a),
			    updated_at = NOW()
			WHERE phone_no = $1
			RETURNING ` + clientColumns
		c, err := scanClient(r.db.QueryRow(ctx, query, phone, fields.Name, fields.Age, fields.City, fields.Email, nilIfEmptyMap(fields.QAndA)))
		if err != nil {
			return nil, fmt.Errorf("clients: upsert update: %w", err)
		}
		return c, nil
	}

	query := `
		INSERT INTO client (phone_no, name, age, city, email, q_and_a)
		VALUES ($1, COALESCE($2, ''), $3, COALESCE($4, ''), COALESCE($5, ''), $6)
		RETURNING ` + clientColumns
	c, err := scanClient(r.db.QueryRow(ctx, query, phone, fields.Name, fields.Age, fields.City, fields.Email, nilIfEmptyMap(fields.QAndA)))
	if err != nil {
		return nil, fmt.Errorf("clients: upsert insert: %w", err)
	}
	return c, nil
}

// UpsertQAndAByEmail stores a form submission blob against the client with
// the given email, creating the client when absent.
func (r *Repository) UpsertQAndAByEmail(ctx context.Context, email string, blob map[string]string) (*Client, error) {
	if strings.TrimSpace(email) == "" {
		return nil, ErrMissingIdentity
	}

	existing, err := r.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		query := `
			UPDATE client SET q_and_a = $2, updated_at = NOW()
			WHERE email ILIKE $1
			RETURNING ` + clientColumns
		c, err := scanClient(r.db.QueryRow(ctx, query, email, blob))
		if err != nil {
			return nil, fmt.Errorf("clients: q_and_a update: %w", err)
		}
		return c, nil
	}

	query := `
		INSERT INTO client (email, q_and_a) VALUES ($1, $2)
		RETURNING ` + clientColumns
	c, err := scanClient(r.db.QueryRow(ctx, query, email, blob))
	if err != nil {
		return nil, fmt.Errorf("clients: q_and_a insert: %w", err)
	}
	return c, nil
}

// updatableColumns is the allowlist for partial updates through the API.
var updatableColumns = map[string]struct{}{
	"name":      {},
	"email":     {},
	"phone_no":  {},
	"age":       {},
	"sex":       {},
	"city":      {},
	"zipcode":   {},
	"diagnosis": {},
	"photo_url": {},
	"q_and_a":   {},
}

// Update applies a partial update and returns the fresh row.
func (r *Repository) Update(ctx context.Context, id int64, fields map[string]any) (*Client, error) {
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
		`UPDATE client SET %s, updated_at = NOW() WHERE id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), len(args), clientColumns,
	)
	c, err := scanClient(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("clients: update: %w", err)
	}
	return c, nil
}

// Delete removes a client.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM client WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("clients: delete: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func nilIfEmptyMap(m map[string]string) any {
	if len(m) == 0 {
		return nil
	}
	return m
}
