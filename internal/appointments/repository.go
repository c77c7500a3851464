package appointments

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

const appointmentColumns = `id, client_id, professional_id, starts_at, duration_minutes, fee, status, meet_link, note, created_at, updated_at`

// Repository provides persistence for appointments.
type Repository struct {
	db db
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &Repository{db: pool}
}

// newRepositoryWithDB allows injecting mocks for tests.
func newRepositoryWithDB(db db) *Repository {
	return &Repository{db: db}
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	if err := row.Scan(
		&a.ID,
		&a.ClientID,
		&a.ProfessionalID,
		&a.StartsAt,
		&a.DurationMinutes,
		&a.Fee,
		&a.Status,
		&a.MeetLink,
		&a.Note,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create books a new appointment in the Upcoming state.
func (r *Repository) Create(ctx context.Context, req *CreateRequest) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO appointment (client_id, professional_id, starts_at, duration_minutes, fee, status, meet_link, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+appointmentColumns,
		req.ClientID, req.ProfessionalID, req.StartsAt, req.DurationMinutes,
		req.Fee, StatusUpcoming, req.MeetLink, req.Note,
	)
	appt, err := scanAppointment(row)
	if err != nil {
		return nil, fmt.Errorf("appointments: insert: %w", err)
	}
	return appt, nil
}

// GetByID returns a single appointment.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointment WHERE id = $1`, id)
	appt, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("appointments: get: %w", err)
	}
	return appt, nil
}

// ListByClient returns a client's appointments, soonest first.
func (r *Repository) ListByClient(ctx context.Context, clientID int64) ([]*Appointment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+appointmentColumns+` FROM appointment WHERE client_id = $1 ORDER BY starts_at`,
		clientID,
	)
	if err != nil {
		return nil, fmt.Errorf("appointments: list by client: %w", err)
	}
	defer rows.Close()
	var out []*Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("appointments: scan: %w", err)
		}
		out = append(out, appt)
	}
	return out, rows.Err()
}

// ListByProfessional returns a professional's schedule joined with the
// client's name, age, and city.
func (r *Repository) ListByProfessional(ctx context.Context, professionalID int64) ([]*ProfessionalAppointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT a.id, a.client_id, a.professional_id, a.starts_at, a.duration_minutes,
		       a.fee, a.status, a.meet_link, a.note, a.created_at, a.updated_at,
		       c.name, c.age, c.city
		FROM appointment a
		JOIN client c ON c.id = a.client_id
		WHERE a.professional_id = $1
		ORDER BY a.starts_at`,
		professionalID,
	)
	if err != nil {
		return nil, fmt.Errorf("appointments: list by professional: %w", err)
	}
	defer rows.Close()
	var out []*ProfessionalAppointment
	for rows.Next() {
		var pa ProfessionalAppointment
		if err := rows.Scan(
			&pa.ID,
			&pa.ClientID,
			&pa.ProfessionalID,
			&pa.StartsAt,
			&pa.DurationMinutes,
			&pa.Fee,
			&pa.Status,
			&pa.MeetLink,
			&pa.Note,
			&pa.CreatedAt,
			&pa.UpdatedAt,
			&pa.ClientName,
			&pa.ClientAge,
			&pa.ClientCity,
		); err != nil {
			return nil, fmt.Errorf("appointments: scan: %w", err)
		}
		out = append(out, &pa)
	}
	return out, rows.Err()
}

// UpdateStatus moves an appointment through its lifecycle.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status Status) (*Appointment, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	row := r.db.QueryRow(ctx,
		`UPDATE appointment SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING `+appointmentColumns,
		status, id,
	)
	appt, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("appointments: update status: %w", err)
	}
	return appt, nil
}

// Delete removes an appointment.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM appointment WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("appointments: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
