package professionals

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/devSereneMINDS/Backend-Serene-MINDS/pkg/logging"
)

// Stats is the dashboard summary shown to a professional.
type Stats struct {
	ProfessionalID    int64   `json:"professional_id"`
	UpcomingThisWeek  int64   `json:"upcoming_this_week"`
	ClientsThisMonth  int64   `json:"clients_this_month"`
	EarningsThisMonth float64 `json:"earnings_this_month"`
	TotalAppointments int64   `json:"total_appointments"`
}

// Earnings is the month-by-month breakdown for one calendar year.
type Earnings struct {
	ProfessionalID int64              `json:"professional_id"`
	Year           int                `json:"year"`
	Monthly        map[string]float64 `json:"monthly"`
	Total          float64            `json:"total"`
}

var monthKeys = []string{"JAN", "FEB", "MAR", "APR", "MAY", "JUN", "JUL", "AUG", "SEP", "OCT", "NOV", "DEC"}

// StatsHandler serves professional dashboard aggregates. It queries through
// database/sql (the pgx stdlib driver) rather than the pool used by the CRUD
// repositories.
type StatsHandler struct {
	db     *sql.DB
	logger *logging.Logger
	now    func() time.Time
}

// NewStatsHandler creates a stats handler.
func NewStatsHandler(db *sql.DB, logger *logging.Logger) *StatsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &StatsHandler{db: db, logger: logger, now: time.Now}
}

// GetStats handles GET /api/professionals/{id}/stats.
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "professionalID")
	if !ok {
		return
	}
	if h.db == nil {
		http.Error(w, "stats disabled", http.StatusServiceUnavailable)
		return
	}

	now := h.now().UTC()
	weekStart := now.Truncate(24 * time.Hour).AddDate(0, 0, -int(now.Weekday()))
	weekEnd := weekStart.AddDate(0, 0, 7)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	stats := Stats{ProfessionalID: id}
	ctx := r.Context()

	err := h.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM appointment
		WHERE professional_id = $1 AND status = 'Upcoming' AND starts_at >= $2 AND starts_at < $3`,
		id, weekStart, weekEnd,
	).Scan(&stats.UpcomingThisWeek)
	if err != nil {
		h.statsError(w, "count upcoming", id, err)
		return
	}

	err = h.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT client_id) FROM appointment
		WHERE professional_id = $1 AND starts_at >= $2 AND starts_at < $3`,
		id, monthStart, monthEnd,
	).Scan(&stats.ClientsThisMonth)
	if err != nil {
		h.statsError(w, "count clients", id, err)
		return
	}

	err = h.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(fee), 0) FROM appointment
		WHERE professional_id = $1 AND status = 'Completed' AND starts_at >= $2 AND starts_at < $3`,
		id, monthStart, monthEnd,
	).Scan(&stats.EarningsThisMonth)
	if err != nil {
		h.statsError(w, "sum fees", id, err)
		return
	}

	err = h.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM appointment WHERE professional_id = $1`, id,
	).Scan(&stats.TotalAppointments)
	if err != nil {
		h.statsError(w, "count total", id, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// GetEarnings handles GET /api/professionals/{id}/earnings?year=2026.
// Months with no completed sessions report zero.
func (h *StatsHandler) GetEarnings(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "professionalID")
	if !ok {
		return
	}
	if h.db == nil {
		http.Error(w, "stats disabled", http.StatusServiceUnavailable)
		return
	}

	year := h.now().UTC().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid year", http.StatusBadRequest)
			return
		}
		year = parsed
	}

	earnings, err := h.yearlyEarnings(r.Context(), id, year)
	if err != nil {
		h.statsError(w, "yearly earnings", id, err)
		return
	}
	writeJSON(w, http.StatusOK, earnings)
}

func (h *StatsHandler) yearlyEarnings(ctx context.Context, id int64, year int) (*Earnings, error) {
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := yearStart.AddDate(1, 0, 0)

	rows, err := h.db.QueryContext(ctx, `
		SELECT EXTRACT(MONTH FROM starts_at)::int AS month, COALESCE(SUM(fee), 0)
		FROM appointment
		WHERE professional_id = $1 AND status = 'Completed' AND starts_at >= $2 AND starts_at < $3
		GROUP BY month`,
		id, yearStart, yearEnd,
	)
	if err != nil {
		return nil, fmt.Errorf("professionals: earnings query: %w", err)
	}
	defer rows.Close()

	earnings := &Earnings{ProfessionalID: id, Year: year, Monthly: make(map[string]float64, 12)}
	for _, key := range monthKeys {
		earnings.Monthly[key] = 0
	}
	for rows.Next() {
		var month int
		var sum float64
		if err := rows.Scan(&month, &sum); err != nil {
			return nil, fmt.Errorf("professionals: earnings scan: %w", err)
		}
		if month < 1 || month > 12 {
			continue
		}
		earnings.Monthly[monthKeys[month-1]] = sum
		earnings.Total += sum
	}
	return earnings, rows.Err()
}

func (h *StatsHandler) statsError(w http.ResponseWriter, step string, id int64, err error) {
	h.logger.Error("professional stats query failed", "step", step, "professional_id", id, "error", err)
	http.Error(w, "failed to compute stats", http.StatusInternalServerError)
}
