package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v3"
)

var apptCols = []string{
	"id", "client_id", "professional_id", "starts_at", "duration_minutes",
	"fee", "status", "meet_link", "note", "created_at", "updated_at",
}

func apptRow(id int64, at time.Time) *pgxmock.Rows {
	return pgxmock.NewRows(apptCols).AddRow(
		id, int64(2), int64(3), at, 60, 999.0, StatusUpcoming, "https://meet.example/x", "", at, at,
	)
}

func TestRepositoryCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()
	repo := newRepositoryWithDB(mock)

	at := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO appointment").
		WithArgs(int64(2), int64(3), at, 60, 999.0, StatusUpcoming, "https://meet.example/x", "").
		WillReturnRows(apptRow(1, at))

	appt, err := repo.Create(context.Background(), &CreateRequest{
		ClientID:        2,
		ProfessionalID:  3,
		StartsAt:        at,
		DurationMinutes: 60,
		Fee:             999.0,
		MeetLink:        "https://meet.example/x",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if appt.ID != 1 || appt.Status != StatusUpcoming {
		t.Fatalf("created = %+v", appt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRepositoryUpdateStatusRejectsUnknownState(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()
	repo := newRepositoryWithDB(mock)

	if _, err := repo.UpdateStatus(context.Background(), 1, Status("Rescheduled")); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected query issued: %v", err)
	}
}

func TestRepositoryDeleteNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()
	repo := newRepositoryWithDB(mock)

	mock.ExpectExec("DELETE FROM appointment").
		WithArgs(int64(42)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := repo.Delete(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRepositoryListByProfessionalJoinsClient(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()
	repo := newRepositoryWithDB(mock)

	at := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	age := 29
	rows := pgxmock.NewRows(append(apptCols, "name", "age", "city")).AddRow(
		int64(1), int64(2), int64(3), at, 60, 999.0, StatusUpcoming,
		"https://meet.example/x", "", at, at, "Asha", &age, "Pune",
	)
	mock.ExpectQuery("FROM appointment a").WithArgs(int64(3)).WillReturnRows(rows)

	list, err := repo.ListByProfessional(context.Background(), 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d rows, want 1", len(list))
	}
	got := list[0]
	if got.ClientName != "Asha" || got.ClientAge == nil || *got.ClientAge != 29 || got.ClientCity != "Pune" {
		t.Fatalf("joined demographics = %+v", got)
	}
}
