package clients

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v3"
)

var clientCols = []string{
	"id", "name", "email", "phone_no", "age", "sex", "city", "zipcode",
	"diagnosis", "photo_url", "q_and_a", "session_count", "created_at", "updated_at",
}

func clientRow(id int64, name, phone string, age *int, city string) *pgxmock.Rows {
	at := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	return pgxmock.NewRows(clientCols).AddRow(
		id, name, "", phone, age, "", city, "", "", "", map[string]string(nil), 0, at, at,
	)
}

func TestRepositoryFindByPhoneNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()
	repo := newRepositoryWithDB(mock)

	mock.ExpectQuery("SELECT .+ FROM client WHERE phone_no").
		WithArgs("919876543210").
		WillReturnRows(pgxmock.NewRows(clientCols))

	if _, err := repo.FindByPhone(context.Background(), "919876543210"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRepositoryUpsertByPhoneInsertsWhenAbsent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()
	repo := newRepositoryWithDB(mock)

	name := "Asha"
	age := 29
	city := "Pune"

	mock.ExpectQuery("SELECT .+ FROM client WHERE phone_no").
		WithArgs("919876543210").
		WillReturnRows(pgxmock.NewRows(clientCols))
	mock.ExpectQuery("INSERT INTO client").
		WithArgs("919876543210", &name, &age, &city, (*string)(nil), nil).
		WillReturnRows(clientRow(7, name, "919876543210", &age, city))

	c, err := repo.UpsertByPhone(context.Background(), "919876543210", UpsertFields{
		Name: &name,
		Age:  &age,
		City: &city,
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if c.ID != 7 || c.Name != "Asha" {
		t.Fatalf("client = %+v", c)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRepositoryUpsertByPhoneMergesIntoExistingRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()
	repo := newRepositoryWithDB(mock)

	city := "Mumbai"
	prevAge := 34

	mock.ExpectQuery("SELECT .+ FROM client WHERE phone_no").
		WithArgs("919876543210").
		WillReturnRows(clientRow(7, "Asha", "919876543210", &prevAge, "Pune"))
	// Omitted fields arrive as nil so COALESCE keeps the stored values.
	mock.ExpectQuery("UPDATE client").
		WithArgs("919876543210", (*string)(nil), (*int)(nil), &city, (*string)(nil), nil).
		WillReturnRows(clientRow(7, "Asha", "919876543210", &prevAge, city))

	c, err := repo.UpsertByPhone(context.Background(), "919876543210", UpsertFields{City: &city})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if c.Name != "Asha" || c.City != "Mumbai" {
		t.Fatalf("client = %+v", c)
	}
	if c.Age == nil || *c.Age != 34 {
		t.Fatalf("age = %v, want preserved 34", c.Age)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRepositoryUpsertByPhoneRequiresPhone(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()
	repo := newRepositoryWithDB(mock)

	if _, err := repo.UpsertByPhone(context.Background(), "  ", UpsertFields{}); !errors.Is(err, ErrMissingIdentity) {
		t.Fatalf("err = %v, want ErrMissingIdentity", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected queries: %v", err)
	}
}

func TestRepositoryUpdateIgnoresUnknownColumns(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()
	repo := newRepositoryWithDB(mock)

	age := 30
	mock.ExpectQuery("UPDATE client SET age = \\$1, updated_at = NOW\\(\\)").
		WithArgs(30, int64(7)).
		WillReturnRows(clientRow(7, "Asha", "919876543210", &age, "Pune"))

	c, err := repo.Update(context.Background(), 7, map[string]any{
		"age":           30,
		"session_count": 99,
		"id":            12,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if c.Age == nil || *c.Age != 30 {
		t.Fatalf("age = %v", c.Age)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRepositoryUpdateWithoutFields(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()
	repo := newRepositoryWithDB(mock)

	if _, err := repo.Update(context.Background(), 7, map[string]any{"session_count": 3}); !errors.Is(err, ErrNoFieldsToUpdate) {
		t.Fatalf("err = %v, want ErrNoFieldsToUpdate", err)
	}
}

func TestRepositoryDeleteMissingClient(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()
	repo := newRepositoryWithDB(mock)

	mock.ExpectExec("DELETE FROM client").
		WithArgs(int64(42)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := repo.Delete(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
