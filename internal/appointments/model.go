package appointments

import "time"

// Status is the appointment lifecycle state.
type Status string

const (
	StatusUpcoming  Status = "Upcoming"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusUpcoming, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Appointment is one scheduled session between a client and a professional.
type Appointment struct {
	ID              int64     `json:"id"`
	ClientID        int64     `json:"client_id"`
	ProfessionalID  int64     `json:"professional_id"`
	StartsAt        time.Time `json:"starts_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Fee             float64   `json:"fee"`
	Status          Status    `json:"status"`
	MeetLink        string    `json:"meet_link,omitempty"`
	Note            string    `json:"note,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ProfessionalAppointment is an appointment joined with the client's
// demographics, as shown on the professional's schedule.
type ProfessionalAppointment struct {
	Appointment
	ClientName string `json:"client_name"`
	ClientAge  *int   `json:"client_age,omitempty"`
	ClientCity string `json:"client_city,omitempty"`
}

// CreateRequest is the payload for booking an appointment.
type CreateRequest struct {
	ClientID        int64     `json:"client_id"`
	ProfessionalID  int64     `json:"professional_id"`
	StartsAt        time.Time `json:"starts_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Fee             float64   `json:"fee"`
	MeetLink        string    `json:"meet_link"`
	Note            string    `json:"note"`
}

// Validate checks the booking payload.
func (r *CreateRequest) Validate() error {
	if r.ClientID <= 0 || r.ProfessionalID <= 0 {
		return ErrMissingParticipants
	}
	if r.StartsAt.IsZero() {
		return ErrMissingSchedule
	}
	if r.DurationMinutes <= 0 {
		return ErrInvalidDuration
	}
	return nil
}
