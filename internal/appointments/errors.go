package appointments

import "errors"

var (
	// ErrNotFound is returned when no appointment matches the lookup.
	ErrNotFound = errors.New("appointment not found")

	// ErrMissingParticipants is returned when client or professional is absent.
	ErrMissingParticipants = errors.New("client_id and professional_id are required")

	// ErrMissingSchedule is returned when the booking has no start time.
	ErrMissingSchedule = errors.New("starts_at is required")

	// ErrInvalidDuration is returned for a non-positive session length.
	ErrInvalidDuration = errors.New("duration_minutes must be positive")

	// ErrInvalidStatus is returned for a status outside the lifecycle set.
	ErrInvalidStatus = errors.New("status must be Upcoming, Completed, or Cancelled")
)
