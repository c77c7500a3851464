package professionals

import "errors"

var (
	// ErrMissingFullName is returned when a registration omits the name.
	ErrMissingFullName = errors.New("full_name is required")

	// ErrMissingEmail is returned when a registration omits the email.
	ErrMissingEmail = errors.New("email is required")

	// ErrMissingPhone is returned when a registration omits the phone.
	ErrMissingPhone = errors.New("phone is required")

	// ErrNotFound is returned when no professional matches the lookup.
	ErrNotFound = errors.New("professional not found")

	// ErrNoFieldsToUpdate is returned when an update carries no known fields.
	ErrNoFieldsToUpdate = errors.New("no valid fields provided for update")
)
