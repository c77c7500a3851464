package clients

import "errors"

var (
	// ErrNameEmailRequired is returned when a registration omits name or email.
	ErrNameEmailRequired = errors.New("name and email are required")

	// ErrNotFound is returned when no client matches the lookup.
	ErrNotFound = errors.New("client not found")

	// ErrMissingIdentity is returned when an upsert has no identity key.
	ErrMissingIdentity = errors.New("phone or email identity key required")

	// ErrNoFieldsToUpdate is returned when an update carries no known fields.
	ErrNoFieldsToUpdate = errors.New("no valid fields provided for update")
)
