package payments

import "errors"

var (
	// ErrNotFound is returned when no payment matches the lookup.
	ErrNotFound = errors.New("payment not found")

	// ErrMissingCredentials is returned when the gateway key pair is absent.
	ErrMissingCredentials = errors.New("payments: razorpay key id and secret required")

	// ErrInvalidAmount is returned for a non-positive order amount.
	ErrInvalidAmount = errors.New("payments: amount must be positive")

	// ErrSignatureMismatch is returned when a payment signature fails verification.
	ErrSignatureMismatch = errors.New("payments: signature mismatch")
)
