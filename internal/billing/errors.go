package billing

import "errors"

var (
	// ErrUserNotFound is returned when the user to bill does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrNoCustomer is returned when the user has no stripe customer yet.
	ErrNoCustomer = errors.New("no subscription found")
	// ErrInvalidSignature is returned when a webhook payload fails verification.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrMissingFields is returned when a checkout lacks a user or price.
	ErrMissingFields = errors.New("missing required fields")
	// ErrNotConfigured is returned when no stripe secret key is set.
	ErrNotConfigured = errors.New("stripe is not configured")
)
