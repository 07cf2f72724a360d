package notify

import "errors"

var (
	// ErrUserNotFound is returned when the recipient does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrNoEmail is returned when the recipient has no e-mail address.
	ErrNoEmail = errors.New("user email not found")
	// ErrNoPhone is returned when the recipient has no phone number.
	ErrNoPhone = errors.New("phone number not found")
	// ErrPremiumOnly is returned when sms is requested for a non premium user.
	ErrPremiumOnly = errors.New("SMS notifications are a Premium feature")
	// ErrNotConfigured is returned when the channel has no credentials.
	ErrNotConfigured = errors.New("channel is not configured")
)
