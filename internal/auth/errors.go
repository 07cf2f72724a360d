package auth

import "errors"

var (
	// ErrNoIDToken is returned when the OAuth2 token response doesn't contain an ID token.
	// This typically indicates a misconfigured OIDC provider or an incomplete authentication flow.
	ErrNoIDToken = errors.New("no id_token in token response")

	// ErrNoEmailClaim is returned when the identity provider did not release an e-mail address.
	ErrNoEmailClaim = errors.New("id token carries no email claim")

	// ErrInvalidOldPassword is returned when the provided old password does not match the user's current password.
	ErrInvalidOldPassword = errors.New("invalid old password")

	// ErrUserExists is returned when registering an e-mail address that is already taken.
	ErrUserExists = errors.New("user with this email already exists")

	// ErrInvalidCredentials covers both an unknown e-mail address and a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUserNotFound is returned when a user cannot be found in the database.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidEmail is returned for malformed e-mail addresses.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrWeakPassword is returned when a new password fails the strength rules.
	ErrWeakPassword = errors.New("password does not meet the strength requirements")

	// ErrPasswordNotSet is returned for accounts that sign in through an identity provider only.
	ErrPasswordNotSet = errors.New("account has no local password")

	// ErrTOTPRequired is returned when the password was correct but a second factor is missing.
	ErrTOTPRequired = errors.New("two-factor code required")

	// ErrInvalidTOTP is returned for a wrong second factor or recovery code.
	ErrInvalidTOTP = errors.New("invalid two-factor code")

	// ErrTOTPAlreadyEnabled is returned when enrolling while a confirmed secret exists.
	ErrTOTPAlreadyEnabled = errors.New("two-factor authentication is already enabled")

	// ErrTOTPNotEnrolled is returned when confirming or disabling without a secret.
	ErrTOTPNotEnrolled = errors.New("two-factor authentication is not enrolled")

	// ErrInvalidToken is returned for malformed, forged or expired bearer tokens.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrOIDCDisabled is returned when OIDC is disabled via configuration.
	ErrOIDCDisabled = errors.New("oidc authentication is disabled")
)
