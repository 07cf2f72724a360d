package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// SubscriptionTier is the paid plan of a user.
type SubscriptionTier string

const (
	// TierFree is the default plan.
	TierFree SubscriptionTier = "free"
	// TierBasic is the entry paid plan.
	TierBasic SubscriptionTier = "basic"
	// TierPremium unlocks every feature.
	TierPremium SubscriptionTier = "premium"
)

// Valid reports whether t is a known tier.
func (t SubscriptionTier) Valid() bool {
	return t == TierFree || t == TierBasic || t == TierPremium
}

// Rank orders tiers, free < basic < premium.
func (t SubscriptionTier) Rank() int {
	switch t {
	case TierPremium:
		return 2
	case TierBasic:
		return 1
	default:
		return 0
	}
}

// AuthProvider names how a user signs in.
type AuthProvider string

const (
	// AuthProviderLocal users sign in with email and password.
	AuthProviderLocal AuthProvider = "local"
	// AuthProviderGoogle users sign in through OpenID Connect.
	AuthProviderGoogle AuthProvider = "google"
)

// User is the account and profile of a renter.
type User struct {
	Base
	// Email is the unique login and contact address.
	Email string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	// PasswordHash is the argon2id hash, empty for OIDC accounts.
	PasswordHash string `gorm:"size:255" json:"-"`
	// AuthProvider indicates how this user authenticates.
	AuthProvider AuthProvider `gorm:"size:20;not null" json:"auth_provider"`
	// FullName is the display name, also used to sign generated letters.
	FullName string `gorm:"size:255" json:"full_name"`
	// AvatarURL points to a profile picture.
	AvatarURL string `gorm:"size:1024" json:"avatar_url"`
	// Phone is used for sms alerts (premium).
	Phone string `gorm:"size:32" json:"phone"`
	// PreferredLanguage is en or nl.
	PreferredLanguage string `gorm:"size:2;not null" json:"preferred_language"`
	// SubscriptionTier is the plan as last reported by stripe.
	SubscriptionTier SubscriptionTier `gorm:"size:20;not null;index" json:"subscription_tier"`
	// SubscriptionEndsAt is the end of the paid period, nil for free users.
	SubscriptionEndsAt *time.Time `json:"subscription_ends_at"`
	// StripeCustomerID links the user to the stripe customer.
	StripeCustomerID string `gorm:"size:255;index" json:"stripe_customer_id"`
	// EmailNotifications enables e-mail alerts.
	EmailNotifications bool `gorm:"not null" json:"email_notifications"`
	// PushNotifications enables mobile push alerts.
	PushNotifications bool `gorm:"not null" json:"push_notifications"`
	// SMSNotifications enables sms alerts.
	SMSNotifications bool `gorm:"not null" json:"sms_notifications"`
	// InAppNotifications enables the notification feed.
	InAppNotifications bool `gorm:"not null" json:"in_app_notifications"`
	// MarketingEmails opts into product news.
	MarketingEmails bool `gorm:"not null" json:"marketing_emails"`
	// TelegramChatID receives telegram alerts when set.
	TelegramChatID string `gorm:"size:64" json:"telegram_chat_id"`
	// TOTPSecret is the base32 second factor secret.
	TOTPSecret string `gorm:"size:64" json:"-"`
	// TOTPEnabled is set once the user confirmed a first code.
	TOTPEnabled bool `gorm:"not null" json:"totp_enabled"`
	// RecoveryCodes are argon2id hashes of single use second factor codes.
	RecoveryCodes []string `gorm:"serializer:json;type:text" json:"-"`
	// LastLoginAt is updated on every successful sign in.
	LastLoginAt *time.Time `json:"last_login_at"`
}

// TableName specifies the database table name for the User model.
func (User) TableName() string {
	return "users"
}

// NewUser returns a free tier user with the default notification settings:
// e-mail, push and in-app on, sms and marketing off.
func NewUser(email, fullName string, provider AuthProvider) *User {
	return &User{
		Email:              email,
		FullName:           fullName,
		AuthProvider:       provider,
		PreferredLanguage:  "en",
		SubscriptionTier:   TierFree,
		EmailNotifications: true,
		PushNotifications:  true,
		InAppNotifications: true,
	}
}

// EffectiveTier returns the tier, or free once a paid period ended.
func (u *User) EffectiveTier(now time.Time) SubscriptionTier {
	if u.SubscriptionTier != TierFree && u.SubscriptionEndsAt != nil && u.SubscriptionEndsAt.Before(now) {
		return TierFree
	}

	if !u.SubscriptionTier.Valid() {
		return TierFree
	}

	return u.SubscriptionTier
}

// HashPassword hashes a plaintext password using argon2id with the default parameters.
func HashPassword(password string) (string, error) {
	return argon2id.CreateHash(password, argon2id.DefaultParams) //nolint:wrapcheck
}

// VerifyPassword compares password with the stored hash in constant time.
func (u *User) VerifyPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}

	match, err := argon2id.ComparePasswordAndHash(password, u.PasswordHash)
	if err != nil {
		log.Error().Err(err).Str("user_id", u.ID).Msg("failed to verify password")

		return false
	}

	return match
}
