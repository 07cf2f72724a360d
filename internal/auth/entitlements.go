package auth

import (
	"errors"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rentfusion/rentfusion/internal/db/controller/setting"
	"github.com/rentfusion/rentfusion/internal/db/models"
)

// TierLimitsSetting names the setting holding the per tier quotas.
const TierLimitsSetting = "tier_limits"

// Unlimited disables a quota.
const Unlimited = -1

// Feature is a capability reserved for some tiers.
type Feature string

// Gated features.
const (
	FeatureContractAnalysis Feature = "contract_analysis"
	FeatureSMSAlerts        Feature = "sms_alerts"
)

// TierLimits are the quotas of one subscription tier.
type TierLimits struct {
	SearchProfiles int `json:"searchProfiles"`
	AILetters      int `json:"aiLetters"` // per calendar month
}

// Allows reports whether used stays below limit.
func Allows(limit int, used int64) bool {
	return limit == Unlimited || used < int64(limit)
}

// DefaultLimits returns the built in quotas, also seeded into the settings table.
func DefaultLimits() map[models.SubscriptionTier]TierLimits {
	return map[models.SubscriptionTier]TierLimits{
		models.TierFree:    {SearchProfiles: 1, AILetters: 0},
		models.TierBasic:   {SearchProfiles: 3, AILetters: 5},
		models.TierPremium: {SearchProfiles: 5, AILetters: Unlimited},
	}
}

// SeedLimits stores the default quotas unless an operator already set them.
func SeedLimits(db *gorm.DB) error {
	created, err := setting.SeedJSON(db, TierLimitsSetting, DefaultLimits())
	if err != nil {
		return err
	}

	if created {
		log.Info().Str("setting", TierLimitsSetting).Msg("seeded default tier limits")
	}

	return nil
}

// Limits returns the quotas of tier, from the settings table when present.
func Limits(db *gorm.DB, tier models.SubscriptionTier) TierLimits {
	defaults := DefaultLimits()

	if !tier.Valid() {
		tier = models.TierFree
	}

	var stored map[models.SubscriptionTier]TierLimits

	err := setting.GetJSON(db, TierLimitsSetting, &stored)
	if err != nil {
		if !errors.Is(err, setting.ErrSettingNotFound) {
			log.Warn().Err(err).Msg("failed to read tier limits, using defaults")
		}

		return defaults[tier]
	}

	if l, ok := stored[tier]; ok {
		return l
	}

	return defaults[tier]
}

// HasFeature reports whether tier includes the feature.
func HasFeature(tier models.SubscriptionTier, f Feature) bool {
	switch f {
	case FeatureContractAnalysis, FeatureSMSAlerts:
		return tier == models.TierPremium
	default:
		return false
	}
}
