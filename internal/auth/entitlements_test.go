package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentfusion/rentfusion/internal/db/controller/setting"
	"github.com/rentfusion/rentfusion/internal/db/dbtest"
	"github.com/rentfusion/rentfusion/internal/db/models"
)

func TestLimitsDefaults(t *testing.T) {
	db := dbtest.Open(t)

	tests := []struct {
		tier     models.SubscriptionTier
		profiles int
		letters  int
	}{
		{models.TierFree, 1, 0},
		{models.TierBasic, 3, 5},
		{models.TierPremium, 5, Unlimited},
		{"bogus", 1, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			l := Limits(db, tt.tier)
			assert.Equal(t, tt.profiles, l.SearchProfiles)
			assert.Equal(t, tt.letters, l.AILetters)
		})
	}
}

func TestLimitsFromSetting(t *testing.T) {
	db := dbtest.Open(t)
	require.NoError(t, SeedLimits(db))

	custom := DefaultLimits()
	custom[models.TierBasic] = TierLimits{SearchProfiles: 4, AILetters: 10}
	require.NoError(t, setting.SetJSON(db, TierLimitsSetting, custom))

	// seeding again keeps the operator's values
	require.NoError(t, SeedLimits(db))

	assert.Equal(t, TierLimits{SearchProfiles: 4, AILetters: 10}, Limits(db, models.TierBasic))
}

func TestAllows(t *testing.T) {
	assert.True(t, Allows(Unlimited, 1000))
	assert.True(t, Allows(5, 4))
	assert.False(t, Allows(5, 5))
	assert.False(t, Allows(0, 0))
}

func TestHasFeature(t *testing.T) {
	assert.True(t, HasFeature(models.TierPremium, FeatureContractAnalysis))
	assert.False(t, HasFeature(models.TierBasic, FeatureContractAnalysis))
	assert.False(t, HasFeature(models.TierFree, FeatureSMSAlerts))
	assert.False(t, HasFeature(models.TierPremium, "unknown"))
}

func TestEffectiveTierExpired(t *testing.T) {
	u := models.NewUser("a@example.com", "A", models.AuthProviderLocal)
	u.SubscriptionTier = models.TierPremium

	past := time.Now().Add(-time.Hour)
	u.SubscriptionEndsAt = &past

	assert.Equal(t, models.TierFree, u.EffectiveTier(time.Now()))
	assert.False(t, HasFeature(u.EffectiveTier(time.Now()), FeatureContractAnalysis))
}
