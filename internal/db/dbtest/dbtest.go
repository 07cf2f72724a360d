// Package dbtest opens migrated in-memory databases for tests.
package dbtest

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rentfusion/rentfusion/internal/db/models"
)

// Open returns an in-memory sqlite database with every model migrated.
// The pool is limited to one connection, each new sqlite memory connection
// would otherwise see an empty database.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err, "failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...), "failed to migrate test database")

	return db
}

// CreateUser inserts a user with default settings on the given tier.
func CreateUser(t *testing.T, db *gorm.DB, email string, tier models.SubscriptionTier) *models.User {
	t.Helper()

	u := models.NewUser(email, "Test User", models.AuthProviderLocal)
	u.SubscriptionTier = tier
	require.NoError(t, db.Create(u).Error)

	return u
}

// CreateProperty inserts an active property in city at price.
func CreateProperty(t *testing.T, db *gorm.DB, externalID, city string, price float64) *models.Property {
	t.Helper()

	p := &models.Property{
		ExternalID:   externalID,
		Source:       "test",
		Title:        "Apartment in " + city,
		Price:        price,
		Currency:     "EUR",
		City:         city,
		PropertyType: models.PropertyApartment,
		IsActive:     true,
	}
	require.NoError(t, db.Create(p).Error)

	return p
}
