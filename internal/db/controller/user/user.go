// Package user provides queries on the users table.
package user

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/rentfusion/rentfusion/internal/db/models"
)

var (
	// ErrUserNotFound is returned when no user matches.
	ErrUserNotFound = errors.New("user not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrIDEmpty is returned when a lookup id is empty.
	ErrIDEmpty = errors.New("user id cannot be empty")
)

// ownedTables are deleted together with their user.
var ownedTables = []any{ //nolint:gochecknoglobals
	&models.Notification{},
	&models.DeviceToken{},
	&models.ContractAnalysis{},
	&models.Application{},
	&models.GeneratedLetter{},
	&models.SavedProperty{},
	&models.PropertyMatch{},
	&models.SearchProfile{},
}

func first(db *gorm.DB, query string, arg any) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var u models.User
	if err := db.Where(query, arg).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &u, nil
}

// Get retrieves a user by id.
func Get(db *gorm.DB, id string) (*models.User, error) {
	if id == "" {
		return nil, ErrIDEmpty
	}

	return first(db, "id = ?", id)
}

// GetByEmail retrieves a user by e-mail address, case-insensitive.
func GetByEmail(db *gorm.DB, email string) (*models.User, error) {
	return first(db, "email = ?", NormalizeEmail(email))
}

// GetByStripeCustomer retrieves the user linked to a stripe customer.
func GetByStripeCustomer(db *gorm.DB, customerID string) (*models.User, error) {
	if customerID == "" {
		return nil, ErrUserNotFound
	}

	return first(db, "stripe_customer_id = ?", customerID)
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Update writes the given columns. Zero values are written too.
func Update(db *gorm.DB, id string, fields map[string]any) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update user: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// Delete removes a user and every row owned by it in one transaction.
func Delete(db *gorm.DB, id string) error {
	if db == nil {
		return ErrDBNil
	}

	if id == "" {
		return ErrIDEmpty
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, m := range ownedTables {
			if err := tx.Where("user_id = ?", id).Delete(m).Error; err != nil {
				return fmt.Errorf("failed to delete owned rows: %w", err)
			}
		}

		result := tx.Where("id = ?", id).Delete(&models.User{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete user: %w", result.Error)
		}

		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}

		return nil
	})
}

// CountByTier returns the number of users per subscription tier.
func CountByTier(db *gorm.DB) (map[models.SubscriptionTier]int64, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var rows []struct {
		SubscriptionTier models.SubscriptionTier
		N                int64
	}

	err := db.Model(&models.User{}).
		Select("subscription_tier, count(*) as n").
		Group("subscription_tier").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	out := make(map[models.SubscriptionTier]int64, len(rows))
	for _, r := range rows {
		out[r.SubscriptionTier] = r.N
	}

	return out, nil
}
