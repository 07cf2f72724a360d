// Package searchprofile provides queries on the search_profiles table.
package searchprofile

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/rentfusion/rentfusion/internal/db/models"
)

var (
	// ErrProfileNotFound is returned when no profile of the user matches.
	ErrProfileNotFound = errors.New("search profile not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

const whereIDAndUser = "id = ? AND user_id = ?"

// List returns the profiles of a user, newest first.
func List(db *gorm.DB, userID string) ([]models.SearchProfile, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	profiles := []models.SearchProfile{}
	if err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to list search profiles: %w", err)
	}

	return profiles, nil
}

// Get returns one profile of a user.
func Get(db *gorm.DB, userID, id string) (*models.SearchProfile, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var p models.SearchProfile
	if err := db.Where(whereIDAndUser, id, userID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}

		return nil, fmt.Errorf("failed to query search profile: %w", err)
	}

	return &p, nil
}

// Count returns the number of profiles of a user.
func Count(db *gorm.DB, userID string) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var n int64
	err := db.Model(&models.SearchProfile{}).Where("user_id = ?", userID).Count(&n).Error

	return n, err
}

// CountActive returns the number of active profiles of a user.
func CountActive(db *gorm.DB, userID string) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var n int64
	err := db.Model(&models.SearchProfile{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Count(&n).Error

	return n, err
}

// Create stores a new profile.
func Create(db *gorm.DB, p *models.SearchProfile) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Create(p).Error
}

// Save writes every column of an existing profile.
func Save(db *gorm.DB, p *models.SearchProfile) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Save(p).Error
}

// Delete removes a profile of a user together with its matches.
func Delete(db *gorm.DB, userID, id string) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where(whereIDAndUser, id, userID).Delete(&models.SearchProfile{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete search profile: %w", res.Error)
		}

		if res.RowsAffected == 0 {
			return ErrProfileNotFound
		}

		return tx.Where("search_profile_id = ?", id).Delete(&models.PropertyMatch{}).Error
	})
}

// ForMatching returns every active profile with notifications enabled.
func ForMatching(db *gorm.DB) ([]models.SearchProfile, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var profiles []models.SearchProfile

	err := db.Where("is_active = ? AND notifications_enabled = ?", true, true).Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load search profiles: %w", err)
	}

	return profiles, nil
}
