// Package saved provides queries on the saved_properties table.
package saved

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/rentfusion/rentfusion/internal/db/models"
)

var (
	// ErrNotSaved is returned when unsaving a property that was not saved.
	ErrNotSaved = errors.New("property is not saved")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// List returns the saved properties of a user with their property, newest first.
func List(db *gorm.DB, userID string) ([]models.SavedProperty, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	out := []models.SavedProperty{}

	err := db.Preload("Property").Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list saved properties: %w", err)
	}

	return out, nil
}

// Save bookmarks a property. Saving twice returns the existing row and updates its notes.
func Save(db *gorm.DB, userID, propertyID, notes string) (*models.SavedProperty, bool, error) {
	if db == nil {
		return nil, false, ErrDBNil
	}

	var s models.SavedProperty

	err := db.Where("user_id = ? AND property_id = ?", userID, propertyID).First(&s).Error

	switch {
	case err == nil:
		if notes != "" && notes != s.Notes {
			s.Notes = notes
			if err = db.Model(&s).Update("notes", notes).Error; err != nil {
				return nil, false, fmt.Errorf("failed to update saved property: %w", err)
			}
		}

		return &s, false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, fmt.Errorf("failed to query saved property: %w", err)
	}

	s = models.SavedProperty{UserID: userID, PropertyID: propertyID, Notes: notes}
	if err = db.Omit("Property").Create(&s).Error; err != nil {
		return nil, false, fmt.Errorf("failed to save property: %w", err)
	}

	return &s, true, nil
}

// Unsave removes a bookmark.
func Unsave(db *gorm.DB, userID, propertyID string) error {
	if db == nil {
		return ErrDBNil
	}

	res := db.Where("user_id = ? AND property_id = ?", userID, propertyID).Delete(&models.SavedProperty{})
	if res.Error != nil {
		return fmt.Errorf("failed to unsave property: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrNotSaved
	}

	return nil
}

// Count returns the number of saved properties of a user.
func Count(db *gorm.DB, userID string) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var n int64
	err := db.Model(&models.SavedProperty{}).Where("user_id = ?", userID).Count(&n).Error

	return n, err
}
