// Package application provides queries on the applications table.
package application

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/rentfusion/rentfusion/internal/db/models"
)

var (
	// ErrApplicationNotFound is returned when no application of the user matches.
	ErrApplicationNotFound = errors.New("application not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// List returns the applications of a user with their property, newest first.
// An empty status lists every status.
func List(db *gorm.DB, userID string, status models.ApplicationStatus) ([]models.Application, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	q := db.Preload("Property").Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	out := []models.Application{}
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	return out, nil
}

// Get returns one application of a user.
func Get(db *gorm.DB, userID, id string) (*models.Application, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var a models.Application
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}

		return nil, fmt.Errorf("failed to query application: %w", err)
	}

	return &a, nil
}

// Create stores a new application.
func Create(db *gorm.DB, a *models.Application) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Omit("Property").Create(a).Error
}

// Save writes every column of an existing application.
func Save(db *gorm.DB, a *models.Application) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Omit("Property").Save(a).Error
}

// Count returns the number of applications of a user.
func Count(db *gorm.DB, userID string) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var n int64
	err := db.Model(&models.Application{}).Where("user_id = ?", userID).Count(&n).Error

	return n, err
}
