// Package letter provides queries on the generated_letters and contracts tables.
package letter

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/rentfusion/rentfusion/internal/db/models"
)

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// Create stores a generated letter.
func Create(db *gorm.DB, l *models.GeneratedLetter) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Create(l).Error
}

// List returns the letters of a user, newest first.
func List(db *gorm.DB, userID string, limit int) ([]models.GeneratedLetter, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	out := []models.GeneratedLetter{}

	err := db.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list letters: %w", err)
	}

	return out, nil
}

// CountSince returns how many letters a user generated since t.
func CountSince(db *gorm.DB, userID string, t time.Time) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var n int64
	err := db.Model(&models.GeneratedLetter{}).
		Where("user_id = ? AND created_at >= ?", userID, t).
		Count(&n).Error

	return n, err
}

// MonthStart returns the first instant of the calendar month of t, in UTC.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()

	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// CreateAnalysis stores a contract analysis.
func CreateAnalysis(db *gorm.DB, a *models.ContractAnalysis) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Create(a).Error
}
