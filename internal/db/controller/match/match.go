// Package match provides queries on the property_matches table.
package match

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/rentfusion/rentfusion/internal/db/models"
	"github.com/rentfusion/rentfusion/internal/pagination"
)

var (
	// ErrMatchNotFound is returned when no match of the user matches.
	ErrMatchNotFound = errors.New("match not found")
	// ErrDuplicate is returned when the property was already matched to the profile.
	ErrDuplicate = errors.New("property already matched to this profile")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Create stores a match unless the pair (property, profile) already exists.
func Create(db *gorm.DB, m *models.PropertyMatch) error {
	if db == nil {
		return ErrDBNil
	}

	var n int64

	err := db.Model(&models.PropertyMatch{}).
		Where("property_id = ? AND search_profile_id = ?", m.PropertyID, m.SearchProfileID).
		Count(&n).Error
	if err != nil {
		return fmt.Errorf("failed to check match: %w", err)
	}

	if n > 0 {
		return ErrDuplicate
	}

	if err = db.Omit("Property").Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}

		return fmt.Errorf("failed to create match: %w", err)
	}

	return nil
}

// List returns a page of matches of a user with their property, newest first.
func List(db *gorm.DB, userID string, unviewedOnly bool, p pagination.Params) ([]models.PropertyMatch, pagination.Info, error) {
	if db == nil {
		return nil, pagination.Info{}, ErrDBNil
	}

	q := db.Model(&models.PropertyMatch{}).Where("user_id = ?", userID)
	if unviewedOnly {
		q = q.Where("viewed = ?", false)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, pagination.Info{}, fmt.Errorf("failed to count matches: %w", err)
	}

	matches := []models.PropertyMatch{}

	err := q.Preload("Property").
		Order("created_at DESC, match_score DESC").
		Offset(p.Offset()).
		Limit(p.PageSize).
		Find(&matches).Error
	if err != nil {
		return nil, pagination.Info{}, fmt.Errorf("failed to list matches: %w", err)
	}

	return matches, pagination.Calculate(total, p.Page, p.PageSize), nil
}

// MarkViewed flags a match of the user as viewed.
func MarkViewed(db *gorm.DB, userID, id string) error {
	if db == nil {
		return ErrDBNil
	}

	res := db.Model(&models.PropertyMatch{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("viewed", true)
	if res.Error != nil {
		return fmt.Errorf("failed to update match: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrMatchNotFound
	}

	return nil
}

// CountUnviewed returns the number of new matches of a user.
func CountUnviewed(db *gorm.DB, userID string) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var n int64
	err := db.Model(&models.PropertyMatch{}).
		Where("user_id = ? AND viewed = ?", userID, false).
		Count(&n).Error

	return n, err
}
