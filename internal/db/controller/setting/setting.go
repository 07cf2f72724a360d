// Package setting stores named JSON documents in the settings table.
package setting

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rentfusion/rentfusion/internal/db/models"
)

const nameQueryPattern = "name = ?"

var (
	// ErrSettingNotFound is returned when a setting is not found.
	ErrSettingNotFound = errors.New("setting not found")
	// ErrSettingNameEmpty is returned when a setting name is empty.
	ErrSettingNameEmpty = errors.New("setting name cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves a setting by its name.
func Get(db *gorm.DB, name string) (*models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if name == "" {
		return nil, ErrSettingNameEmpty
	}

	var s models.Setting
	if err := db.Where(nameQueryPattern, name).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}

		return nil, err
	}

	return &s, nil
}

// GetAll retrieves all settings ordered by name.
func GetAll(db *gorm.DB) ([]models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var settings []models.Setting
	if err := db.Order("name").Find(&settings).Error; err != nil {
		return nil, err
	}

	return settings, nil
}

// Set creates or replaces a setting by name.
func Set(db *gorm.DB, name string, value []byte) (*models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if name == "" {
		return nil, ErrSettingNameEmpty
	}

	s := &models.Setting{Name: name, Value: value}

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(s).Error
	if err != nil {
		return nil, err
	}

	return Get(db, name)
}

// DeleteByName deletes a setting by name.
func DeleteByName(db *gorm.DB, name string) error {
	if db == nil {
		return ErrDBNil
	}

	if name == "" {
		return ErrSettingNameEmpty
	}

	result := db.Where(nameQueryPattern, name).Delete(&models.Setting{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrSettingNotFound
	}

	return nil
}

// GetJSON decodes the setting name into dst.
func GetJSON(db *gorm.DB, name string, dst any) error {
	s, err := Get(db, name)
	if err != nil {
		return err
	}

	if err = json.Unmarshal(s.Value, dst); err != nil {
		return fmt.Errorf("setting %s: %w", name, err)
	}

	return nil
}

// SetJSON stores v as JSON under name.
func SetJSON(db *gorm.DB, name string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("setting %s: %w", name, err)
	}

	_, err = Set(db, name, b)

	return err
}

// SeedJSON stores v under name unless the setting already exists.
// It reports whether a new row was written.
func SeedJSON(db *gorm.DB, name string, v any) (bool, error) {
	_, err := Get(db, name)

	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, ErrSettingNotFound):
		return true, SetJSON(db, name, v)
	default:
		return false, err
	}
}
