// Package models contains database model definitions.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the uuid primary key and the gorm managed timestamps.
type Base struct {
	// ID is a random (v4) uuid assigned on insert.
	ID string `gorm:"primaryKey;size:36" json:"id"`
	// CreatedAt is managed by GORM.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is managed by GORM.
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a new uuid unless the caller set one.
func (b *Base) BeforeCreate(*gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}

	return nil
}

// All returns every model for AutoMigrate, parents first.
func All() []any {
	return []any{
		&Setting{},
		&User{},
		&Property{},
		&SearchProfile{},
		&PropertyMatch{},
		&GeneratedLetter{},
		&Application{},
		&SavedProperty{},
		&ContractAnalysis{},
		&Notification{},
		&DeviceToken{},
	}
}
