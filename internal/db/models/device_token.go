package models

import "time"

// DeviceToken is an expo push token registered by a mobile app.
type DeviceToken struct {
	Base
	UserID     string    `gorm:"size:36;not null;index" json:"user_id"`
	Token      string    `gorm:"size:255;not null;uniqueIndex" json:"token"`
	DeviceID   string    `gorm:"size:255" json:"device_id"`
	Platform   string    `gorm:"size:16" json:"platform"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// TableName specifies the database table name for the DeviceToken model.
func (DeviceToken) TableName() string {
	return "device_tokens"
}
