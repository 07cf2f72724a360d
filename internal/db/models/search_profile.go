package models

import "time"

// SearchProfile holds the criteria a user wants new listings matched against.
type SearchProfile struct {
	Base
	UserID        string     `gorm:"size:36;not null;index" json:"user_id"`
	Name          string     `gorm:"size:255;not null" json:"name"`
	Cities        []string   `gorm:"serializer:json;type:text" json:"cities"`
	Neighborhoods []string   `gorm:"serializer:json;type:text" json:"neighborhoods"`
	PriceMin      *float64   `json:"price_min"`
	PriceMax      *float64   `json:"price_max"`
	PropertyTypes []string   `gorm:"serializer:json;type:text" json:"property_types"`
	BedroomsMin   *int       `json:"bedrooms_min"`
	BedroomsMax   *int       `json:"bedrooms_max"`
	SizeMin       *int       `json:"size_min"`
	SizeMax       *int       `json:"size_max"`
	Furnished     *bool      `json:"furnished"`
	PetsAllowed   bool       `json:"pets_allowed"`
	AvailableFrom *time.Time `json:"available_from"`
	Features      []string   `gorm:"serializer:json;type:text" json:"features"`
	Keywords      []string   `gorm:"serializer:json;type:text" json:"keywords"`
	IsActive      bool       `gorm:"not null;index" json:"is_active"`

	NotificationsEnabled bool     `gorm:"not null" json:"notifications_enabled"`
	NotificationChannels []string `gorm:"serializer:json;type:text" json:"notification_channels"`
}

// TableName specifies the database table name for the SearchProfile model.
func (SearchProfile) TableName() string {
	return "search_profiles"
}

// Channels returns the alert channels, e-mail when none were chosen.
func (p *SearchProfile) Channels() []string {
	if len(p.NotificationChannels) == 0 {
		return []string{ChannelEmail}
	}

	return p.NotificationChannels
}
