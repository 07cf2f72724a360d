package models

import "time"

// PropertyType is the kind of dwelling of a listing.
type PropertyType string

// Supported property types.
const (
	PropertyApartment PropertyType = "apartment"
	PropertyStudio    PropertyType = "studio"
	PropertyHouse     PropertyType = "house"
	PropertyRoom      PropertyType = "room"
)

// Property is a rental listing collected from an external source.
type Property struct {
	Base
	// ExternalID is the listing id at the source, unique together with Source.
	ExternalID string `gorm:"size:255;not null;uniqueIndex:idx_property_source_external" json:"external_id"`
	// Source names the listing site (pararius, funda, ...).
	Source string `gorm:"size:64;not null;uniqueIndex:idx_property_source_external" json:"source"`
	// URL is the listing page at the source.
	URL string `gorm:"size:2048" json:"url"`
	// Title is the listing headline.
	Title string `gorm:"size:512;not null" json:"title"`
	// Description is the free text of the listing.
	Description string `gorm:"type:text" json:"description"`
	// Price is the monthly rent.
	Price float64 `gorm:"not null;index" json:"price"`
	// Currency is an ISO 4217 code, EUR for all current sources.
	Currency string `gorm:"size:3;not null" json:"currency"`
	// City is matched against search profile cities.
	City string `gorm:"size:128;not null;index" json:"city"`
	// Neighborhood is optional.
	Neighborhood string `gorm:"size:128" json:"neighborhood"`
	// Address is the street address when published.
	Address string `gorm:"size:255" json:"address"`
	// PostalCode is the dutch postal code when published.
	PostalCode string `gorm:"size:16" json:"postal_code"`
	// Latitude of the listing, nil when unknown.
	Latitude *float64 `json:"latitude"`
	// Longitude of the listing, nil when unknown.
	Longitude *float64 `json:"longitude"`
	// PropertyType is apartment, studio, house or room.
	PropertyType PropertyType `gorm:"size:20;index" json:"property_type"`
	// SizeSqm is the living area in square meters.
	SizeSqm int `json:"size_sqm"`
	// Bedrooms is the number of bedrooms, 0 when unknown.
	Bedrooms int `json:"bedrooms"`
	// Bathrooms is the number of bathrooms, 0 when unknown.
	Bathrooms int `json:"bathrooms"`
	// Furnished reports a furnished listing.
	Furnished bool `json:"furnished"`
	// PetsAllowed reports whether the landlord accepts pets.
	PetsAllowed bool `json:"pets_allowed"`
	// AvailableFrom is the earliest move in date.
	AvailableFrom *time.Time `json:"available_from"`
	// Images are absolute image urls.
	Images []string `gorm:"serializer:json;type:text" json:"images"`
	// Features are normalized tags (balcony, garden, parking, ...).
	Features []string `gorm:"serializer:json;type:text" json:"features"`
	// LandlordName is the published landlord or agency name.
	LandlordName string `gorm:"size:255" json:"landlord_name"`
	// LandlordType is private, agency or corporation.
	LandlordType string `gorm:"size:20" json:"landlord_type"`
	// ScrapedAt is when the listing was last seen at the source.
	ScrapedAt time.Time `json:"scraped_at"`
	// IsActive is false once the listing disappeared at the source.
	IsActive bool `gorm:"not null;index" json:"is_active"`
}

// TableName specifies the database table name for the Property model.
func (Property) TableName() string {
	return "properties"
}
