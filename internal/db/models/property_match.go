package models

// PropertyMatch joins a search profile to a property with the score it reached.
type PropertyMatch struct {
	Base
	PropertyID      string    `gorm:"size:36;not null;uniqueIndex:idx_match_property_profile" json:"property_id"`
	SearchProfileID string    `gorm:"size:36;not null;uniqueIndex:idx_match_property_profile" json:"search_profile_id"`
	UserID          string    `gorm:"size:36;not null;index" json:"user_id"`
	MatchScore      int       `gorm:"not null" json:"match_score"`
	MatchReasons    []string  `gorm:"serializer:json;type:text" json:"match_reasons"`
	Viewed          bool      `gorm:"not null;index" json:"viewed"`
	Property        *Property `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"property,omitempty"`
}

// TableName specifies the database table name for the PropertyMatch model.
func (PropertyMatch) TableName() string {
	return "property_matches"
}
