package models

// SavedProperty is a bookmarked property of a user.
type SavedProperty struct {
	Base
	UserID     string    `gorm:"size:36;not null;uniqueIndex:idx_saved_user_property" json:"user_id"`
	PropertyID string    `gorm:"size:36;not null;uniqueIndex:idx_saved_user_property" json:"property_id"`
	Notes      string    `gorm:"type:text" json:"notes"`
	Property   *Property `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"property,omitempty"`
}

// TableName specifies the database table name for the SavedProperty model.
func (SavedProperty) TableName() string {
	return "saved_properties"
}
