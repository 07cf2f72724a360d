package models

// Setting is a named JSON document stored in the database.
type Setting struct {
	ID    uint64 `gorm:"primaryKey"`
	Name  string `gorm:"uniqueIndex;size:100;not null"`
	Value []byte
}

// TableName specifies the database table name for the Setting model.
func (Setting) TableName() string {
	return "settings"
}
