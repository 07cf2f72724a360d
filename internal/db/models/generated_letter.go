package models

// GeneratedLetter is an application letter written by the LLM.
type GeneratedLetter struct {
	Base
	UserID     string  `gorm:"size:36;not null;index" json:"user_id"`
	PropertyID *string `gorm:"size:36" json:"property_id"`
	Subject    string  `gorm:"size:512" json:"subject"`
	Content    string  `gorm:"type:text" json:"content"`
	Language   string  `gorm:"size:2" json:"language"`
	Tone       string  `gorm:"size:20" json:"tone"`
	WordCount  int     `json:"word_count"`
	TokensUsed int     `json:"tokens_used"`
}

// TableName specifies the database table name for the GeneratedLetter model.
func (GeneratedLetter) TableName() string {
	return "generated_letters"
}
