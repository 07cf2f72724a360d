package models

// ContractAnalysis stores the LLM review of a rental contract.
type ContractAnalysis struct {
	Base
	UserID     string `gorm:"size:36;not null;index" json:"user_id"`
	PropertyID string `gorm:"size:36;not null;index" json:"property_id"`
	// Analysis is the JSON document returned to the client.
	Analysis string `gorm:"type:text" json:"analysis"`
	// DocumentHash is the hex sha256 of the analysed contract text.
	DocumentHash string `gorm:"size:64;index" json:"document_hash"`
	OverallScore int    `json:"overall_score"`
	RiskLevel    string `gorm:"size:10" json:"risk_level"`
}

// TableName specifies the database table name for the ContractAnalysis model.
func (ContractAnalysis) TableName() string {
	return "contracts"
}
