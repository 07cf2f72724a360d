package models

import "time"

// ApplicationStatus tracks an application through its lifecycle.
type ApplicationStatus string

// Application states.
const (
	ApplicationDraft     ApplicationStatus = "draft"
	ApplicationSubmitted ApplicationStatus = "submitted"
	ApplicationViewed    ApplicationStatus = "viewed"
	ApplicationAccepted  ApplicationStatus = "accepted"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationWithdrawn ApplicationStatus = "withdrawn"
)

// Valid reports whether s is a known status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationDraft, ApplicationSubmitted, ApplicationViewed,
		ApplicationAccepted, ApplicationRejected, ApplicationWithdrawn:
		return true
	}

	return false
}

// Application is a renter's application for a property.
type Application struct {
	Base
	UserID            string            `gorm:"size:36;not null;index" json:"user_id"`
	PropertyID        string            `gorm:"size:36;not null;index" json:"property_id"`
	Status            ApplicationStatus `gorm:"size:20;not null" json:"status"`
	GeneratedLetterID *string           `gorm:"size:36" json:"generated_letter_id"`
	// SubmittedAt is set on the transition to submitted.
	SubmittedAt *time.Time `json:"submitted_at"`
	// ViewedAt is set on the transition to viewed.
	ViewedAt *time.Time `json:"viewed_at"`
	// ResponseReceivedAt is set when the landlord accepted or rejected.
	ResponseReceivedAt *time.Time `json:"response_received_at"`
	Notes              string     `gorm:"type:text" json:"notes"`
	Property           *Property  `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
}

// TableName specifies the database table name for the Application model.
func (Application) TableName() string {
	return "applications"
}

// SetStatus changes the status and stamps the matching timestamp.
func (a *Application) SetStatus(s ApplicationStatus, now time.Time) {
	a.Status = s

	switch s {
	case ApplicationSubmitted:
		if a.SubmittedAt == nil {
			a.SubmittedAt = &now
		}
	case ApplicationViewed:
		if a.ViewedAt == nil {
			a.ViewedAt = &now
		}
	case ApplicationAccepted, ApplicationRejected:
		a.ResponseReceivedAt = &now
	case ApplicationDraft, ApplicationWithdrawn:
	}
}
