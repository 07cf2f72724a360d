package models

import "time"

// Notification channels.
const (
	ChannelEmail    = "email"
	ChannelPush     = "push"
	ChannelSMS      = "sms"
	ChannelTelegram = "telegram"
	ChannelInApp    = "in_app"
)

// NotificationTypeNewMatch is the type of property alert notifications.
const NotificationTypeNewMatch = "new_match"

// Notification is one message sent, or to be sent, to a user on one channel.
type Notification struct {
	Base
	UserID          string     `gorm:"size:36;not null;index" json:"user_id"`
	PropertyMatchID *string    `gorm:"size:36" json:"property_match_id"`
	Type            string     `gorm:"size:64;not null" json:"type"`
	Channel         string     `gorm:"size:20;not null" json:"channel"`
	Subject         string     `gorm:"size:512" json:"subject"`
	Body            string     `gorm:"type:text" json:"body"`
	LinkURL         string     `gorm:"size:2048" json:"link_url"`
	SentAt          *time.Time `gorm:"index" json:"sent_at"`
	Delivered       bool       `gorm:"not null" json:"delivered"`
	DeliveredAt     *time.Time `json:"delivered_at"`
	Read            bool       `gorm:"column:is_read;not null" json:"read"`
	MessageID       string     `gorm:"size:255" json:"message_id"`
	Error           string     `gorm:"type:text" json:"error,omitempty"`
}

// TableName specifies the database table name for the Notification model.
func (Notification) TableName() string {
	return "notifications"
}
