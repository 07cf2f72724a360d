// Package notification provides queries on the notifications and device_tokens tables.
package notification

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rentfusion/rentfusion/internal/db/models"
	"github.com/rentfusion/rentfusion/internal/pagination"
)

var (
	// ErrNotificationNotFound is returned when no notification of the user matches.
	ErrNotificationNotFound = errors.New("notification not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrTokenEmpty is returned when registering an empty push token.
	ErrTokenEmpty = errors.New("device token cannot be empty")
)

// Create stores a notification.
func Create(db *gorm.DB, n *models.Notification) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Create(n).Error
}

// CreateBatch stores several notifications in one statement.
func CreateBatch(db *gorm.DB, ns []models.Notification) error {
	if db == nil {
		return ErrDBNil
	}

	if len(ns) == 0 {
		return nil
	}

	return db.Create(&ns).Error
}

// CountSince returns how many notifications a user got since t.
func CountSince(db *gorm.DB, userID string, t time.Time) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var n int64
	err := db.Model(&models.Notification{}).
		Where("user_id = ? AND created_at >= ?", userID, t).
		Count(&n).Error

	return n, err
}

// List returns a page of in-app notifications of a user, newest first.
func List(db *gorm.DB, userID string, unreadOnly bool, p pagination.Params) ([]models.Notification, pagination.Info, error) {
	if db == nil {
		return nil, pagination.Info{}, ErrDBNil
	}

	q := db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, pagination.Info{}, fmt.Errorf("failed to count notifications: %w", err)
	}

	out := []models.Notification{}

	err := q.Order("created_at DESC").Offset(p.Offset()).Limit(p.PageSize).Find(&out).Error
	if err != nil {
		return nil, pagination.Info{}, fmt.Errorf("failed to list notifications: %w", err)
	}

	return out, pagination.Calculate(total, p.Page, p.PageSize), nil
}

// MarkRead flags a notification of the user as read.
func MarkRead(db *gorm.DB, userID, id string) error {
	if db == nil {
		return ErrDBNil
	}

	res := db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return fmt.Errorf("failed to update notification: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrNotificationNotFound
	}

	return nil
}

// MarkLatestDelivered flags the newest undelivered notification of
// (user, type, channel) as delivered. An empty type matches any type.
// It reports whether a row was updated.
func MarkLatestDelivered(db *gorm.DB, userID, typ, channel, messageID string, at time.Time) (bool, error) {
	if db == nil {
		return false, ErrDBNil
	}

	q := db.Where("user_id = ? AND channel = ? AND delivered = ?", userID, channel, false)
	if typ != "" {
		q = q.Where("type = ?", typ)
	}

	var n models.Notification

	err := q.Order("created_at DESC").First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to query notification: %w", err)
	}

	err = db.Model(&n).Updates(map[string]any{
		"delivered":    true,
		"delivered_at": at,
		"message_id":   messageID,
	}).Error
	if err != nil {
		return false, fmt.Errorf("failed to update notification: %w", err)
	}

	return true, nil
}

// RegisterDevice stores a push token for the user. A token moves to the
// latest user that registered it.
func RegisterDevice(db *gorm.DB, userID, token, deviceID, platform string) (*models.DeviceToken, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if token == "" {
		return nil, ErrTokenEmpty
	}

	d := &models.DeviceToken{
		UserID:     userID,
		Token:      token,
		DeviceID:   deviceID,
		Platform:   platform,
		LastSeenAt: time.Now().UTC(),
	}

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "device_id", "platform", "last_seen_at", "updated_at"}),
	}).Create(d).Error
	if err != nil {
		return nil, fmt.Errorf("failed to register device: %w", err)
	}

	return d, nil
}

// DeviceTokens returns the push tokens of a user.
func DeviceTokens(db *gorm.DB, userID string) ([]string, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var tokens []string
	err := db.Model(&models.DeviceToken{}).Where("user_id = ?", userID).Pluck("token", &tokens).Error

	return tokens, err
}

// RemoveDevice deletes a push token, for tokens the push service reported as unregistered.
func RemoveDevice(db *gorm.DB, token string) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Where("token = ?", token).Delete(&models.DeviceToken{}).Error
}
