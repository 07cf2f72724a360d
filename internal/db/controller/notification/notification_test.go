package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentfusion/rentfusion/internal/db/dbtest"
	"github.com/rentfusion/rentfusion/internal/db/models"
	"github.com/rentfusion/rentfusion/internal/pagination"
)

func TestListAndMarkRead(t *testing.T) {
	db := dbtest.Open(t)
	u := dbtest.CreateUser(t, db, "a@example.com", models.TierFree)

	require.NoError(t, CreateBatch(db, []models.Notification{
		{UserID: u.ID, Type: "welcome", Channel: models.ChannelInApp, Subject: "Hi"},
		{UserID: u.ID, Type: models.NotificationTypeNewMatch, Channel: models.ChannelInApp, Subject: "Match"},
	}))

	params := pagination.Params{Page: 1, PageSize: 10}

	list, info, err := List(db, u.ID, true, params)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(2), info.Total)

	require.NoError(t, MarkRead(db, u.ID, list[0].ID))
	assert.ErrorIs(t, MarkRead(db, "other", list[0].ID), ErrNotificationNotFound)

	list, _, err = List(db, u.ID, true, params)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	n, err := CountSince(db, u.ID, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestMarkLatestDelivered(t *testing.T) {
	db := dbtest.Open(t)
	u := dbtest.CreateUser(t, db, "a@example.com", models.TierFree)

	older := &models.Notification{UserID: u.ID, Type: "alert", Channel: models.ChannelEmail}
	require.NoError(t, Create(db, older))
	require.NoError(t, db.Model(older).UpdateColumn("created_at", time.Now().UTC().Add(-time.Hour)).Error)

	newer := &models.Notification{UserID: u.ID, Type: "alert", Channel: models.ChannelEmail}
	require.NoError(t, Create(db, newer))

	ok, err := MarkLatestDelivered(db, u.ID, "alert", models.ChannelEmail, "msg-1", time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	var got models.Notification
	require.NoError(t, db.First(&got, "id = ?", newer.ID).Error)
	assert.True(t, got.Delivered)
	assert.Equal(t, "msg-1", got.MessageID)

	require.NoError(t, db.First(&got, "id = ?", older.ID).Error)
	assert.False(t, got.Delivered)

	ok, err = MarkLatestDelivered(db, u.ID, "other", models.ChannelEmail, "", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	// any type
	ok, err = MarkLatestDelivered(db, u.ID, "", models.ChannelEmail, "msg-2", time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, db.First(&got, "id = ?", older.ID).Error)
	assert.True(t, got.Delivered)
}

func TestRegisterDevice(t *testing.T) {
	db := dbtest.Open(t)
	a := dbtest.CreateUser(t, db, "a@example.com", models.TierFree)
	b := dbtest.CreateUser(t, db, "b@example.com", models.TierFree)

	_, err := RegisterDevice(db, a.ID, "ExponentPushToken[1]", "phone", "ios")
	require.NoError(t, err)

	_, err = RegisterDevice(db, a.ID, "ExponentPushToken[1]", "phone", "ios")
	require.NoError(t, err)

	tokens, err := DeviceTokens(db, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ExponentPushToken[1]"}, tokens)

	// the token follows the latest user
	_, err = RegisterDevice(db, b.ID, "ExponentPushToken[1]", "phone", "ios")
	require.NoError(t, err)

	tokens, err = DeviceTokens(db, a.ID)
	require.NoError(t, err)
	assert.Empty(t, tokens)

	require.NoError(t, RemoveDevice(db, "ExponentPushToken[1]"))

	tokens, err = DeviceTokens(db, b.ID)
	require.NoError(t, err)
	assert.Empty(t, tokens)

	_, err = RegisterDevice(db, a.ID, "", "", "")
	assert.ErrorIs(t, err, ErrTokenEmpty)
}
