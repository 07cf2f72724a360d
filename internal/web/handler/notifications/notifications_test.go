package notifications

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentfusion/rentfusion/internal/db/controller/notification"
	usercontroller "github.com/rentfusion/rentfusion/internal/db/controller/user"
	"github.com/rentfusion/rentfusion/internal/db/models"
	"github.com/rentfusion/rentfusion/internal/web/handler/handlertest"
)

func TestSendEmail(t *testing.T) {
	env := handlertest.New(t, nil, &Service{})
	u, token := env.User("mail@example.com", models.TierFree)
	other, _ := env.User("other@example.com", models.TierFree)

	require.NoError(t, notification.Create(env.DB, &models.Notification{
		UserID: u.ID, Type: "welcome", Channel: models.ChannelEmail, Subject: "Welcome",
	}))

	body := map[string]string{"type": "welcome", "title": "Welcome", "message": "Hello there"}

	resp := env.Request(http.MethodPost, "/api/notifications/send-email", body, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var d map[string]any
	handlertest.Decode(t, resp, &d)
	assert.Equal(t, "email-test", d["messageId"])
	require.Len(t, env.Email.Sent, 1)
	assert.Equal(t, "mail@example.com", env.Email.Sent[0].To)

	var n models.Notification
	require.NoError(t, env.DB.First(&n, "user_id = ?", u.ID).Error)
	assert.True(t, n.Delivered)

	// users may not send to others, internal callers may
	body["userId"] = other.ID
	resp = env.Request(http.MethodPost, "/api/notifications/send-email", body, token)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.Request(http.MethodPost, "/api/notifications/send-email", body, handlertest.CronSecret)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body["userId"] = "missing"
	resp = env.Request(http.MethodPost, "/api/notifications/send-email", body, handlertest.CronSecret)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	delete(body, "userId")
	resp = env.Request(http.MethodPost, "/api/notifications/send-email", body, handlertest.CronSecret)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSendEmailDisabled(t *testing.T) {
	env := handlertest.New(t, nil, &Service{})
	u, token := env.User("quiet@example.com", models.TierFree)
	require.NoError(t, usercontroller.Update(env.DB, u.ID, map[string]any{"email_notifications": false}))

	resp := env.Request(http.MethodPost, "/api/notifications/send-email",
		map[string]string{"type": "x", "title": "T", "message": "M"}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var d map[string]any
	handlertest.Decode(t, resp, &d)
	assert.Equal(t, true, d["skipped"])
	assert.Empty(t, env.Email.Sent)
}

func TestSendSMS(t *testing.T) {
	env := handlertest.New(t, nil, &Service{})
	_, freeToken := env.User("free@example.com", models.TierFree)
	u, token := env.User("premium@example.com", models.TierPremium)

	body := map[string]string{"message": "New listing", "linkUrl": "https://app.example.com/p/1"}

	resp := env.Request(http.MethodPost, "/api/notifications/send-sms", body, freeToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	require.NoError(t, usercontroller.Update(env.DB, u.ID, map[string]any{"sms_notifications": true}))

	resp = env.Request(http.MethodPost, "/api/notifications/send-sms", body, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "no phone on file")

	require.NoError(t, usercontroller.Update(env.DB, u.ID, map[string]any{"phone": "0612345678"}))

	resp = env.Request(http.MethodPost, "/api/notifications/send-sms", body, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, env.SMS.Bodies, 1)
	assert.Equal(t, "New listing https://app.example.com/p/1", env.SMS.Bodies[0])
}

func TestRegisterDevice(t *testing.T) {
	env := handlertest.New(t, nil, &Service{})
	u, token := env.User("device@example.com", models.TierFree)

	resp := env.Request(http.MethodPost, "/api/notifications/register-device",
		map[string]string{"token": "not-a-token"}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.Request(http.MethodPost, "/api/notifications/register-device",
		map[string]string{"token": "ExponentPushToken[abc]", "deviceId": "d-1", "platform": "ios"}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	tokens, err := notification.DeviceTokens(env.DB, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ExponentPushToken[abc]"}, tokens)
}

func TestListAndRead(t *testing.T) {
	env := handlertest.New(t, nil, &Service{})
	u, token := env.User("feed@example.com", models.TierFree)
	_, otherToken := env.User("other@example.com", models.TierFree)

	n := &models.Notification{UserID: u.ID, Type: models.NotificationTypeNewMatch, Channel: models.ChannelInApp, Subject: "New match"}
	require.NoError(t, notification.Create(env.DB, n))

	resp := env.Request(http.MethodPost, "/api/notifications/"+n.ID+"/read", nil, otherToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.Request(http.MethodGet, "/api/notifications?unread=true", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page struct {
		Items []models.Notification `json:"items"`
	}
	handlertest.Decode(t, resp, &page)
	assert.Len(t, page.Items, 1)

	resp = env.Request(http.MethodPost, "/api/notifications/"+n.ID+"/read", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.Request(http.MethodGet, "/api/notifications?unread=true", nil, token)
	handlertest.Decode(t, resp, &page)
	assert.Empty(t, page.Items)
}
