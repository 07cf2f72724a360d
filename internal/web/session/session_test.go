package session

import (
	"testing"
	"time"

	"github.com/gofiber/storage/memory/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	Init(memory.New())

	id, d, err := Create("user-1", "a@example.com", time.Hour)
	require.NoError(t, err)
	assert.Len(t, id, 64)
	assert.Equal(t, "user-1", d.UserID)

	got, err := Get(id)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got.Email)
	assert.WithinDuration(t, d.ExpiresAt, got.ExpiresAt, time.Second)

	require.NoError(t, Delete(id))

	_, err = Get(id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetUnknown(t *testing.T) {
	Init(memory.New())

	_, err := Get("")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Get("does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInitPanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { Init(nil) })
}

func TestGenerateSessionIDUnique(t *testing.T) {
	a, err := GenerateSessionID()
	require.NoError(t, err)

	b, err := GenerateSessionID()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
