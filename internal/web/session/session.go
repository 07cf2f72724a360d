// Package session keeps server side sign-in sessions in the configured fiber storage.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// CookieName is the HTTP-only cookie carrying the session id.
const CookieName = "session"

const keyPrefix = "session:"

var (
	// ErrNotFound is returned for unknown or expired sessions.
	ErrNotFound = errors.New("session not found")
	// ErrNotInitialized is returned before Init was called.
	ErrNotInitialized = errors.New("session store not initialized")
)

// Store is the global session store instance.
var Store *session.Store //nolint:gochecknoglobals

// Data represents the session data structure.
type Data struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Init initializes the session store with the provided storage backend.
func Init(storage fiber.Storage) {
	if storage == nil {
		panic("storage is nil")
	}

	Store = session.New(session.Config{
		Storage:        storage,
		KeyLookup:      "cookie:" + CookieName,
		CookieHTTPOnly: true,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Create stores a new session for the user and returns its id.
func Create(userID, email string, ttl time.Duration) (string, *Data, error) {
	if Store == nil {
		return "", nil, ErrNotInitialized
	}

	id, err := GenerateSessionID()
	if err != nil {
		return "", nil, err
	}

	now := time.Now().UTC()
	d := &Data{
		UserID:    userID,
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	out, err := json.Marshal(d)
	if err != nil {
		return "", nil, err
	}

	if err = Store.Storage.Set(keyPrefix+id, out, ttl); err != nil {
		return "", nil, err
	}

	return id, d, nil
}

// Get reads the session data for the given session id.
func Get(sessionID string) (*Data, error) {
	if Store == nil {
		return nil, ErrNotInitialized
	}

	if sessionID == "" {
		return nil, ErrNotFound
	}

	raw, err := Store.Storage.Get(keyPrefix + sessionID)
	if err != nil {
		return nil, err
	}

	if len(raw) == 0 {
		return nil, ErrNotFound
	}

	var d Data
	if err = json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}

	// not every storage backend expires keys on read
	if time.Now().After(d.ExpiresAt) {
		_ = Store.Storage.Delete(keyPrefix + sessionID)

		return nil, ErrNotFound
	}

	return &d, nil
}

// Delete removes a session. Unknown ids are not an error.
func Delete(sessionID string) error {
	if Store == nil {
		return ErrNotInitialized
	}

	if sessionID == "" {
		return nil
	}

	return Store.Storage.Delete(keyPrefix + sessionID)
}

// GenerateSessionID generates a new secure random session ID.
func GenerateSessionID() (string, error) {
	// 32 bytes = 256 bits
	b := make([]byte, 32) //nolint:mnd
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
