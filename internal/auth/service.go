package auth

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/rentfusion/rentfusion/internal/config"
	usercontroller "github.com/rentfusion/rentfusion/internal/db/controller/user"
	"github.com/rentfusion/rentfusion/internal/db/models"
	"github.com/rentfusion/rentfusion/internal/web/session"
)

// Service ties the sign-in providers, tokens and sessions together.
type Service struct {
	db         *gorm.DB
	Local      *LocalProvider
	Tokens     *TokenIssuer
	SessionTTL time.Duration
	TOTPIssuer string
}

// NewService creates a new auth service.
func NewService(db *gorm.DB, cfg *config.Auth) *Service {
	return &Service{
		db:         db,
		Local:      NewLocalProvider(db),
		Tokens:     NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL),
		SessionTTL: cfg.SessionTTL,
		TOTPIssuer: cfg.TOTPIssuer,
	}
}

// DB returns the database the service works on.
func (s *Service) DB() *gorm.DB {
	return s.db
}

// Limits returns the quotas of the user's effective tier.
func (s *Service) Limits(u *models.User) TierLimits {
	return Limits(s.db, u.EffectiveTier(time.Now()))
}

// SignIn is the result of a successful sign-in.
type SignIn struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	SessionID string       `json:"-"`
	User      *models.User `json:"user"`
}

// StartSession issues a bearer token and a server side session for the user.
func (s *Service) StartSession(u *models.User) (*SignIn, error) {
	tok, exp, err := s.Tokens.IssueToken(u)
	if err != nil {
		return nil, err
	}

	id, _, err := session.Create(u.ID, u.Email, s.SessionTTL)
	if err != nil {
		return nil, err
	}

	return &SignIn{Token: tok, ExpiresAt: exp, SessionID: id, User: u}, nil
}

// ResolveUser loads the caller from a bearer token or, failing that, a session id.
func (s *Service) ResolveUser(authorization, sessionID string) (*models.User, error) {
	var userID string

	if tok, ok := bearer(authorization); ok {
		claims, err := s.Tokens.ParseToken(tok)
		if err != nil {
			return nil, err
		}

		userID = claims.Subject
	} else {
		d, err := session.Get(sessionID)
		if err != nil {
			return nil, ErrInvalidToken
		}

		userID = d.UserID
	}

	u, err := usercontroller.Get(s.db, userID)
	if err != nil {
		return nil, mapUserErr(err)
	}

	return u, nil
}

// DeleteAccount removes the user with everything it owns.
func (s *Service) DeleteAccount(userID string) error {
	err := usercontroller.Delete(s.db, userID)
	if errors.Is(err, usercontroller.ErrUserNotFound) {
		return ErrUserNotFound
	}

	return err
}

func bearer(header string) (string, bool) {
	const prefix = "Bearer "

	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}

	return strings.TrimSpace(header[len(prefix):]), true
}
