package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	usercontroller "github.com/rentfusion/rentfusion/internal/db/controller/user"
	"github.com/rentfusion/rentfusion/internal/db/models"
	"github.com/rentfusion/rentfusion/internal/validation"
)

// LocalProvider handles e-mail and password authentication against the local database.
type LocalProvider struct {
	db  *gorm.DB
	now func() time.Time
}

// NewLocalProvider creates a new local authentication provider.
func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{
		db:  db,
		now: time.Now,
	}
}

// Register creates a free tier account with the default notification settings.
func (p *LocalProvider) Register(email, password, fullName string) (*models.User, error) {
	email = usercontroller.NormalizeEmail(email)
	if !validation.IsEmail(email) {
		return nil, ErrInvalidEmail
	}

	if !validation.CheckPassword(password).IsValid {
		return nil, ErrWeakPassword
	}

	_, err := usercontroller.GetByEmail(p.db, email)

	switch {
	case err == nil:
		return nil, ErrUserExists
	case !errors.Is(err, usercontroller.ErrUserNotFound):
		return nil, err
	}

	hash, err := models.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		fullName = emailPrefix(email)
	}

	user := models.NewUser(email, fullName, models.AuthProviderLocal)
	user.PasswordHash = hash

	if err = p.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}

		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate checks the password and, when enabled, the second factor.
// code may be a current TOTP code or an unused recovery code, which is consumed.
func (p *LocalProvider) Authenticate(email, password, code string) (*models.User, error) {
	user, err := usercontroller.GetByEmail(p.db, email)
	if errors.Is(err, usercontroller.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}

	if err != nil {
		return nil, err
	}

	if !user.VerifyPassword(password) {
		return nil, ErrInvalidCredentials
	}

	if user.TOTPEnabled {
		if code == "" {
			return nil, ErrTOTPRequired
		}

		if err = p.checkSecondFactor(user, code); err != nil {
			return nil, err
		}
	}

	now := p.now().UTC()
	user.LastLoginAt = &now

	if err = usercontroller.Update(p.db, user.ID, map[string]any{"last_login_at": now}); err != nil {
		return nil, err
	}

	return user, nil
}

// ChangePassword replaces the password after checking the old one.
func (p *LocalProvider) ChangePassword(userID, oldPassword, newPassword string) error {
	user, err := usercontroller.Get(p.db, userID)
	if err != nil {
		return mapUserErr(err)
	}

	if user.PasswordHash == "" {
		return ErrPasswordNotSet
	}

	if !user.VerifyPassword(oldPassword) {
		return ErrInvalidOldPassword
	}

	if !validation.CheckPassword(newPassword).IsValid {
		return ErrWeakPassword
	}

	hash, err := models.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return usercontroller.Update(p.db, userID, map[string]any{"password_hash": hash})
}

// UpsertOAuthUser returns the account for an identity provider sign-in,
// creating it with the default settings when the e-mail address is new.
func UpsertOAuthUser(db *gorm.DB, id *Identity) (*models.User, error) {
	email := usercontroller.NormalizeEmail(id.Email)
	if email == "" {
		return nil, ErrNoEmailClaim
	}

	user, err := usercontroller.GetByEmail(db, email)
	if err == nil {
		fields := map[string]any{"last_login_at": time.Now().UTC()}
		if user.AvatarURL == "" && id.Picture != "" {
			fields["avatar_url"] = id.Picture
			user.AvatarURL = id.Picture
		}

		return user, usercontroller.Update(db, user.ID, fields)
	}

	if !errors.Is(err, usercontroller.ErrUserNotFound) {
		return nil, err
	}

	name := strings.TrimSpace(id.Name)
	if name == "" {
		name = emailPrefix(email)
	}

	now := time.Now().UTC()
	user = models.NewUser(email, name, models.AuthProviderGoogle)
	user.AvatarURL = id.Picture
	user.LastLoginAt = &now

	if err = db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func emailPrefix(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}

	return email
}

func mapUserErr(err error) error {
	if errors.Is(err, usercontroller.ErrUserNotFound) || errors.Is(err, usercontroller.ErrIDEmpty) {
		return ErrUserNotFound
	}

	return err
}
