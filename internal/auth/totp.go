package auth

import (
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
	"github.com/pquerna/otp/totp"

	usercontroller "github.com/rentfusion/rentfusion/internal/db/controller/user"
	"github.com/rentfusion/rentfusion/internal/db/models"
	"github.com/rentfusion/rentfusion/internal/uniuri"
)

// RecoveryCodeCount is the number of recovery codes handed out on enrollment.
const RecoveryCodeCount = 8

// Enrollment is shown to the user once, when a second factor is set up.
type Enrollment struct {
	URL           string   `json:"url"`
	Secret        string   `json:"secret"`
	RecoveryCodes []string `json:"recoveryCodes"`
}

// EnrollTOTP creates a new secret and recovery codes. The second factor is
// not enforced until ConfirmTOTP accepted a first code.
func (p *LocalProvider) EnrollTOTP(userID, issuer string) (*Enrollment, error) {
	user, err := usercontroller.Get(p.db, userID)
	if err != nil {
		return nil, mapUserErr(err)
	}

	if user.TOTPEnabled {
		return nil, ErrTOTPAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: user.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate totp secret: %w", err)
	}

	codes := uniuri.NewCodes(RecoveryCodeCount)

	hashes := make([]string, 0, len(codes))
	for _, c := range codes {
		h, hErr := argon2id.CreateHash(c, argon2id.DefaultParams)
		if hErr != nil {
			return nil, fmt.Errorf("failed to hash recovery code: %w", hErr)
		}

		hashes = append(hashes, h)
	}

	user.TOTPSecret = key.Secret()
	user.RecoveryCodes = hashes

	if err = p.db.Model(user).Select("totp_secret", "recovery_codes").Updates(user).Error; err != nil {
		return nil, fmt.Errorf("failed to store totp secret: %w", err)
	}

	return &Enrollment{
		URL:           key.URL(),
		Secret:        key.Secret(),
		RecoveryCodes: codes,
	}, nil
}

// ConfirmTOTP turns the second factor on once the user proved the app works.
func (p *LocalProvider) ConfirmTOTP(userID, code string) error {
	user, err := usercontroller.Get(p.db, userID)
	if err != nil {
		return mapUserErr(err)
	}

	if user.TOTPSecret == "" {
		return ErrTOTPNotEnrolled
	}

	if !totp.Validate(strings.TrimSpace(code), user.TOTPSecret) {
		return ErrInvalidTOTP
	}

	return usercontroller.Update(p.db, userID, map[string]any{"totp_enabled": true})
}

// DisableTOTP turns the second factor off. It needs a valid code or recovery code.
func (p *LocalProvider) DisableTOTP(userID, code string) error {
	user, err := usercontroller.Get(p.db, userID)
	if err != nil {
		return mapUserErr(err)
	}

	if !user.TOTPEnabled {
		return ErrTOTPNotEnrolled
	}

	if err = p.checkSecondFactor(user, code); err != nil {
		return err
	}

	user.TOTPEnabled = false
	user.TOTPSecret = ""
	user.RecoveryCodes = nil

	return p.db.Model(user).
		Select("totp_enabled", "totp_secret", "recovery_codes").
		Updates(user).Error
}

// checkSecondFactor accepts a TOTP code or consumes a matching recovery code.
func (p *LocalProvider) checkSecondFactor(user *models.User, code string) error {
	code = strings.TrimSpace(code)

	if totp.Validate(code, user.TOTPSecret) {
		return nil
	}

	code = strings.ToUpper(strings.ReplaceAll(code, "-", ""))

	for i, h := range user.RecoveryCodes {
		match, err := argon2id.ComparePasswordAndHash(code, h)
		if err != nil || !match {
			continue
		}

		remaining := make([]string, 0, len(user.RecoveryCodes)-1)
		remaining = append(remaining, user.RecoveryCodes[:i]...)
		remaining = append(remaining, user.RecoveryCodes[i+1:]...)
		user.RecoveryCodes = remaining

		if err = p.db.Model(user).Select("recovery_codes").Updates(user).Error; err != nil {
			return fmt.Errorf("failed to consume recovery code: %w", err)
		}

		return nil
	}

	return ErrInvalidTOTP
}
