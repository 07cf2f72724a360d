package validation

import (
	"strings"
	"unicode"
)

// Password strength labels.
const (
	StrengthWeak   = "weak"
	StrengthMedium = "medium"
	StrengthStrong = "strong"
)

const (
	minPasswordLen  = 8
	longPasswordLen = 12
	specialChars    = `!@#$%^&*(),.?":{}|<>`
)

// PasswordStrength is the result of CheckPassword.
type PasswordStrength struct {
	IsValid  bool     `json:"isValid"`
	Score    int      `json:"score"`
	Strength string   `json:"strength"`
	Errors   []string `json:"errors"`
}

// CheckPassword scores a password from 0 to 6.
// Length, upper case, lower case and a digit are required, a special
// character and a length of 12 or more only raise the score.
func CheckPassword(pw string) PasswordStrength {
	var (
		res                     = PasswordStrength{Errors: []string{}}
		upper, lower, digit, sp bool
	)

	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}

		if strings.ContainsRune(specialChars, r) {
			sp = true
		}
	}

	length := len([]rune(pw))

	rules := []struct {
		ok  bool
		msg string
	}{
		{length >= minPasswordLen, "Password must be at least 8 characters"},
		{upper, "Password must contain at least one uppercase letter"},
		{lower, "Password must contain at least one lowercase letter"},
		{digit, "Password must contain at least one number"},
	}

	for _, rule := range rules {
		if rule.ok {
			res.Score++
		} else {
			res.Errors = append(res.Errors, rule.msg)
		}
	}

	if sp {
		res.Score++
	}

	if length >= longPasswordLen {
		res.Score++
	}

	switch {
	case res.Score >= 5:
		res.Strength = StrengthStrong
	case res.Score >= 4:
		res.Strength = StrengthMedium
	default:
		res.Strength = StrengthWeak
	}

	res.IsValid = len(res.Errors) == 0

	return res
}
