// Package validation holds input checks shared by the http handlers,
// both as plain functions and as go-playground/validator tags.
package validation

import (
	"regexp"
	"strings"
	"time"
	"unicode"
)

var (
	emailRe      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	dutchPhoneRe = regexp.MustCompile(`^(\+31|0)[1-9]\d{8}$`)
)

// IsEmail reports whether s looks like an e-mail address.
func IsEmail(s string) bool {
	return emailRe.MatchString(s)
}

// IsDutchPhone reports whether s is a dutch phone number, whitespace ignored.
func IsDutchPhone(s string) bool {
	return dutchPhoneRe.MatchString(stripSpaces(s))
}

// NormalizePhone removes all whitespace from a phone number.
func NormalizePhone(s string) string {
	return stripSpaces(s)
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}

		return r
	}, s)
}

// IsValidPriceRange accepts open ranges and otherwise needs 0 <= min <= max.
func IsValidPriceRange(minPrice, maxPrice *float64) bool {
	if minPrice == nil || maxPrice == nil {
		return true
	}

	return *minPrice <= *maxPrice && *minPrice >= 0 && *maxPrice >= 0
}

// IsFutureDate reports whether t is today or later, in now's location.
func IsFutureDate(t, now time.Time) bool {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	return !t.Before(today)
}
