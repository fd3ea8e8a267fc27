package handlers

import (
	"regexp"
	"strings"
	"time"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}

const passwordSpecials = "!@#$%^&*"

func hasUppercase(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return r >= 'A' && r <= 'Z' }) >= 0
}

// validRegisterPassword enforces the registration policy: 8-16 characters
// with at least one uppercase letter and one special character.
func validRegisterPassword(password string) bool {
	if len(password) < 8 || len(password) > 16 {
		return false
	}
	return hasUppercase(password) && strings.ContainsAny(password, passwordSpecials)
}

// validNewPassword enforces the change/reset policy: 6-50 characters with
// at least one uppercase letter and one special character.
func validNewPassword(password string) bool {
	if len(password) < 6 || len(password) > 50 {
		return false
	}
	return hasUppercase(password) && strings.ContainsAny(password, passwordSpecials)
}

// validEstablishedYear accepts an absent year or one between 1900 and the
// current year.
func validEstablishedYear(year *int) bool {
	if year == nil {
		return true
	}
	return *year >= 1900 && *year <= time.Now().Year()
}
