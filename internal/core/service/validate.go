package service

import (
	"regexp"
	"unicode"

	"github.com/authstack/identity-service/internal/core/domain"
)

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
)

func validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return domain.ErrInvalidEmail
	}
	return nil
}

func validateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return domain.ErrInvalidUsername
	}
	return nil
}

// validatePassword enforces the minimum strength rule: at least 8
// characters with at least one letter and one digit.
func validatePassword(password string) error {
	if len(password) < 8 {
		return domain.ErrWeakPassword
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return domain.ErrWeakPassword
	}
	return nil
}
