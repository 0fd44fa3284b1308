package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	UsernameMinLength = 3
	UsernameMaxLength = 30
	FullnameMaxLength = 100
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.]+$`)

// ValidateUsername checks a trimmed username.
func ValidateUsername(username string) error {
	if username == "" {
		return errors.New("username is required")
	}
	if len(username) < UsernameMinLength || len(username) > UsernameMaxLength {
		return errors.New("username must be between 3 and 30 characters")
	}
	if !usernamePattern.MatchString(username) {
		return errors.New("username may only contain letters, numbers, dots and underscores")
	}
	return nil
}

// ValidateFullname validates the display name
func ValidateFullname(name string) error {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return errors.New("full name is required")
	}

	if utf8.RuneCountInString(trimmed) > FullnameMaxLength {
		return errors.New("full name is too long (max 100 characters)")
	}

	return nil
}
