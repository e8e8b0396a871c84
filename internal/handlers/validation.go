package handlers

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,20}$`)
	roomNamePattern = regexp.MustCompile(`^[A-Za-z0-9 _-]{1,50}$`)

	// Room names are displayed verbatim and interpolated into search
	// queries on the client, so anything query-shaped is refused
	// outright.
	suspiciousPattern = regexp.MustCompile(`(?i)(union|select|insert|update|delete|drop|--|;|/\*)`)
)

// validateUsername checks the login username: 3-20 characters of
// letters, digits, underscore, or hyphen.
func validateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("username must be 3-20 characters of letters, digits, '_' or '-'")
	}
	return nil
}

// validateAge checks the self-reported age range.
func validateAge(age int) error {
	if age < 13 || age > 120 {
		return fmt.Errorf("age must be between 13 and 120")
	}
	return nil
}

// validateSex accepts the two values the client offers.
func validateSex(sex string) error {
	if sex != "F" && sex != "M" {
		return fmt.Errorf("sex must be F or M")
	}
	return nil
}

// validateRoomName checks a room name: 1-50 characters of letters,
// digits, spaces, underscore, or hyphen, with no query-shaped content.
func validateRoomName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("room name required")
	}
	if !roomNamePattern.MatchString(name) || suspiciousPattern.MatchString(name) {
		return fmt.Errorf("room name must be 1-50 characters of letters, digits, spaces, '_' or '-'")
	}
	return nil
}

// validatePassword checks an optional account password: 8-100
// characters containing an upper-case letter, a lower-case letter, a
// digit, and a symbol.
func validatePassword(password string) error {
	if len(password) < 8 || len(password) > 100 {
		return fmt.Errorf("password must be 8-100 characters")
	}
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	if !upper || !lower || !digit || !symbol {
		return fmt.Errorf("password must contain upper and lower case letters, a digit, and a symbol")
	}
	return nil
}

// validateUserID rejects empty identifiers.
func validateUserID(userID string) error {
	if normalizeID(userID) == "" {
		return fmt.Errorf("userId required")
	}
	return nil
}

// validateRoomID rejects empty identifiers.
func validateRoomID(roomID string) error {
	if normalizeID(roomID) == "" {
		return fmt.Errorf("roomId required")
	}
	return nil
}
