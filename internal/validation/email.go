package validation

import (
	"errors"
	"net/mail"
)

// ValidateEmail validates email format and length
// Uses Go's built-in net/mail parser which follows RFC 5322
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}

	// Shortest possible address is a@b.c
	if len(email) < 5 {
		return errors.New("email is too short")
	}

	// RFC 5321: total address max 254 characters
	if len(email) > 254 {
		return errors.New("email is too long (max 254 characters)")
	}

	_, err := mail.ParseAddress(email)
	if err != nil {
		return errors.New("invalid email format")
	}

	return nil
}
