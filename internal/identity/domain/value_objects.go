package domain

import (
	"errors"
	"regexp"
	"strings"
)

var ErrInvalidEmail = errors.New("invalid email address")

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Email is a validated, lower-cased email address.
type Email struct {
	value string
}

// NewEmail validates and normalizes an email address.
func NewEmail(value string) (Email, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if !emailRegex.MatchString(value) {
		return Email{}, ErrInvalidEmail
	}
	return Email{value: value}, nil
}

func (e Email) String() string { return e.value }

// Equals checks if two emails are equal.
func (e Email) Equals(other Email) bool { return e.value == other.value }
