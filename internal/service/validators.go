package service

import (
	"fmt"
	"net/mail"
	"strings"
)

// ValidateEmail checks that an email parses as a bare RFC 5322 address.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

// ValidatePhone checks that a phone number is 7-15 digits with an optional
// leading plus sign.
func ValidatePhone(phone string) error {
	digits := strings.TrimPrefix(phone, "+")
	if len(digits) < 7 || len(digits) > 15 {
		return fmt.Errorf("invalid phone number: must be 7-15 digits")
	}
	if !isDigits(digits) {
		return fmt.Errorf("invalid phone number: must contain only digits")
	}
	return nil
}

// ValidatePassword enforces a minimum password length.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("invalid password: must be at least 8 characters")
	}
	return nil
}

// ValidateAmount checks if amount is valid (positive)
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("invalid amount: must be greater than 0")
	}
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
