package service

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

var codePattern = regexp.MustCompile(`^\d{6}$`)

// ValidateUsername requires at least 3 characters.
func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("username is required")
	}
	if len([]rune(username)) < 3 {
		return fmt.Errorf("username must be at least 3 characters")
	}
	return nil
}

// ValidatePassword requires at least 6 characters.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}
	if len([]rune(password)) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	return nil
}

// ValidateEmail requires a bare address such as ada@example.com.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

// ValidateCode requires exactly six digits.
func ValidateCode(code string) error {
	if code == "" {
		return fmt.Errorf("verification code is required")
	}
	if !codePattern.MatchString(code) {
		return fmt.Errorf("code must be 6 digits")
	}
	return nil
}
