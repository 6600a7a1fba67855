package model

import (
	"errors"
	"strings"
	"time"
	"unicode"
)

// User is a self-registered reporter.
type User struct {
	ID               int64      `json:"id"`
	Name             string     `json:"full_name"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"`
	ContactNumber    string     `json:"contact_number,omitempty"`
	DOB              string     `json:"dob,omitempty"`
	SuspendedAt      *time.Time `json:"suspended_at,omitempty"`
	SuspensionReason string     `json:"suspension_reason,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Suspended reports whether the user has been suspended by an administrator.
func (u *User) Suspended() bool {
	return u.SuspendedAt != nil
}

// Admin is a dashboard operator. Admins are provisioned from the command line.
type Admin struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	ContactNumber string    `json:"contact_number,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Account is a row of the combined user/admin listing.
type Account struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Account statuses.
const (
	AccountActive    = "active"
	AccountSuspended = "suspended"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// PasswordSymbols is the set of characters that satisfy the symbol rule.
const PasswordSymbols = "@$!%*?&"

// ErrWeakPassword is returned when a password fails the complexity policy.
var ErrWeakPassword = errors.New("password must be at least 8 characters and include uppercase, lowercase, a number and a symbol (" + PasswordSymbols + ")")

// ValidatePassword checks a password against the complexity policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
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
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		}
	}
	if !upper || !lower || !digit || !symbol {
		return ErrWeakPassword
	}
	return nil
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
