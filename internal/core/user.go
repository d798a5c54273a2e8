package core

import (
	"net/mail"
	"strings"
	"time"
)

// User is an account known to the identity store.
type User struct {
	UID          string    `json:"uid" dynamodbav:"uid"`
	Email        string    `json:"email" dynamodbav:"email"`
	PasswordHash string    `json:"-" dynamodbav:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt" dynamodbav:"createdAt"`
}

// NormalizeEmail trims and lower-cases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether email parses as a bare address.
func ValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
