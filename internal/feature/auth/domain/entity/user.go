// Package entity defines the domain entities for the auth feature.
package entity

import (
	"strings"
	"time"

	"event_backend/internal/shared/identity"
)

// User represents a registered user in the system.
// It contains authentication credentials, profile data and the authorization role.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey"`

	// Email is the user's email address used for authentication.
	// It is stored lower-cased and must be unique across all users.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// Password is the hashed password for the user.
	// This should never store plaintext passwords.
	Password string `gorm:"size:255;not null"`

	FirstName string `gorm:"size:100;not null"`
	LastName  string `gorm:"size:100;not null"`

	// Role is changed only through the admin CLI.
	Role identity.Role `gorm:"size:20;not null"`

	// Active is false for disabled accounts. Users are never hard-deleted.
	Active bool `gorm:"not null"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time
}

// DisplayName returns "First Last", trimmed.
func (u *User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
