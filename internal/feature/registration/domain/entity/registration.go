// Package entity defines the domain entities for the registration feature.
package entity

import "time"

// Status is the lifecycle state of a registration.
type Status string

const (
	StatusRegistered Status = "REGISTERED"
	StatusCancelled  Status = "CANCELLED"
	StatusAttended   Status = "ATTENDED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusRegistered, StatusCancelled, StatusAttended:
		return true
	default:
		return false
	}
}

// HoldsSeat reports whether a registration in this status counts against capacity.
func (s Status) HoldsSeat() bool {
	return s == StatusRegistered || s == StatusAttended
}

// ActiveStatuses are the statuses that hold a seat.
var ActiveStatuses = []Status{StatusRegistered, StatusAttended}

// Registration links a user to an event. At most one row exists per
// (event, user) pair; cancelling and re-registering reuse it.
type Registration struct {
	// ID is the unique identifier for the registration.
	ID uint `gorm:"primaryKey"`

	EventID uint `gorm:"not null;uniqueIndex:idx_registrations_event_user;index"`
	UserID  uint `gorm:"not null;uniqueIndex:idx_registrations_event_user;index"`

	Status Status `gorm:"size:20;not null;index"`

	// RegisteredAt is reset each time the registration becomes REGISTERED.
	RegisteredAt time.Time `gorm:"not null"`

	// ConfirmationSentAt is set once the confirmation has been handed to the notifier.
	ConfirmationSentAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Attendance records that a registered user checked in.
type Attendance struct {
	ID uint `gorm:"primaryKey"`

	EventID uint `gorm:"not null;uniqueIndex:idx_attendances_event_user;index"`
	UserID  uint `gorm:"not null;uniqueIndex:idx_attendances_event_user"`

	CheckedInAt time.Time `gorm:"not null"`
}
