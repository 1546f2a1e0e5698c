// Package entity defines the domain entities for the events feature.
package entity

import "time"

// Event is a scheduled event users can register for.
type Event struct {
	// ID is the unique identifier for the event.
	ID uint `gorm:"primaryKey"`

	Title       string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"`

	// EventDate is the scheduled start, stored in UTC.
	EventDate time.Time `gorm:"not null;index"`

	Venue    string `gorm:"size:255"`
	Category string `gorm:"size:100;index"`

	// Capacity is the maximum number of non-cancelled registrations.
	Capacity int `gorm:"not null"`

	// RegisteredCount mirrors the number of REGISTERED and ATTENDED
	// registrations. Only the registration engine writes it.
	RegisteredCount int `gorm:"not null;default:0"`

	// CreatedBy is the owning user's ID.
	CreatedBy uint `gorm:"not null;index"`

	// Active is false once the event has been soft-deleted.
	Active bool `gorm:"not null;index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AvailableSeats returns how many registrations the event can still accept.
func (e *Event) AvailableSeats() int {
	if n := e.Capacity - e.RegisteredCount; n > 0 {
		return n
	}
	return 0
}

// IsFull reports whether the event has reached its capacity.
func (e *Event) IsFull() bool {
	return e.RegisteredCount >= e.Capacity
}

// OwnedBy reports whether userID created the event.
func (e *Event) OwnedBy(userID uint) bool {
	return userID != 0 && e.CreatedBy == userID
}
