// Package usecase implements the business logic for the events feature.
package usecase

import "event_backend/internal/shared/apperr"

var (
	// ErrEventNotFound is returned when an event does not exist or has been deleted.
	ErrEventNotFound = apperr.New(apperr.KindNotFound, "event not found")

	// ErrAdminOnly is returned when a non-admin tries to create an event.
	ErrAdminOnly = apperr.New(apperr.KindForbidden, "only admins can create events")

	// ErrNotOwner is returned when the caller neither owns the event nor is an admin.
	ErrNotOwner = apperr.New(apperr.KindForbidden, "you don't have permission to modify this event")

	// ErrAuthenticationRequired is returned when an anonymous caller attempts a mutation.
	ErrAuthenticationRequired = apperr.New(apperr.KindUnauthorized, "authentication required")

	// ErrInvalidCapacity is returned when capacity is not a positive integer.
	ErrInvalidCapacity = apperr.New(apperr.KindInvalid, "capacity must be greater than zero")

	// ErrInvalidEventDate is returned when the event date is not an ISO-8601 date-time.
	ErrInvalidEventDate = apperr.New(apperr.KindInvalid, "event date must be an ISO-8601 date-time")

	// ErrEventDateInPast is returned when a new event is scheduled before now.
	ErrEventDateInPast = apperr.New(apperr.KindInvalid, "event date must not be in the past")

	// ErrTitleRequired is returned when the title is blank.
	ErrTitleRequired = apperr.New(apperr.KindInvalid, "title is required")

	// ErrCapacityBelowRegistered is returned when an update would drop capacity
	// below the number of seats already taken.
	ErrCapacityBelowRegistered = apperr.New(apperr.KindConflict, "capacity cannot be lower than the number of registrations")
)
