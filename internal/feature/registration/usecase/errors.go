// Package usecase implements the registration engine: registering for events,
// cancelling and checking in, with capacity and uniqueness guarantees.
package usecase

import "event_backend/internal/shared/apperr"

var (
	// ErrEventNotFound is returned when the event does not exist, or is inactive
	// for operations that require an active event.
	ErrEventNotFound = apperr.New(apperr.KindNotFound, "event not found")

	// ErrUserNotFound is returned when the user does not exist.
	ErrUserNotFound = apperr.New(apperr.KindNotFound, "user not found")

	// ErrRegistrationNotFound is returned when no registration exists for the pair.
	ErrRegistrationNotFound = apperr.New(apperr.KindNotFound, "registration not found")

	// ErrAlreadyRegistered is returned when the user already holds a seat.
	ErrAlreadyRegistered = apperr.New(apperr.KindConflict, "user already registered for this event")

	// ErrEventFull is returned when the event has no seats left.
	ErrEventFull = apperr.New(apperr.KindCapacityExceeded, "event is at full capacity")

	// ErrNotRegistered is returned when attendance is marked for a registration
	// that is not currently REGISTERED.
	ErrNotRegistered = apperr.New(apperr.KindConflict, "registration is not active")

	// ErrAttendanceNotFound is returned when no attendance exists for the pair.
	ErrAttendanceNotFound = apperr.New(apperr.KindNotFound, "attendance not found")

	// ErrAlreadyAttended is returned when an attendance row already exists for the pair.
	ErrAlreadyAttended = apperr.New(apperr.KindConflict, "attendance already recorded")

	// ErrInvalidStatus is returned for an unknown status filter.
	ErrInvalidStatus = apperr.New(apperr.KindInvalid, "unknown registration status")

	// ErrInvalidWindow is returned when the reminder window is not positive.
	ErrInvalidWindow = apperr.New(apperr.KindInvalid, "reminder window must be positive")
)
