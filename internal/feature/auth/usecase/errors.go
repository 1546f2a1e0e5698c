// Package usecase implements the business logic for the auth feature.
package usecase

import "event_backend/internal/shared/apperr"

var (
	// ErrUserNotFound is returned when a user cannot be found by email or ID.
	ErrUserNotFound = apperr.New(apperr.KindNotFound, "user not found")

	// ErrEmailAlreadyExists is returned when attempting to create a user with an email that already exists.
	ErrEmailAlreadyExists = apperr.New(apperr.KindConflict, "email already exists")

	// ErrInvalidCredentials is returned when the password does not match.
	ErrInvalidCredentials = apperr.New(apperr.KindUnauthorized, "invalid email or password")

	// ErrAccountDisabled is returned when a deactivated user tries to log in.
	ErrAccountDisabled = apperr.New(apperr.KindForbidden, "account is disabled")

	// ErrPasswordTooShort is returned when the password does not meet the minimum length.
	ErrPasswordTooShort = apperr.New(apperr.KindInvalid, "password must be at least 8 characters long")

	// ErrNameRequired is returned when the first or last name is blank.
	ErrNameRequired = apperr.New(apperr.KindInvalid, "first and last name are required")

	// ErrInvalidEmail is returned when the email is blank.
	ErrInvalidEmail = apperr.New(apperr.KindInvalid, "email is required")

	// ErrInvalidRole is returned for an unknown role name.
	ErrInvalidRole = apperr.New(apperr.KindInvalid, "unknown role")
)
