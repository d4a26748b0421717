// Package usecase implements the business logic for the auth feature.
package usecase

import "errors"

// Errors that UserRepository implementations must return so the usecases can tell
// "absent" and "conflict" apart from infrastructure failures.
var (
	// ErrUserNotFound is returned when a user cannot be found by email, ID or provider ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists is returned when a create or update violates a uniqueness constraint
	// (email or provider ID).
	ErrUserAlreadyExists = errors.New("user already exists")
)
