package models

import "errors"

// Error taxonomy shared by the engine packages. Callers test with errors.Is;
// the HTTP layer maps each to a status code.
var (
	// ErrNotFound marks a missing program, day, exercise or workout.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument marks input the caller must correct.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrIncompatibleMutation marks a swap whose target exercise does not
	// train any muscle group of the exercise it replaces.
	ErrIncompatibleMutation = errors.New("incompatible mutation")
	// ErrInvariantViolation marks stored data that cannot have been produced
	// by a valid sequence of operations.
	ErrInvariantViolation = errors.New("invariant violation")
)
