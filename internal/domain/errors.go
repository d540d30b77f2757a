package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed input: bad question records, unknown tiers, out of range scores.
	ErrValidation = errors.New("validation failed")
	// ErrPrecondition marks calls the caller should never have made (zero-question sessions, non-positive counts).
	ErrPrecondition = errors.New("precondition violated")
	// ErrNoQuestions is returned when generation left a collection empty.
	ErrNoQuestions = errors.New("no questions available")
	// ErrNotFound is returned by repositories when a document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrSessionNotFound is returned when a quiz session is unknown or already finished.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionComplete is returned when answering past the last question.
	ErrSessionComplete = errors.New("quiz session already complete")
	// ErrUserNotFound is returned when recording an attempt for an unregistered user.
	ErrUserNotFound = errors.New("user not found")
)

// ValidationError describes which field of a request or record was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// PreconditionError names the operation whose contract was broken.
type PreconditionError struct {
	Op     string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *PreconditionError) Unwrap() error { return ErrPrecondition }
