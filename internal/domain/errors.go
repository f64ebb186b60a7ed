package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyImage is returned when a task is created without image data.
	ErrEmptyImage = errors.New("image data cannot be empty")

	// ErrInvalidTaskStatus is returned when a task status is not valid.
	ErrInvalidTaskStatus = errors.New("invalid task status")

	// ErrInvalidTransition is returned when a status change is not allowed
	// by the task state machine.
	ErrInvalidTransition = errors.New("invalid task status transition")

	// ErrTaskTerminal is returned for any mutation of a completed or failed task.
	ErrTaskTerminal = errors.New("task is in a terminal state")

	// ErrFieldAlreadySet is returned when a set-once task field is written twice.
	ErrFieldAlreadySet = errors.New("field already set")

	// ErrInvalidSongConfig is returned when a song configuration is incomplete
	// or carries out-of-range values.
	ErrInvalidSongConfig = errors.New("invalid song configuration")
)
