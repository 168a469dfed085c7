package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidFormat is returned when data is not in the expected format.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidTaskDate is returned when a business date is not YYYY-MM-DD.
	ErrInvalidTaskDate = errors.New("task date must be formatted as YYYY-MM-DD")

	// ErrUnknownContentSchema is returned when stored article content carries
	// a schema discriminator this version cannot read.
	ErrUnknownContentSchema = errors.New("unknown article content schema")
)
