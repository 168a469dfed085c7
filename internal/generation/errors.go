package generation

import (
	"errors"
	"fmt"
)

// Errors shared by the pipeline and provider adapters.
var (
	// ErrInvalidResponse is returned when the provider response cannot be parsed or is malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the provider blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error from language model")

	// ErrInvalidConfig is returned when a client configuration is invalid
	ErrInvalidConfig = errors.New("invalid language model configuration")
)

// Stage-level failures. Their messages are persisted verbatim as the task
// error, so they are phrased for an operator.
var (
	ErrEmptyWordSelection   = errors.New("LLM returned empty word selection")
	ErrEmptyResearch        = errors.New("LLM returned empty research content")
	ErrNoSourceURLs         = errors.New("LLM research produced no source URLs")
	ErrEmptyDraft           = errors.New("LLM returned empty draft content")
	ErrEmptyGeneration      = errors.New("LLM returned empty content")
	ErrInvalidWordSelection = errors.New("invalid word selection")
	ErrInvalidOutput        = errors.New("invalid LLM JSON output")
)

// Stage identifies one step of the pipeline.
type Stage string

const (
	StageWordSelection Stage = "word_selection"
	StageResearch      Stage = "research"
	StageDraft         Stage = "draft"
	StageGeneration    Stage = "generation"
)

// StageError reports which stage failed. Its message is the message of
// the underlying error.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// detailError keeps a sentinel for errors.Is while presenting a fixed,
// human readable message.
type detailError struct {
	msg      string
	sentinel error
}

func (e *detailError) Error() string { return e.msg }

func (e *detailError) Unwrap() error { return e.sentinel }

func newDetailError(sentinel error, format string, args ...any) error {
	return &detailError{msg: fmt.Sprintf(format, args...), sentinel: sentinel}
}
