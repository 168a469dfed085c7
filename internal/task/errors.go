package task

import "errors"

// Precondition and execution errors. Their messages are persisted on
// failed tasks and returned to admins as is.
var (
	// ErrNoProfiles is returned by Enqueue when no generation profile exists.
	ErrNoProfiles = errors.New("No generation profile found")

	// ErrNoDailyWords is returned when the date has no word pool.
	ErrNoDailyWords = errors.New("No daily words found")

	// ErrEmptyWordPool fails a task whose word pool has no words at all.
	ErrEmptyWordPool = errors.New("Daily words record is empty")

	// ErrAllWordsUsed fails a task when earlier articles consumed every word.
	ErrAllWordsUsed = errors.New("All words have been used today")

	// ErrModelNotConfigured fails a task when llm.model_default is empty.
	ErrModelNotConfigured = errors.New("LLM model is not configured")

	// ErrNoQueuedTask is returned by ClaimTask when nothing is queued.
	ErrNoQueuedTask = errors.New("no queued task")

	// ErrInvalidDependencies is returned by NewQueue for missing collaborators.
	ErrInvalidDependencies = errors.New("invalid queue dependencies")
)

// profileNotFoundError keeps the store sentinel reachable through errors.Is
// while presenting the persisted message.
type profileNotFoundError struct {
	msg string
	err error
}

func (e *profileNotFoundError) Error() string { return e.msg }

func (e *profileNotFoundError) Unwrap() error { return e.err }
