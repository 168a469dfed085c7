package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/wordnews/internal/domain"
)

// TaskStore defines the interface for generation task persistence.
// Version: 1.0
type TaskStore interface {
	// Create saves a new queued task.
	// Returns domain validation errors if the task is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// NextQueued returns the oldest queued task for the date, ordered by
	// created_at and then id.
	// Returns ErrTaskNotFound if nothing is queued.
	NextQueued(ctx context.Context, taskDate string) (*domain.Task, error)

	// Claim moves a task from queued to running, setting started_at and
	// incrementing version, only while the row is still queued at the given
	// version. It reports whether this call performed the transition.
	Claim(ctx context.Context, id uuid.UUID, version int, startedAt time.Time) (bool, error)

	// MarkSucceeded unconditionally records success and publication.
	// resultJSON must be valid JSON.
	// Returns ErrTaskNotFound if the task does not exist.
	MarkSucceeded(ctx context.Context, id uuid.UUID, resultJSON []byte, finishedAt time.Time) error

	// MarkFailed unconditionally records failure. contextJSON must be valid JSON.
	// Returns ErrTaskNotFound if the task does not exist.
	MarkFailed(
		ctx context.Context,
		id uuid.UUID,
		message string,
		contextJSON []byte,
		finishedAt time.Time,
	) error

	// ListByDate returns every task of the date with its profile name,
	// oldest first. Returns an empty slice if there are none.
	ListByDate(ctx context.Context, taskDate string) ([]domain.TaskView, error)

	// ListIDsByDate returns the IDs of every task of the date.
	ListIDsByDate(ctx context.Context, taskDate string) ([]uuid.UUID, error)

	// Delete removes a task. Articles must be removed first.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
