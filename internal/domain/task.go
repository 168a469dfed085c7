package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a generation task
type TaskStatus string

// Possible task status values
const (
	TaskStatusQueued    TaskStatus = "queued"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusSucceeded TaskStatus = "succeeded"
	TaskStatusFailed    TaskStatus = "failed"
	TaskStatusCanceled  TaskStatus = "canceled"
)

// TaskType identifies the kind of work a task performs.
type TaskType string

// TaskTypeArticleGeneration is the only task type the queue executes.
const TaskTypeArticleGeneration TaskType = "article_generation"

// TriggerSource records who asked for a task. It has no effect on execution.
type TriggerSource string

// Possible trigger sources
const (
	TriggerSourceManual TriggerSource = "manual"
	TriggerSourceCron   TriggerSource = "cron"
)

// TaskDateLayout is the layout of business dates.
const TaskDateLayout = "2006-01-02"

// Common validation errors for Task
var (
	ErrEmptyTaskID          = errors.New("task ID cannot be empty")
	ErrEmptyTaskProfileID   = errors.New("task profile ID cannot be empty")
	ErrInvalidTaskStatus    = errors.New("invalid task status")
	ErrInvalidTaskType      = errors.New("invalid task type")
	ErrInvalidTriggerSource = errors.New("invalid trigger source")
	ErrInvalidTaskState     = errors.New("task timestamps do not match its status")
)

// Task is one unit of article generation work for a business date and a
// generation profile. Version is the optimistic-lock token used when a
// worker claims the task.
type Task struct {
	ID               uuid.UUID       `json:"id"`
	TaskDate         string          `json:"task_date"`
	Type             TaskType        `json:"type"`
	TriggerSource    TriggerSource   `json:"trigger_source"`
	Status           TaskStatus      `json:"status"`
	ProfileID        uuid.UUID       `json:"profile_id"`
	Version          int             `json:"version"`
	ResultJSON       json.RawMessage `json:"result_json,omitempty"`
	ErrorMessage     string          `json:"error_message,omitempty"`
	ErrorContextJSON json.RawMessage `json:"error_context_json,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	StartedAt        *time.Time      `json:"started_at,omitempty"`
	FinishedAt       *time.Time      `json:"finished_at,omitempty"`
	PublishedAt      *time.Time      `json:"published_at,omitempty"`
}

// TaskView is a task joined with the name of its profile, as listed for admins.
type TaskView struct {
	Task
	ProfileName string `json:"profile_name"`
}

// NewTask creates a queued article generation task at version 0. IDs are
// UUIDv7, so tasks created in the same instant still sort in creation order.
func NewTask(taskDate string, profileID uuid.UUID, source TriggerSource) (*Task, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate task ID: %w", err)
	}
	task := &Task{
		ID:            id,
		TaskDate:      taskDate,
		Type:          TaskTypeArticleGeneration,
		TriggerSource: source,
		Status:        TaskStatusQueued,
		ProfileID:     profileID,
		Version:       0,
		CreatedAt:     time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks field values and that the run-state timestamps agree
// with the status.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}
	if t.ProfileID == uuid.Nil {
		return ErrEmptyTaskProfileID
	}
	if err := ValidateTaskDate(t.TaskDate); err != nil {
		return err
	}
	if t.Type != TaskTypeArticleGeneration {
		return ErrInvalidTaskType
	}
	if !t.TriggerSource.Valid() {
		return ErrInvalidTriggerSource
	}
	if !t.Status.Valid() {
		return ErrInvalidTaskStatus
	}

	switch t.Status {
	case TaskStatusQueued:
		if t.StartedAt != nil || t.FinishedAt != nil || t.PublishedAt != nil {
			return ErrInvalidTaskState
		}
	case TaskStatusRunning:
		if t.StartedAt == nil || t.FinishedAt != nil || t.PublishedAt != nil {
			return ErrInvalidTaskState
		}
	case TaskStatusSucceeded:
		if t.FinishedAt == nil || t.PublishedAt == nil {
			return ErrInvalidTaskState
		}
	case TaskStatusFailed:
		if t.FinishedAt == nil || t.PublishedAt != nil {
			return ErrInvalidTaskState
		}
	default:
		if t.PublishedAt != nil {
			return ErrInvalidTaskState
		}
	}

	return nil
}

// IsTerminal reports whether the task has reached a final status.
func (t *Task) IsTerminal() bool {
	switch t.Status {
	case TaskStatusSucceeded, TaskStatusFailed, TaskStatusCanceled:
		return true
	}
	return false
}

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusQueued, TaskStatusRunning, TaskStatusSucceeded, TaskStatusFailed, TaskStatusCanceled:
		return true
	}
	return false
}

// Valid reports whether s is a known trigger source.
func (s TriggerSource) Valid() bool {
	return s == TriggerSourceManual || s == TriggerSourceCron
}

// ValidateTaskDate checks that date is a calendar date formatted YYYY-MM-DD.
func ValidateTaskDate(date string) error {
	if _, err := time.Parse(TaskDateLayout, date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTaskDate, date)
	}
	return nil
}

// BusinessDate returns the calendar date of now in loc.
func BusinessDate(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(TaskDateLayout)
}
