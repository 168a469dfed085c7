package api

import (
	"time"

	"github.com/phrazzld/wordnews/internal/domain"
	"github.com/phrazzld/wordnews/internal/task"
)

// LoginRequest defines the payload for the admin login endpoint.
type LoginRequest struct {
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for the login endpoint.
type AuthResponse struct {
	AccessToken string `json:"token"`

	// ExpiresAt is the RFC 3339 timestamp when the access token expires
	ExpiresAt string `json:"expires_at"`
}

// GenerateTasksRequest enqueues one task per profile for TaskDate.
// Process starts a background drain after the tasks are created.
type GenerateTasksRequest struct {
	TaskDate string `json:"task_date" validate:"required,datetime=2006-01-02"`
	Process  bool   `json:"process"`
}

// GenerateTasksResponse lists the created tasks.
type GenerateTasksResponse struct {
	TaskDate   string        `json:"task_date"`
	Tasks      []task.Handle `json:"tasks"`
	Processing bool          `json:"processing"`
}

// ProcessTasksRequest starts a background drain of TaskDate.
type ProcessTasksRequest struct {
	TaskDate string `json:"task_date" validate:"required,datetime=2006-01-02"`
}

// ProcessTasksResponse acknowledges a background drain.
type ProcessTasksResponse struct {
	TaskDate string `json:"task_date"`
	Status   string `json:"status"`
}

// TaskListResponse lists the tasks of one business date.
type TaskListResponse struct {
	TaskDate string            `json:"task_date"`
	Tasks    []domain.TaskView `json:"tasks"`
}

// DeleteTaskResponse reports a deleted task and the re-drained date.
type DeleteTaskResponse struct {
	ID       string `json:"id"`
	TaskDate string `json:"task_date"`
	Deleted  bool   `json:"deleted"`
}

// ProfileRequest creates or fully replaces a generation profile.
type ProfileRequest struct {
	Name            string `json:"name"             validate:"required,max=100"`
	TopicPreference string `json:"topic_preference" validate:"required"`
	Concurrency     int    `json:"concurrency"      validate:"gt=0"`
	TimeoutMs       int    `json:"timeout_ms"       validate:"gt=0"`
}

// ProfileListResponse lists every generation profile.
type ProfileListResponse struct {
	Profiles []*domain.GenerationProfile `json:"profiles"`
}

// WordPoolRequest replaces the daily word pool of the date in the path.
type WordPoolRequest struct {
	NewWords    []string `json:"new_words"    validate:"max=1000"`
	ReviewWords []string `json:"review_words" validate:"max=1000"`
}

// HealthResponse is returned by the health check.
type HealthResponse struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}
