package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/wordnews/internal/domain"
)

// EventType names a task lifecycle transition.
type EventType string

const (
	TaskEnqueued  EventType = "task.enqueued"
	TaskClaimed   EventType = "task.claimed"
	TaskSucceeded EventType = "task.succeeded"
	TaskFailed    EventType = "task.failed"
)

// TaskEvent describes one lifecycle transition of a generation task.
type TaskEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	Type      EventType `json:"type"`
	TaskID    uuid.UUID `json:"task_id"`
	TaskDate  string    `json:"task_date"`
	ProfileID uuid.UUID `json:"profile_id"`

	// Payload holds transition-specific details serialized as JSON, such as
	// the failure context of a task.failed event. It may be empty.
	Payload json.RawMessage `json:"payload,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *TaskEvent) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewTaskEvent creates an event of the given type for task. A nil payload
// leaves Payload empty.
func NewTaskEvent(eventType EventType, task *domain.Task, payload any) (*TaskEvent, error) {
	event := &TaskEvent{
		ID:        uuid.New(),
		Type:      eventType,
		TaskID:    task.ID,
		TaskDate:  task.TaskDate,
		ProfileID: task.ProfileID,
		CreatedAt: time.Now().UTC(),
	}

	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		event.Payload = payloadBytes
	}

	return event, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *TaskEvent) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *TaskEvent) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *TaskEvent) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows the queue to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *TaskEvent) error
}

// NopEmitter discards every event.
type NopEmitter struct{}

// EmitEvent implements EventEmitter.
func (NopEmitter) EmitEvent(context.Context, *TaskEvent) error { return nil }
