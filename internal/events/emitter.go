package events

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
)

// InMemoryEventEmitter dispatches task events synchronously to its handlers
// in registration order.
type InMemoryEventEmitter struct {
	mu       sync.RWMutex
	handlers []EventHandler
	logger   *slog.Logger
}

// NewInMemoryEventEmitter returns an emitter with no handlers.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventEmitter{logger: logger.With(slog.String("component", "task_events"))}
}

// RegisterHandler appends handler to the dispatch list.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handler)
}

// EmitEvent delivers event to every handler, even after one fails, and
// returns the handler errors joined.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *TaskEvent) error {
	e.mu.RLock()
	handlers := slices.Clone(e.handlers)
	e.mu.RUnlock()

	var errs []error
	for i, handler := range handlers {
		err := handler.HandleEvent(ctx, event)
		if err == nil {
			continue
		}
		e.logger.WarnContext(ctx, "event handler failed",
			slog.Int("handler_index", i),
			slog.String("event_type", string(event.Type)),
			slog.String("task_id", event.TaskID.String()),
			slog.String("error", err.Error()))
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// LoggingHandler writes every event to a structured logger.
type LoggingHandler struct {
	logger *slog.Logger
}

// NewLoggingHandler returns a handler that logs events at info level, or at
// warn level for task.failed.
func NewLoggingHandler(logger *slog.Logger) *LoggingHandler {
	return &LoggingHandler{logger: logger.With("component", "task_events")}
}

// HandleEvent implements EventHandler.
func (h *LoggingHandler) HandleEvent(ctx context.Context, event *TaskEvent) error {
	level := slog.LevelInfo
	if event.Type == TaskFailed {
		level = slog.LevelWarn
	}

	attrs := []slog.Attr{
		slog.String("event_id", event.ID.String()),
		slog.String("task_id", event.TaskID.String()),
		slog.String("task_date", event.TaskDate),
		slog.String("profile_id", event.ProfileID.String()),
	}
	if len(event.Payload) > 0 {
		attrs = append(attrs, slog.String("payload", string(event.Payload)))
	}

	h.logger.LogAttrs(ctx, level, string(event.Type), attrs...)
	return nil
}
