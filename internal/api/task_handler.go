package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/wordnews/internal/api/shared"
	"github.com/phrazzld/wordnews/internal/domain"
	"github.com/phrazzld/wordnews/internal/platform/logger"
	"github.com/phrazzld/wordnews/internal/store"
	"github.com/phrazzld/wordnews/internal/task"
)

// TaskQueue is the part of task.Queue used by the admin API.
type TaskQueue interface {
	Enqueue(ctx context.Context, taskDate string, source domain.TriggerSource) ([]task.Handle, error)
	DeleteTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error)
}

// BackgroundDrainer starts a detached drain of one business date.
type BackgroundDrainer interface {
	Start(ctx context.Context, taskDate string)
}

// TaskHandler serves the task administration routes.
type TaskHandler struct {
	queue    TaskQueue
	drainer  BackgroundDrainer
	tasks    store.TaskStore
	location *time.Location
	now      func() time.Time
}

// NewTaskHandler creates a TaskHandler. Dates default to today in loc.
func NewTaskHandler(
	queue TaskQueue,
	drainer BackgroundDrainer,
	tasks store.TaskStore,
	loc *time.Location,
) *TaskHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &TaskHandler{queue: queue, drainer: drainer, tasks: tasks, location: loc, now: time.Now}
}

// Generate handles POST /api/admin/tasks/generate.
func (h *TaskHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateTasksRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	handles, err := h.queue.Enqueue(r.Context(), req.TaskDate, domain.TriggerSourceManual)
	if err != nil {
		handleAPIError(w, r, err, "enqueue tasks")
		return
	}

	if req.Process {
		h.drainer.Start(r.Context(), req.TaskDate)
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, GenerateTasksResponse{
		TaskDate:   req.TaskDate,
		Tasks:      handles,
		Processing: req.Process,
	})
}

// Process handles POST /api/admin/tasks/process.
func (h *TaskHandler) Process(w http.ResponseWriter, r *http.Request) {
	var req ProcessTasksRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	h.drainer.Start(r.Context(), req.TaskDate)
	shared.RespondWithJSON(w, r, http.StatusAccepted, ProcessTasksResponse{
		TaskDate: req.TaskDate,
		Status:   "processing",
	})
}

// List handles GET /api/admin/tasks?task_date=YYYY-MM-DD.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	taskDate := r.URL.Query().Get("task_date")
	if taskDate == "" {
		taskDate = domain.BusinessDate(h.now(), h.location)
	}
	if err := domain.ValidateTaskDate(taskDate); err != nil {
		handleAPIError(w, r, err, "list tasks")
		return
	}

	tasks, err := h.tasks.ListByDate(r.Context(), taskDate)
	if err != nil {
		handleAPIError(w, r, err, "list tasks")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{TaskDate: taskDate, Tasks: tasks})
}

// Get handles GET /api/admin/tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		handleAPIError(w, r, err, "get task")
		return
	}

	t, err := h.tasks.GetByID(r.Context(), id)
	if err != nil {
		handleAPIError(w, r, err, "get task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, t)
}

// Delete handles DELETE /api/admin/tasks/{id}. The task's date is drained
// again afterwards so that waiting tasks are not stranded.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		handleAPIError(w, r, err, "delete task")
		return
	}

	deleted, err := h.queue.DeleteTask(r.Context(), id)
	if err != nil {
		handleAPIError(w, r, err, "delete task")
		return
	}

	logger.FromContextOrDefault(r.Context(), slog.Default()).InfoContext(r.Context(), "task deleted",
		slog.String("task_id", deleted.ID.String()),
		slog.String("task_date", deleted.TaskDate))
	h.drainer.Start(r.Context(), deleted.TaskDate)

	shared.RespondWithJSON(w, r, http.StatusOK, DeleteTaskResponse{
		ID:       deleted.ID.String(),
		TaskDate: deleted.TaskDate,
		Deleted:  true,
	})
}
