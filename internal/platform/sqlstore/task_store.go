package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/phrazzld/wordnews/internal/domain"
	"github.com/phrazzld/wordnews/internal/platform/logger"
	"github.com/phrazzld/wordnews/internal/store"
)

var taskColumns = []string{
	"t.id", "t.task_date", "t.type", "t.trigger_source", "t.status", "t.profile_id",
	"t.version", "t.result_json", "t.error_message", "t.error_context_json",
	"t.created_at", "t.started_at", "t.finished_at", "t.published_at",
}

// TaskStore implements store.TaskStore.
type TaskStore struct {
	db      store.DBTX
	dialect Dialect
}

// NewTaskStore creates a new task store.
func NewTaskStore(db store.DBTX, dialect Dialect) *TaskStore {
	return &TaskStore{db: db, dialect: dialect}
}

// Ensure TaskStore implements store.TaskStore
var _ store.TaskStore = (*TaskStore)(nil)

// Create implements store.TaskStore.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query, args, err := s.dialect.builder().
		Insert("tasks").
		Columns("id", "task_date", "type", "trigger_source", "status", "profile_id", "version", "created_at").
		Values(
			task.ID.String(), task.TaskDate, string(task.Type), string(task.TriggerSource),
			string(task.Status), task.ProfileID.String(), task.Version, task.CreatedAt.UTC(),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build task insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		logger.FromContextOrDefault(ctx, slog.Default()).Error("failed to create task",
			slog.String("task_id", task.ID.String()),
			slog.String("error", err.Error()))
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrProfileNotFound, err)
		}
		return opError("task", "create", err)
	}
	return nil
}

func (s *TaskStore) selectTasks() sq.SelectBuilder {
	return s.dialect.builder().Select(taskColumns...).From("tasks t")
}

// GetByID implements store.TaskStore.
func (s *TaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query, args, err := s.selectTasks().Where(sq.Eq{"t.id": id.String()}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build task query: %w", err)
	}

	task, err := scanTask(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrTaskNotFound
	}
	if err != nil {
		return nil, opError("task", "get", err)
	}
	return task, nil
}

// NextQueued implements store.TaskStore.
func (s *TaskStore) NextQueued(ctx context.Context, taskDate string) (*domain.Task, error) {
	query, args, err := s.selectTasks().
		Where(sq.Eq{"t.task_date": taskDate, "t.status": string(domain.TaskStatusQueued)}).
		OrderBy("t.created_at ASC", "t.id ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build queued task query: %w", err)
	}

	task, err := scanTask(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrTaskNotFound
	}
	if err != nil {
		return nil, opError("task", "select next", err)
	}
	return task, nil
}

// Claim implements store.TaskStore. The update only applies while the row
// is queued at the expected version; the affected-row count tells whether
// this caller won. Drivers that cannot report the count fall back to
// re-reading the row.
func (s *TaskStore) Claim(ctx context.Context, id uuid.UUID, version int, startedAt time.Time) (bool, error) {
	// Postgres keeps microseconds; truncating keeps the re-read comparison exact.
	startedAt = startedAt.UTC().Truncate(time.Microsecond)
	query, args, err := s.dialect.builder().
		Update("tasks").
		Set("status", string(domain.TaskStatusRunning)).
		Set("started_at", startedAt).
		Set("version", sq.Expr("version + 1")).
		Where(sq.Eq{"id": id.String(), "status": string(domain.TaskStatusQueued), "version": version}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build claim update: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, opError("task", "claim", err)
	}

	rows, err := result.RowsAffected()
	if err == nil {
		return rows == 1, nil
	}

	current, getErr := s.GetByID(ctx, id)
	if getErr != nil {
		return false, getErr
	}
	return current.Status == domain.TaskStatusRunning &&
		current.Version == version+1 &&
		current.StartedAt != nil &&
		current.StartedAt.Equal(startedAt), nil
}

// MarkSucceeded implements store.TaskStore.
func (s *TaskStore) MarkSucceeded(ctx context.Context, id uuid.UUID, resultJSON []byte, finishedAt time.Time) error {
	if err := requireJSON("result_json", resultJSON); err != nil {
		return err
	}

	finishedAt = finishedAt.UTC()
	query, args, err := s.dialect.builder().
		Update("tasks").
		Set("status", string(domain.TaskStatusSucceeded)).
		Set("result_json", string(resultJSON)).
		Set("error_message", nil).
		Set("error_context_json", nil).
		Set("finished_at", finishedAt).
		Set("published_at", finishedAt).
		Where(sq.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build success update: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return opError("task", "mark succeeded", err)
	}
	return checkRowsAffected(result, store.ErrTaskNotFound)
}

// MarkFailed implements store.TaskStore. It clears any publication so a
// failed task is never published.
func (s *TaskStore) MarkFailed(
	ctx context.Context,
	id uuid.UUID,
	message string,
	contextJSON []byte,
	finishedAt time.Time,
) error {
	if err := requireJSON("error_context_json", contextJSON); err != nil {
		return err
	}

	query, args, err := s.dialect.builder().
		Update("tasks").
		Set("status", string(domain.TaskStatusFailed)).
		Set("result_json", nil).
		Set("error_message", message).
		Set("error_context_json", string(contextJSON)).
		Set("finished_at", finishedAt.UTC()).
		Set("published_at", nil).
		Where(sq.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build failure update: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return opError("task", "mark failed", err)
	}
	return checkRowsAffected(result, store.ErrTaskNotFound)
}

// ListByDate implements store.TaskStore.
func (s *TaskStore) ListByDate(ctx context.Context, taskDate string) ([]domain.TaskView, error) {
	query, args, err := s.dialect.builder().
		Select(slices.Concat(taskColumns, []string{"COALESCE(p.name, '')"})...).
		From("tasks t").
		LeftJoin("generation_profiles p ON p.id = t.profile_id").
		Where(sq.Eq{"t.task_date": taskDate}).
		OrderBy("t.created_at ASC", "t.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build task list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, opError("task", "list", err)
	}
	defer func() { _ = rows.Close() }()

	views := []domain.TaskView{}
	for rows.Next() {
		var profileName string
		task, err := scanTask(rows, &profileName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		views = append(views, domain.TaskView{Task: *task, ProfileName: profileName})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}
	return views, nil
}

// ListIDsByDate implements store.TaskStore.
func (s *TaskStore) ListIDsByDate(ctx context.Context, taskDate string) ([]uuid.UUID, error) {
	query, args, err := s.dialect.builder().
		Select("id").
		From("tasks").
		Where(sq.Eq{"task_date": taskDate}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build task id query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, opError("task", "list ids", err)
	}
	defer func() { _ = rows.Close() }()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan task id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task ids: %w", err)
	}
	return ids, nil
}

// Delete implements store.TaskStore.
func (s *TaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := s.dialect.builder().
		Delete("tasks").
		Where(sq.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build task delete: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return opError("task", "delete", err)
	}
	return checkRowsAffected(result, store.ErrTaskNotFound)
}

// WithTx implements store.TaskStore.
func (s *TaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &TaskStore{db: tx, dialect: s.dialect}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask reads the taskColumns projection, followed by any extra columns.
func scanTask(row rowScanner, extra ...any) (*domain.Task, error) {
	var (
		task                         domain.Task
		taskType, source, status     string
		resultJSON, errMsg, errCtx   sql.NullString
		started, finished, published sql.NullTime
	)

	dest := []any{
		&task.ID, &task.TaskDate, &taskType, &source, &status, &task.ProfileID,
		&task.Version, &resultJSON, &errMsg, &errCtx,
		&task.CreatedAt, &started, &finished, &published,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	task.Type = domain.TaskType(taskType)
	task.TriggerSource = domain.TriggerSource(source)
	task.Status = domain.TaskStatus(status)
	if resultJSON.Valid {
		task.ResultJSON = []byte(resultJSON.String)
	}
	task.ErrorMessage = errMsg.String
	if errCtx.Valid {
		task.ErrorContextJSON = []byte(errCtx.String)
	}
	task.StartedAt = nullTimePtr(started)
	task.FinishedAt = nullTimePtr(finished)
	task.PublishedAt = nullTimePtr(published)
	return &task, nil
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
