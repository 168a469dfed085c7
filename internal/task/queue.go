package task

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/wordnews/internal/domain"
	"github.com/phrazzld/wordnews/internal/events"
	"github.com/phrazzld/wordnews/internal/generation"
	"github.com/phrazzld/wordnews/internal/platform/logger"
	"github.com/phrazzld/wordnews/internal/redact"
	"github.com/phrazzld/wordnews/internal/store"
)

// Generator produces the article set for one task. *generation.Pipeline
// implements it.
type Generator interface {
	Run(ctx context.Context, model string, in generation.Input) (*generation.Result, error)
}

// Dependencies are the collaborators of a Queue.
type Dependencies struct {
	// DB is the handle the final article and task writes share a transaction on.
	DB       *sql.DB
	Tasks    store.TaskStore
	Profiles store.ProfileStore
	Words    store.WordPoolStore
	Articles store.ArticleStore
	Pipeline Generator
	// Emitter receives lifecycle events; nil disables them.
	Emitter events.EventEmitter
	// Model is the model identifier every task runs with.
	Model  string
	Logger *slog.Logger
}

// Handle identifies a task created by Enqueue.
type Handle struct {
	TaskID      uuid.UUID `json:"id"`
	ProfileID   uuid.UUID `json:"profile_id"`
	ProfileName string    `json:"profile_name"`
}

// Summary counts the outcomes of one or more drain loops.
type Summary struct {
	Claimed   int `json:"claimed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	// RecordErrors counts failures that could not be written to the store.
	RecordErrors int `json:"record_errors"`
}

// Add returns the field-wise sum of s and other.
func (s Summary) Add(other Summary) Summary {
	return Summary{
		Claimed:      s.Claimed + other.Claimed,
		Succeeded:    s.Succeeded + other.Succeeded,
		Failed:       s.Failed + other.Failed,
		RecordErrors: s.RecordErrors + other.RecordErrors,
	}
}

// taskResult is persisted as result_json on success.
type taskResult struct {
	NewCount       int                   `json:"new_count"`
	ReviewCount    int                   `json:"review_count"`
	CandidateCount int                   `json:"candidate_count"`
	SelectedWords  []string              `json:"selected_words"`
	Generated      generatedRef          `json:"generated"`
	Usage          generation.StageUsage `json:"usage"`
}

type generatedRef struct {
	Model     string    `json:"model"`
	ArticleID uuid.UUID `json:"article_id"`
}

// Queue is the durable generation task queue. It keeps no state of its own
// between calls; any number of Queues may drain the same database.
type Queue struct {
	db       *sql.DB
	tasks    store.TaskStore
	profiles store.ProfileStore
	words    store.WordPoolStore
	articles store.ArticleStore
	pipeline Generator
	emitter  events.EventEmitter
	model    string
	now      func() time.Time
	logger   *slog.Logger
}

// NewQueue validates deps and returns a Queue.
func NewQueue(deps Dependencies) (*Queue, error) {
	switch {
	case deps.DB == nil:
		return nil, fmt.Errorf("%w: DB is nil", ErrInvalidDependencies)
	case deps.Tasks == nil, deps.Profiles == nil, deps.Words == nil, deps.Articles == nil:
		return nil, fmt.Errorf("%w: every store is required", ErrInvalidDependencies)
	case deps.Pipeline == nil:
		return nil, fmt.Errorf("%w: pipeline is nil", ErrInvalidDependencies)
	}

	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	emitter := deps.Emitter
	if emitter == nil {
		emitter = events.NopEmitter{}
	}

	return &Queue{
		db:       deps.DB,
		tasks:    deps.Tasks,
		profiles: deps.Profiles,
		words:    deps.Words,
		articles: deps.Articles,
		pipeline: deps.Pipeline,
		emitter:  emitter,
		model:    deps.Model,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   log.With(slog.String("component", "task_queue")),
	}, nil
}

// Enqueue creates one queued task per profile for taskDate. It fails with
// ErrNoProfiles or ErrNoDailyWords, creating nothing, when a precondition
// does not hold. The checks are not atomic with the inserts.
func (q *Queue) Enqueue(ctx context.Context, taskDate string, source domain.TriggerSource) ([]Handle, error) {
	if err := domain.ValidateTaskDate(taskDate); err != nil {
		return nil, err
	}
	if !source.Valid() {
		return nil, domain.ErrInvalidTriggerSource
	}

	profiles, err := q.profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	if len(profiles) == 0 {
		return nil, ErrNoProfiles
	}

	if _, err := q.words.Get(ctx, taskDate); err != nil {
		if errors.Is(err, store.ErrWordPoolNotFound) {
			return nil, ErrNoDailyWords
		}
		return nil, fmt.Errorf("failed to load daily words: %w", err)
	}

	created := make([]*domain.Task, 0, len(profiles))
	handles := make([]Handle, 0, len(profiles))
	err = store.RunInTransaction(ctx, q.db, func(ctx context.Context, tx *sql.Tx) error {
		tasks := q.tasks.WithTx(tx)
		for _, profile := range profiles {
			task, err := domain.NewTask(taskDate, profile.ID, source)
			if err != nil {
				return err
			}
			if err := tasks.Create(ctx, task); err != nil {
				return fmt.Errorf("failed to create task for profile %s: %w", profile.Name, err)
			}
			created = append(created, task)
			handles = append(handles, Handle{TaskID: task.ID, ProfileID: profile.ID, ProfileName: profile.Name})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	q.logger.InfoContext(ctx, "tasks enqueued",
		slog.String("task_date", taskDate),
		slog.String("trigger_source", string(source)),
		slog.Int("count", len(handles)))
	for i, task := range created {
		q.emit(ctx, events.TaskEnqueued, task, map[string]string{"profile_name": handles[i].ProfileName})
	}
	return handles, nil
}

// ClaimTask moves the oldest queued task of taskDate to running and returns
// it. A lost race against another worker is retried from selection until a
// claim succeeds, nothing is queued (ErrNoQueuedTask) or ctx is done.
func (q *Queue) ClaimTask(ctx context.Context, taskDate string) (*domain.Task, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		candidate, err := q.tasks.NextQueued(ctx, taskDate)
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, ErrNoQueuedTask
		}
		if err != nil {
			return nil, fmt.Errorf("failed to select queued task: %w", err)
		}

		startedAt := q.now()
		claimed, err := q.tasks.Claim(ctx, candidate.ID, candidate.Version, startedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to claim task %s: %w", candidate.ID, err)
		}
		if !claimed {
			q.logger.DebugContext(ctx, "lost claim race, retrying",
				slog.String("task_id", candidate.ID.String()),
				slog.Int("version", candidate.Version))
			continue
		}

		candidate.Status = domain.TaskStatusRunning
		candidate.Version++
		candidate.StartedAt = &startedAt
		q.emit(ctx, events.TaskClaimed, candidate, nil)
		return candidate, nil
	}
}

// Complete marks a task succeeded and published.
func (q *Queue) Complete(ctx context.Context, taskID uuid.UUID, resultJSON []byte) error {
	if err := q.tasks.MarkSucceeded(ctx, taskID, resultJSON, q.now()); err != nil {
		return fmt.Errorf("failed to mark task %s succeeded: %w", taskID, err)
	}
	q.emitByID(ctx, events.TaskSucceeded, taskID, nil)
	return nil
}

// Fail marks a task failed. Credentials are scrubbed from message before it
// is stored.
func (q *Queue) Fail(ctx context.Context, taskID uuid.UUID, message string, errContext map[string]any) error {
	message = redact.Credentials(message)
	contextJSON, err := json.Marshal(errContext)
	if err != nil {
		return fmt.Errorf("failed to encode error context: %w", err)
	}

	if err := q.tasks.MarkFailed(ctx, taskID, message, contextJSON, q.now()); err != nil {
		return fmt.Errorf("failed to mark task %s failed: %w", taskID, err)
	}
	q.emitByID(ctx, events.TaskFailed, taskID, map[string]any{"error_message": message, "context": errContext})
	return nil
}

// ProcessQueue claims and executes tasks of taskDate one at a time until
// none is queued. A failing task is recorded and the loop moves on; only a
// failure to claim, or ctx ending, stops it early.
func (q *Queue) ProcessQueue(ctx context.Context, taskDate string) (Summary, error) {
	var summary Summary
	q.logger.InfoContext(ctx, "queue processing started", slog.String("task_date", taskDate))

	for {
		task, err := q.ClaimTask(ctx, taskDate)
		if errors.Is(err, ErrNoQueuedTask) {
			break
		}
		if err != nil {
			q.logger.ErrorContext(ctx, "queue processing stopped",
				slog.String("task_date", taskDate),
				slog.String("error", redact.Error(err)))
			return summary, err
		}
		summary.Claimed++

		if err := q.runTask(ctx, task); err != nil {
			summary.Failed++
			q.logger.ErrorContext(ctx, "task failed",
				slog.String("task_id", task.ID.String()),
				slog.String("error", redact.Credentials(err.Error())))

			// The failure is recorded even when ctx itself caused it.
			if recErr := q.Fail(context.WithoutCancel(ctx), task.ID, err.Error(), errorContext(err)); recErr != nil {
				summary.RecordErrors++
				q.logger.ErrorContext(ctx, "failed to record task failure",
					slog.String("task_id", task.ID.String()),
					slog.String("error", redact.Error(recErr)))
			}
			continue
		}
		summary.Succeeded++
	}

	q.logger.InfoContext(ctx, "queue processing finished",
		slog.String("task_date", taskDate),
		slog.Int("claimed", summary.Claimed),
		slog.Int("succeeded", summary.Succeeded),
		slog.Int("failed", summary.Failed))
	return summary, nil
}

// runTask executes task and converts a panic into an error.
func (q *Queue) runTask(ctx context.Context, task *domain.Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.ErrorContext(ctx, "panic during task execution",
				slog.String("task_id", task.ID.String()),
				slog.Any("panic", r))
			err = fmt.Errorf("panic during task execution: %v", r)
		}
	}()
	return q.executeTask(ctx, task)
}

// errorContext builds the error_context_json of a failed task.
func errorContext(err error) map[string]any {
	errCtx := map[string]any{"stage": "execution"}
	var stageErr *generation.StageError
	if errors.As(err, &stageErr) {
		errCtx["pipeline_stage"] = string(stageErr.Stage)
	}
	return errCtx
}

func (q *Queue) executeTask(ctx context.Context, task *domain.Task) error {
	log := q.logger.With(
		slog.String("task_id", task.ID.String()),
		slog.String("task_date", task.TaskDate),
		slog.String("profile_id", task.ProfileID.String()))
	ctx = logger.WithLogger(ctx, log)
	log.InfoContext(ctx, "executing task")

	profile, err := q.profiles.GetByID(ctx, task.ProfileID)
	if err != nil {
		if errors.Is(err, store.ErrProfileNotFound) {
			return &profileNotFoundError{msg: fmt.Sprintf("Profile not found: %s", task.ProfileID), err: err}
		}
		return fmt.Errorf("failed to load profile: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, profile.Timeout())
	defer cancel()

	pool, err := q.words.Get(ctx, task.TaskDate)
	if err != nil {
		if errors.Is(err, store.ErrWordPoolNotFound) {
			return ErrNoDailyWords
		}
		return fmt.Errorf("failed to load daily words: %w", err)
	}

	newWords := domain.UniqueWords(pool.NewWords)
	reviewWords := domain.UniqueWords(pool.ReviewWords)
	if len(newWords)+len(reviewWords) == 0 {
		return ErrEmptyWordPool
	}

	used, err := UsedWords(ctx, q.tasks, q.articles, task.TaskDate)
	if err != nil {
		return err
	}
	candidates := BuildCandidateWords(newWords, reviewWords, used)
	if len(candidates) == 0 {
		return ErrAllWordsUsed
	}

	if q.model == "" {
		return ErrModelNotConfigured
	}

	log.InfoContext(ctx, "starting generation",
		slog.String("model", q.model),
		slog.Int("candidate_count", len(candidates)))

	result, err := q.pipeline.Run(ctx, q.model, generation.Input{
		TaskDate:        task.TaskDate,
		TopicPreference: profile.TopicPreference,
		Candidates:      candidates,
	})
	if err != nil {
		return err
	}

	candidateWords := make([]string, 0, len(candidates))
	for _, c := range candidates {
		candidateWords = append(candidateWords, c.Word)
	}

	finishedAt := q.now()
	article, err := domain.NewPublishedArticle(task.ID, q.model, &domain.ArticleContent{
		Schema:          domain.ArticleContentSchema,
		TaskDate:        task.TaskDate,
		TopicPreference: profile.TopicPreference,
		InputWords: domain.InputWords{
			New:        newWords,
			Review:     reviewWords,
			Candidates: candidateWords,
			Selected:   result.SelectedWords,
		},
		WordUsageCheck: result.Output.WordUsageCheck,
		Result:         *result.Output,
	}, finishedAt)
	if err != nil {
		return fmt.Errorf("failed to build article: %w", err)
	}

	resultJSON, err := json.Marshal(taskResult{
		NewCount:       len(newWords),
		ReviewCount:    len(reviewWords),
		CandidateCount: len(candidates),
		SelectedWords:  result.SelectedWords,
		Generated:      generatedRef{Model: q.model, ArticleID: article.ID},
		Usage:          result.Usage,
	})
	if err != nil {
		return fmt.Errorf("failed to encode task result: %w", err)
	}

	err = store.RunInTransaction(ctx, q.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := q.articles.WithTx(tx).Create(ctx, article); err != nil {
			return fmt.Errorf("failed to save article: %w", err)
		}
		if err := q.tasks.WithTx(tx).MarkSucceeded(ctx, task.ID, resultJSON, finishedAt); err != nil {
			return fmt.Errorf("failed to mark task succeeded: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.InfoContext(ctx, "task completed",
		slog.String("article_id", article.ID.String()),
		slog.Any("selected_words", result.SelectedWords))
	q.emit(ctx, events.TaskSucceeded, task, map[string]any{
		"article_id":     article.ID,
		"selected_words": result.SelectedWords,
	})
	return nil
}

// DeleteTask removes a task and its articles in one transaction and
// returns the deleted task.
func (q *Queue) DeleteTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	task, err := q.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	var removed int64
	err = store.RunInTransaction(ctx, q.db, func(ctx context.Context, tx *sql.Tx) error {
		n, err := q.articles.WithTx(tx).DeleteByTaskID(ctx, taskID)
		if err != nil {
			return fmt.Errorf("failed to delete articles: %w", err)
		}
		removed = n
		return q.tasks.WithTx(tx).Delete(ctx, taskID)
	})
	if err != nil {
		return nil, err
	}

	q.logger.InfoContext(ctx, "task deleted",
		slog.String("task_id", taskID.String()),
		slog.String("task_date", task.TaskDate),
		slog.Int64("articles_deleted", removed))
	return task, nil
}

// emit publishes a lifecycle event. Handler failures are logged and
// otherwise ignored.
func (q *Queue) emit(ctx context.Context, eventType events.EventType, task *domain.Task, payload any) {
	event, err := events.NewTaskEvent(eventType, task, payload)
	if err == nil {
		err = q.emitter.EmitEvent(ctx, event)
	}
	if err != nil {
		q.logger.WarnContext(ctx, "failed to emit task event",
			slog.String("event_type", string(eventType)),
			slog.String("task_id", task.ID.String()),
			slog.String("error", err.Error()))
	}
}

// emitByID reloads the task so the event carries its date and profile.
func (q *Queue) emitByID(ctx context.Context, eventType events.EventType, taskID uuid.UUID, payload any) {
	task, err := q.tasks.GetByID(ctx, taskID)
	if err != nil {
		q.logger.WarnContext(ctx, "failed to load task for event",
			slog.String("event_type", string(eventType)),
			slog.String("task_id", taskID.String()),
			slog.String("error", err.Error()))
		return
	}
	q.emit(ctx, eventType, task, payload)
}
