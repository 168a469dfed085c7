package sqlstore_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/wordnews/internal/domain"
	"github.com/phrazzld/wordnews/internal/store"
	"github.com/phrazzld/wordnews/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDate = "2025-03-14"

func TestTaskStore_CreateAndGet(t *testing.T) {
	t.Parallel()

	stores := testdb.Open(t)
	ctx := context.Background()
	profile := testdb.CreateProfile(t, stores, "default", "technology")
	task := testdb.CreateTask(t, stores, testDate, profile.ID)

	got, err := stores.Tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, testDate, got.TaskDate)
	assert.Equal(t, domain.TaskStatusQueued, got.Status)
	assert.Equal(t, domain.TaskTypeArticleGeneration, got.Type)
	assert.Equal(t, domain.TriggerSourceManual, got.TriggerSource)
	assert.Equal(t, 0, got.Version)
	assert.Nil(t, got.StartedAt)
	assert.Nil(t, got.PublishedAt)
	assert.WithinDuration(t, task.CreatedAt, got.CreatedAt, time.Millisecond)

	_, err = stores.Tasks.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestTaskStore_CreateUnknownProfile(t *testing.T) {
	t.Parallel()

	stores := testdb.Open(t)
	task, err := domain.NewTask(testDate, uuid.New(), domain.TriggerSourceCron)
	require.NoError(t, err)

	err = stores.Tasks.Create(context.Background(), task)
	assert.ErrorIs(t, err, store.ErrProfileNotFound)
}

func TestTaskStore_NextQueuedOrder(t *testing.T) {
	t.Parallel()

	stores := testdb.Open(t)
	ctx := context.Background()
	profile := testdb.CreateProfile(t, stores, "default", "technology")

	first := testdb.CreateTask(t, stores, testDate, profile.ID)
	testdb.CreateTask(t, stores, testDate, profile.ID)
	testdb.CreateTask(t, stores, "2025-03-15", profile.ID)

	next, err := stores.Tasks.NextQueued(ctx, testDate)
	require.NoError(t, err)
	assert.Equal(t, first.ID, next.ID, "oldest queued task comes first")

	_, err = stores.Tasks.NextQueued(ctx, "2025-01-01")
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestTaskStore_NextQueuedSameInstant(t *testing.T) {
	t.Parallel()

	stores := testdb.Open(t)
	ctx := context.Background()
	profile := testdb.CreateProfile(t, stores, "default", "technology")

	createdAt := time.Date(2025, 3, 14, 2, 0, 0, 0, time.UTC)
	first, err := domain.NewTask(testDate, profile.ID, domain.TriggerSourceCron)
	require.NoError(t, err)
	second, err := domain.NewTask(testDate, profile.ID, domain.TriggerSourceCron)
	require.NoError(t, err)
	first.CreatedAt, second.CreatedAt = createdAt, createdAt

	// Insert out of order; the ID still decides.
	require.NoError(t, stores.Tasks.Create(ctx, second))
	require.NoError(t, stores.Tasks.Create(ctx, first))

	next, err := stores.Tasks.NextQueued(ctx, testDate)
	require.NoError(t, err)
	assert.Equal(t, first.ID, next.ID)
}

func TestTaskStore_Claim(t *testing.T) {
	t.Parallel()

	stores := testdb.Open(t)
	ctx := context.Background()
	profile := testdb.CreateProfile(t, stores, "default", "technology")
	task := testdb.CreateTask(t, stores, testDate, profile.ID)
	startedAt := time.Now().UTC()

	claimed, err := stores.Tasks.Claim(ctx, task.ID, 0, startedAt)
	require.NoError(t, err)
	assert.True(t, claimed)

	got, err := stores.Tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusRunning, got.Status)
	assert.Equal(t, 1, got.Version)
	require.NotNil(t, got.StartedAt)
	assert.WithinDuration(t, startedAt, *got.StartedAt, time.Millisecond)

	t.Run("stale version", func(t *testing.T) {
		claimed, err := stores.Tasks.Claim(ctx, task.ID, 0, time.Now())
		require.NoError(t, err)
		assert.False(t, claimed)
	})

	t.Run("not queued", func(t *testing.T) {
		claimed, err := stores.Tasks.Claim(ctx, task.ID, 1, time.Now())
		require.NoError(t, err)
		assert.False(t, claimed, "running task cannot be claimed again")
	})

	_, err = stores.Tasks.NextQueued(ctx, testDate)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestTaskStore_ConcurrentClaimSingleWinner(t *testing.T) {
	t.Parallel()

	stores := testdb.Open(t)
	ctx := context.Background()
	profile := testdb.CreateProfile(t, stores, "default", "technology")
	task := testdb.CreateTask(t, stores, testDate, profile.ID)

	const workers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claimed, err := stores.Tasks.Claim(ctx, task.ID, 0, time.Now())
			assert.NoError(t, err)
			if claimed {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins, "exactly one claim must win")
}

func TestTaskStore_MarkSucceededAndFailed(t *testing.T) {
	t.Parallel()

	stores := testdb.Open(t)
	ctx := context.Background()
	profile := testdb.CreateProfile(t, stores, "default", "technology")
	now := time.Now().UTC()

	t.Run("succeeded", func(t *testing.T) {
		task := testdb.CreateTask(t, stores, testDate, profile.ID)
		_, err := stores.Tasks.Claim(ctx, task.ID, 0, now)
		require.NoError(t, err)

		result := json.RawMessage(`{"new_count":3}`)
		require.NoError(t, stores.Tasks.MarkSucceeded(ctx, task.ID, result, now))

		got, err := stores.Tasks.GetByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusSucceeded, got.Status)
		assert.JSONEq(t, string(result), string(got.ResultJSON))
		require.NotNil(t, got.PublishedAt)
		require.NotNil(t, got.FinishedAt)
		assert.NoError(t, got.Validate())
	})

	t.Run("failed", func(t *testing.T) {
		task := testdb.CreateTask(t, stores, testDate, profile.ID)
		_, err := stores.Tasks.Claim(ctx, task.ID, 0, now)
		require.NoError(t, err)

		require.NoError(t, stores.Tasks.MarkFailed(ctx, task.ID, "boom", []byte(`{"stage":"execution"}`), now))

		got, err := stores.Tasks.GetByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusFailed, got.Status)
		assert.Equal(t, "boom", got.ErrorMessage)
		assert.JSONEq(t, `{"stage":"execution"}`, string(got.ErrorContextJSON))
		assert.Nil(t, got.PublishedAt)
		assert.NotNil(t, got.FinishedAt)
	})

	t.Run("invalid json rejected", func(t *testing.T) {
		task := testdb.CreateTask(t, stores, testDate, profile.ID)

		err := stores.Tasks.MarkSucceeded(ctx, task.ID, []byte(`{not json`), now)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)

		err = stores.Tasks.MarkFailed(ctx, task.ID, "x", []byte(``), now)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})

	t.Run("unknown task", func(t *testing.T) {
		err := stores.Tasks.MarkSucceeded(ctx, uuid.New(), []byte(`{}`), now)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
		err = stores.Tasks.MarkFailed(ctx, uuid.New(), "x", []byte(`{}`), now)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})
}

func TestTaskStore_ListAndDelete(t *testing.T) {
	t.Parallel()

	stores := testdb.Open(t)
	ctx := context.Background()
	alpha := testdb.CreateProfile(t, stores, "alpha", "science")
	beta := testdb.CreateProfile(t, stores, "beta", "sports")
	first := testdb.CreateTask(t, stores, testDate, alpha.ID)
	second := testdb.CreateTask(t, stores, testDate, beta.ID)
	testdb.CreateTask(t, stores, "2025-03-15", alpha.ID)

	views, err := stores.Tasks.ListByDate(ctx, testDate)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, first.ID, views[0].ID)
	assert.Equal(t, "alpha", views[0].ProfileName)
	assert.Equal(t, "beta", views[1].ProfileName)

	ids, err := stores.Tasks.ListIDsByDate(ctx, testDate)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{first.ID, second.ID}, ids)

	empty, err := stores.Tasks.ListByDate(ctx, "2020-01-01")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	require.NoError(t, stores.Tasks.Delete(ctx, first.ID))
	assert.ErrorIs(t, stores.Tasks.Delete(ctx, first.ID), store.ErrTaskNotFound)
}
