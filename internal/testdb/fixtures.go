package testdb

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/wordnews/internal/domain"
	"github.com/phrazzld/wordnews/internal/platform/sqlstore"
	"github.com/stretchr/testify/require"
)

// CreateProfile inserts a profile with a two-minute timeout.
func CreateProfile(t *testing.T, stores *sqlstore.Stores, name, topic string) *domain.GenerationProfile {
	t.Helper()

	profile, err := domain.NewGenerationProfile(name, topic, 1, 120000)
	require.NoError(t, err)
	require.NoError(t, stores.Profiles.Create(context.Background(), profile))
	return profile
}

// UpsertWordPool stores the word pool for date.
func UpsertWordPool(t *testing.T, stores *sqlstore.Stores, date string, newWords, reviewWords []string) {
	t.Helper()

	pool, err := domain.NewDailyWordPool(date, newWords, reviewWords)
	require.NoError(t, err)
	require.NoError(t, stores.Words.Upsert(context.Background(), pool))
}

// CreateTask inserts a queued manual task.
func CreateTask(t *testing.T, stores *sqlstore.Stores, date string, profileID uuid.UUID) *domain.Task {
	t.Helper()

	task, err := domain.NewTask(date, profileID, domain.TriggerSourceManual)
	require.NoError(t, err)
	require.NoError(t, stores.Tasks.Create(context.Background(), task))
	return task
}
