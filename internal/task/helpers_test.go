package task

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/wordnews/internal/domain"
	"github.com/phrazzld/wordnews/internal/generation"
	"github.com/phrazzld/wordnews/internal/mocks"
	"github.com/phrazzld/wordnews/internal/platform/logger"
	"github.com/phrazzld/wordnews/internal/platform/sqlstore"
	"github.com/phrazzld/wordnews/internal/store"
	"github.com/phrazzld/wordnews/internal/testdb"
	"github.com/stretchr/testify/require"
)

const (
	testDate  = "2025-03-14"
	testModel = "mock-model"
)

type queueFixture struct {
	stores  *sqlstore.Stores
	queue   *Queue
	client  *mocks.MockLLMClient
	emitter *mocks.MockEventEmitter
	logs    *logger.TestLogBuffer
}

func newQueueFixture(t *testing.T, model string) *queueFixture {
	t.Helper()

	stores := testdb.Open(t)
	logs, log := logger.NewTestLogger(t)
	client := &mocks.MockLLMClient{}
	emitter := &mocks.MockEventEmitter{}

	pipeline, err := generation.NewPipeline(client, 0, log)
	require.NoError(t, err)

	queue, err := NewQueue(Dependencies{
		DB:       stores.DB,
		Tasks:    stores.Tasks,
		Profiles: stores.Profiles,
		Words:    stores.Words,
		Articles: stores.Articles,
		Pipeline: pipeline,
		Emitter:  emitter,
		Model:    model,
		Logger:   log,
	})
	require.NoError(t, err)

	return &queueFixture{stores: stores, queue: queue, client: client, emitter: emitter, logs: logs}
}

func createArticle(t *testing.T, articles store.ArticleStore, taskID uuid.UUID, content []byte) {
	t.Helper()

	now := time.Now().UTC()
	require.NoError(t, articles.Create(context.Background(), &domain.Article{
		ID:          uuid.New(),
		TaskID:      taskID,
		Model:       testModel,
		Variant:     1,
		Title:       "title",
		Content:     content,
		Status:      domain.ArticleStatusPublished,
		CreatedAt:   now,
		PublishedAt: &now,
	}))
}

func decodeMap(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}
