package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/phrazzld/wordnews/internal/domain"
)

// ArticleStore defines the interface for article persistence.
// Version: 1.0
type ArticleStore interface {
	// Create saves a new article. Content must be valid JSON.
	// Returns ErrDuplicate if the task already has an article for the model.
	Create(ctx context.Context, article *domain.Article) error

	// GetByTaskID retrieves the article produced by a task.
	// Returns ErrArticleNotFound if the task has none.
	GetByTaskID(ctx context.Context, taskID uuid.UUID) (*domain.Article, error)

	// ListContentByTaskIDs returns the raw content blobs of every article
	// belonging to the given tasks.
	ListContentByTaskIDs(ctx context.Context, taskIDs []uuid.UUID) ([]json.RawMessage, error)

	// DeleteByTaskID removes the articles of a task and returns how many
	// were removed.
	DeleteByTaskID(ctx context.Context, taskID uuid.UUID) (int64, error)

	// WithTx returns a new ArticleStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ArticleStore
}
