package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/phrazzld/wordnews/internal/domain"
	"github.com/phrazzld/wordnews/internal/store"
)

// ArticleStore implements store.ArticleStore.
type ArticleStore struct {
	db      store.DBTX
	dialect Dialect
}

// NewArticleStore creates a new article store.
func NewArticleStore(db store.DBTX, dialect Dialect) *ArticleStore {
	return &ArticleStore{db: db, dialect: dialect}
}

var _ store.ArticleStore = (*ArticleStore)(nil)

// Create implements store.ArticleStore.
func (s *ArticleStore) Create(ctx context.Context, article *domain.Article) error {
	if err := article.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	var publishedAt any
	if article.PublishedAt != nil {
		publishedAt = article.PublishedAt.UTC()
	}

	query, args, err := s.dialect.builder().
		Insert("articles").
		Columns(
			"id", "generation_task_id", "model", "variant", "title",
			"content_json", "status", "created_at", "published_at",
		).
		Values(
			article.ID.String(), article.TaskID.String(), article.Model, article.Variant, article.Title,
			string(article.Content), string(article.Status), article.CreatedAt.UTC(), publishedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build article insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrTaskNotFound, err)
		}
		return opError("article", "create", err)
	}
	return nil
}

// GetByTaskID implements store.ArticleStore.
func (s *ArticleStore) GetByTaskID(ctx context.Context, taskID uuid.UUID) (*domain.Article, error) {
	query, args, err := s.dialect.builder().
		Select(
			"id", "generation_task_id", "model", "variant", "title",
			"content_json", "status", "created_at", "published_at",
		).
		From("articles").
		Where(sq.Eq{"generation_task_id": taskID.String()}).
		OrderBy("created_at ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build article query: %w", err)
	}

	var (
		article     domain.Article
		content     []byte
		status      string
		publishedAt sql.NullTime
	)
	err = s.db.QueryRowContext(ctx, query, args...).Scan(
		&article.ID, &article.TaskID, &article.Model, &article.Variant, &article.Title,
		&content, &status, &article.CreatedAt, &publishedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrArticleNotFound
	}
	if err != nil {
		return nil, opError("article", "get", err)
	}

	article.Content = content
	article.Status = domain.ArticleStatus(status)
	article.PublishedAt = nullTimePtr(publishedAt)
	return &article, nil
}

// ListContentByTaskIDs implements store.ArticleStore.
func (s *ArticleStore) ListContentByTaskIDs(ctx context.Context, taskIDs []uuid.UUID) ([]json.RawMessage, error) {
	if len(taskIDs) == 0 {
		return []json.RawMessage{}, nil
	}

	ids := make([]string, len(taskIDs))
	for i, id := range taskIDs {
		ids[i] = id.String()
	}

	query, args, err := s.dialect.builder().
		Select("content_json").
		From("articles").
		Where(sq.Eq{"generation_task_id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build article content query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, opError("article", "list content", err)
	}
	defer func() { _ = rows.Close() }()

	contents := []json.RawMessage{}
	for rows.Next() {
		var content []byte
		if err := rows.Scan(&content); err != nil {
			return nil, fmt.Errorf("failed to scan article content: %w", err)
		}
		contents = append(contents, content)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}
	return contents, nil
}

// DeleteByTaskID implements store.ArticleStore.
func (s *ArticleStore) DeleteByTaskID(ctx context.Context, taskID uuid.UUID) (int64, error) {
	query, args, err := s.dialect.builder().
		Delete("articles").
		Where(sq.Eq{"generation_task_id": taskID.String()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build article delete: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, opError("article", "delete", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// WithTx implements store.ArticleStore.
func (s *ArticleStore) WithTx(tx *sql.Tx) store.ArticleStore {
	return &ArticleStore{db: tx, dialect: s.dialect}
}
