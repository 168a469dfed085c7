package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/phrazzld/wordnews/internal/domain"
	"github.com/phrazzld/wordnews/internal/store"
)

// WordPoolStore implements store.WordPoolStore on the daily_words table.
type WordPoolStore struct {
	db      store.DBTX
	dialect Dialect
}

// NewWordPoolStore creates a new word pool store.
func NewWordPoolStore(db store.DBTX, dialect Dialect) *WordPoolStore {
	return &WordPoolStore{db: db, dialect: dialect}
}

var _ store.WordPoolStore = (*WordPoolStore)(nil)

// Get implements store.WordPoolStore. Lists are returned as stored; callers
// that need clean lists pass them through domain.UniqueWords.
func (s *WordPoolStore) Get(ctx context.Context, date string) (*domain.DailyWordPool, error) {
	query, args, err := s.dialect.builder().
		Select("date", "new_words_json", "review_words_json", "created_at", "updated_at").
		From("daily_words").
		Where(sq.Eq{"date": date}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build word pool query: %w", err)
	}

	var (
		pool                domain.DailyWordPool
		newJSON, reviewJSON []byte
	)
	err = s.db.QueryRowContext(ctx, query, args...).Scan(
		&pool.Date, &newJSON, &reviewJSON, &pool.CreatedAt, &pool.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrWordPoolNotFound
	}
	if err != nil {
		return nil, opError("word pool", "get", err)
	}

	if pool.NewWords, err = decodeWordList(newJSON); err != nil {
		return nil, fmt.Errorf("failed to decode new words for %s: %w", date, err)
	}
	if pool.ReviewWords, err = decodeWordList(reviewJSON); err != nil {
		return nil, fmt.Errorf("failed to decode review words for %s: %w", date, err)
	}
	return &pool, nil
}

// Upsert implements store.WordPoolStore.
func (s *WordPoolStore) Upsert(ctx context.Context, pool *domain.DailyWordPool) error {
	if err := domain.ValidateTaskDate(pool.Date); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	newJSON, err := json.Marshal(domain.UniqueWords(pool.NewWords))
	if err != nil {
		return fmt.Errorf("failed to encode new words: %w", err)
	}
	reviewJSON, err := json.Marshal(domain.UniqueWords(pool.ReviewWords))
	if err != nil {
		return fmt.Errorf("failed to encode review words: %w", err)
	}

	query, args, err := s.dialect.builder().
		Insert("daily_words").
		Columns("date", "new_words_json", "review_words_json", "created_at", "updated_at").
		Values(pool.Date, string(newJSON), string(reviewJSON), pool.CreatedAt.UTC(), pool.UpdatedAt.UTC()).
		Suffix("ON CONFLICT (date) DO UPDATE SET " +
			"new_words_json = excluded.new_words_json, " +
			"review_words_json = excluded.review_words_json, " +
			"updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build word pool upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return opError("word pool", "upsert", err)
	}
	return nil
}

// WithTx implements store.WordPoolStore.
func (s *WordPoolStore) WithTx(tx *sql.Tx) store.WordPoolStore {
	return &WordPoolStore{db: tx, dialect: s.dialect}
}

// decodeWordList reads a JSON array of words, skipping entries that are
// not strings.
func decodeWordList(raw []byte) ([]string, error) {
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	words := make([]string, 0, len(items))
	for _, item := range items {
		if w, ok := item.(string); ok {
			words = append(words, w)
		}
	}
	return words, nil
}
