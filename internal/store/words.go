package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/wordnews/internal/domain"
)

// WordPoolStore defines the interface for daily word pool persistence.
type WordPoolStore interface {
	// Get retrieves the pool for a business date.
	// Returns ErrWordPoolNotFound if no pool exists for the date.
	Get(ctx context.Context, date string) (*domain.DailyWordPool, error)

	// Upsert creates or replaces the pool for pool.Date.
	Upsert(ctx context.Context, pool *domain.DailyWordPool) error

	// WithTx returns a new WordPoolStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) WordPoolStore
}
