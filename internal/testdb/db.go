package testdb

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/phrazzld/wordnews/internal/config"
	"github.com/phrazzld/wordnews/internal/platform/sqlstore"
	"github.com/stretchr/testify/require"
)

// TestTimeout bounds fixture setup.
const TestTimeout = 10 * time.Second

// Open returns stores over a fresh, migrated in-memory SQLite database.
// The database is closed when the test ends.
func Open(t *testing.T) *sqlstore.Stores {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, dialect, err := sqlstore.Open(ctx, config.DatabaseConfig{Driver: "sqlite", URL: ":memory:"})
	require.NoError(t, err, "failed to open in-memory sqlite")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, sqlstore.Migrate(ctx, db, dialect), "failed to migrate test database")
	return sqlstore.NewStores(db, dialect)
}

// OpenPostgres returns stores over the database named by DATABASE_URL after
// applying migrations. The test is skipped when DATABASE_URL is unset.
func OpenPostgres(t *testing.T) *sqlstore.Stores {
	t.Helper()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set - skipping postgres test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, dialect, err := sqlstore.Open(ctx, config.DatabaseConfig{Driver: "postgres", URL: url})
	require.NoError(t, err, "failed to connect to postgres")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, sqlstore.Migrate(ctx, db, dialect), "failed to migrate postgres")
	return sqlstore.NewStores(db, dialect)
}

// WithTx runs fn with stores bound to a transaction that is rolled back
// afterwards, whatever fn does.
func WithTx(t *testing.T, stores *sqlstore.Stores, fn func(t *testing.T, tx *sql.Tx, txStores *sqlstore.Stores)) {
	t.Helper()

	tx, err := stores.DB.BeginTx(context.Background(), nil)
	require.NoError(t, err, "failed to begin test transaction")
	defer func() { _ = tx.Rollback() }()

	fn(t, tx, &sqlstore.Stores{
		DB:       stores.DB,
		Dialect:  stores.Dialect,
		Tasks:    stores.Tasks.WithTx(tx),
		Profiles: stores.Profiles.WithTx(tx),
		Words:    stores.Words.WithTx(tx),
		Articles: stores.Articles.WithTx(tx),
	})
}
