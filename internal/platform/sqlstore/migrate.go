package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// Migration commands accepted by Migrate.
const (
	MigrateUp     = "up"
	MigrateDown   = "down"
	MigrateStatus = "status"
)

// MigrationState is one row of migration status output.
type MigrationState struct {
	Version int64  `json:"version"`
	Path    string `json:"path"`
	Applied bool   `json:"applied"`
}

// slogGooseLogger adapts the goose logger interface to slog. Fatalf logs at
// error level and does not exit; goose reports failures through returned
// errors as well.
type slogGooseLogger struct {
	log *slog.Logger
}

func (l slogGooseLogger) Printf(format string, v ...interface{}) {
	l.log.Info(fmt.Sprintf(format, v...))
}

func (l slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.log.Error(fmt.Sprintf(format, v...))
}

// newMigrationProvider builds a goose provider over the embedded migrations
// of the dialect. Providers hold no global state, so parallel tests can
// migrate separate databases.
func newMigrationProvider(db *sql.DB, dialect Dialect, log *slog.Logger) (*goose.Provider, error) {
	sub, err := fs.Sub(migrationsFS, dialect.migrationsDir())
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	opts := []goose.ProviderOption{}
	if log != nil {
		opts = append(opts, goose.WithLogger(slogGooseLogger{log: log}), goose.WithVerbose(true))
	}

	provider, err := goose.NewProvider(dialect.gooseDialect(), db, sub, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider, nil
}

// Migrate applies every pending migration.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	_, err := RunMigrations(ctx, db, dialect, MigrateUp, nil)
	return err
}

// RunMigrations executes a migration command ("up", "down" or "status") and
// returns the resulting state of every known migration. log may be nil.
func RunMigrations(
	ctx context.Context,
	db *sql.DB,
	dialect Dialect,
	command string,
	log *slog.Logger,
) ([]MigrationState, error) {
	provider, err := newMigrationProvider(db, dialect, log)
	if err != nil {
		return nil, err
	}

	switch command {
	case MigrateUp:
		if _, err := provider.Up(ctx); err != nil {
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
	case MigrateDown:
		if _, err := provider.Down(ctx); err != nil {
			return nil, fmt.Errorf("failed to roll back migration: %w", err)
		}
	case MigrateStatus:
	default:
		return nil, fmt.Errorf("unknown migration command %q", command)
	}

	statuses, err := provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration status: %w", err)
	}

	states := make([]MigrationState, 0, len(statuses))
	for _, s := range statuses {
		states = append(states, MigrationState{
			Version: s.Source.Version,
			Path:    s.Source.Path,
			Applied: s.State == goose.StateApplied,
		})
	}
	return states, nil
}
