package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/wordnews/internal/config"
	"github.com/phrazzld/wordnews/internal/domain"
	"github.com/phrazzld/wordnews/internal/events"
	"github.com/phrazzld/wordnews/internal/generation"
	"github.com/phrazzld/wordnews/internal/platform/gemini"
	"github.com/phrazzld/wordnews/internal/platform/logger"
	"github.com/phrazzld/wordnews/internal/platform/openai"
	"github.com/phrazzld/wordnews/internal/platform/sqlstore"
	"github.com/phrazzld/wordnews/internal/task"
)

// application holds the shared dependencies of one command invocation.
type application struct {
	config   *config.Config
	logger   *slog.Logger
	db       *sql.DB
	stores   *sqlstore.Stores
	location *time.Location

	// queue is nil until initQueue runs
	queue *task.Queue
}

// newApplication loads configuration, sets up logging and opens the database.
func newApplication(ctx context.Context, opts *rootOptions) (*application, error) {
	cfg, err := config.LoadFrom(opts.configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	loc, err := cfg.Queue.Location()
	if err != nil {
		return nil, err
	}

	db, dialect, err := sqlstore.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	log.DebugContext(ctx, "database connection established",
		slog.String("driver", cfg.Database.Driver))

	return &application{
		config:   cfg,
		logger:   log,
		db:       db,
		stores:   sqlstore.NewStores(db, dialect),
		location: loc,
	}, nil
}

// initQueue builds the task queue. Commands that never execute tasks pass
// withLLM=false and get a pipeline whose client refuses every call.
func (app *application) initQueue(ctx context.Context, withLLM bool) error {
	var client generation.Client = disabledClient{}
	if withLLM {
		c, err := newLLMClient(ctx, app.config.LLM, app.logger)
		if err != nil {
			return fmt.Errorf("failed to initialize LLM client: %w", err)
		}
		client = c
		app.logger.InfoContext(ctx, "LLM client initialized",
			slog.String("provider", app.config.LLM.Provider),
			slog.String("model", app.config.LLM.ModelDefault))
	}

	pipeline, err := generation.NewPipeline(client, app.config.LLM.StageTimeout, app.logger)
	if err != nil {
		return fmt.Errorf("failed to build generation pipeline: %w", err)
	}

	emitter := events.NewInMemoryEventEmitter(app.logger)
	emitter.RegisterHandler(events.NewLoggingHandler(app.logger))

	app.queue, err = task.NewQueue(task.Dependencies{
		DB:       app.db,
		Tasks:    app.stores.Tasks,
		Profiles: app.stores.Profiles,
		Words:    app.stores.Words,
		Articles: app.stores.Articles,
		Pipeline: pipeline,
		Emitter:  emitter,
		Model:    app.config.LLM.ModelDefault,
		Logger:   app.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to build task queue: %w", err)
	}
	return nil
}

// today is the current business date in the configured timezone.
func (app *application) today() string {
	return domain.BusinessDate(time.Now(), app.location)
}

func (app *application) close() {
	if app == nil || app.db == nil {
		return
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database", slog.String("error", err.Error()))
	}
}

// newLLMClient selects the provider named by cfg.Provider.
func newLLMClient(ctx context.Context, cfg config.LLMConfig, log *slog.Logger) (generation.Client, error) {
	switch cfg.Provider {
	case "gemini":
		c, err := gemini.NewClient(ctx, log, cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "openai":
		c, err := openai.NewClient(cfg, nil, log)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", generation.ErrInvalidConfig, cfg.Provider)
	}
}

// disabledClient backs the pipeline of commands that only enqueue or delete.
type disabledClient struct{}

func (disabledClient) Call(
	context.Context,
	string,
	[]generation.Message,
	generation.CallOptions,
) (*generation.Response, error) {
	return nil, fmt.Errorf("%w: this command does not run the language model", generation.ErrInvalidConfig)
}
