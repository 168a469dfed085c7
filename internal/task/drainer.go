package task

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Processor drains the queue of one business date.
type Processor interface {
	ProcessQueue(ctx context.Context, taskDate string) (Summary, error)
}

// DrainerConfig holds configuration options for the drainer
type DrainerConfig struct {
	// Workers determines how many ProcessQueue loops run concurrently.
	// If zero or negative, defaults to 1
	Workers int
}

// Drainer runs several ProcessQueue loops against the same date. The loops
// coordinate only through the claim protocol.
type Drainer struct {
	queue   Processor
	workers int
	logger  *slog.Logger

	// wg tracks background drains started with Start
	wg sync.WaitGroup
}

// NewDrainer creates a drainer with the specified configuration
func NewDrainer(queue Processor, config DrainerConfig, logger *slog.Logger) *Drainer {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "task_drainer"))

	workers := config.Workers
	if workers <= 0 {
		logger.Warn("invalid worker count specified, using default",
			slog.Int("specified_count", config.Workers),
			slog.Int("default_count", 1))
		workers = 1
	}

	return &Drainer{queue: queue, workers: workers, logger: logger}
}

// Drain runs the configured number of loops until each finds nothing
// queued, and returns their combined summary. Errors from individual loops
// are joined.
func (d *Drainer) Drain(ctx context.Context, taskDate string) (Summary, error) {
	var (
		mu      sync.Mutex
		total   Summary
		errs    []error
		workers sync.WaitGroup
	)

	for i := 0; i < d.workers; i++ {
		workers.Add(1)
		go func(id int) {
			defer workers.Done()
			d.logger.DebugContext(ctx, "starting drain loop", slog.Int("worker_id", id))

			summary, err := d.queue.ProcessQueue(ctx, taskDate)

			mu.Lock()
			defer mu.Unlock()
			total = total.Add(summary)
			if err != nil {
				errs = append(errs, err)
			}
		}(i)
	}
	workers.Wait()

	return total, errors.Join(errs...)
}

// Start drains taskDate in the background. The drain is detached from
// ctx's cancellation but keeps its values.
func (d *Drainer) Start(ctx context.Context, taskDate string) {
	ctx = context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		summary, err := d.Drain(ctx, taskDate)
		if err != nil {
			d.logger.ErrorContext(ctx, "background drain failed",
				slog.String("task_date", taskDate),
				slog.String("error", err.Error()))
			return
		}
		d.logger.InfoContext(ctx, "background drain finished",
			slog.String("task_date", taskDate),
			slog.Int("claimed", summary.Claimed),
			slog.Int("succeeded", summary.Succeeded),
			slog.Int("failed", summary.Failed))
	}()
}

// Wait blocks until every drain started with Start has returned.
func (d *Drainer) Wait() {
	d.wg.Wait()
}
