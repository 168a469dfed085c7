package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"
)

// RetryPolicy retries calls that fail with ErrTransientFailure using
// exponential backoff with jitter. Any other error is returned at once.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// BaseDelay is the delay before the first retry; it doubles on every
	// further retry and is scaled by a random factor in [0.5, 1).
	BaseDelay time.Duration
}

// Do runs fn until it succeeds, fails permanently, exhausts the retries or
// ctx is done.
func (p RetryPolicy) Do(ctx context.Context, log *slog.Logger, fn func(ctx context.Context) error) error {
	maxRetries := max(p.MaxRetries, 0)

	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrTransientFailure) {
			return err
		}
		if attempt >= maxRetries {
			return fmt.Errorf("exceeded maximum retry attempts (%d): %w", maxRetries, err)
		}

		delay := p.backoff(attempt)
		log.WarnContext(ctx, "transient language model error, retrying",
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()))

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry interrupted: %w", ctx.Err())
		}
	}
}

// backoff computes baseDelay * 2^attempt * jitter.
func (p RetryPolicy) backoff(attempt int) time.Duration {
	backoff := float64(p.BaseDelay) * math.Pow(2, float64(attempt))
	jitter := 0.5 + rand.Float64()*0.5
	return time.Duration(backoff * jitter)
}
