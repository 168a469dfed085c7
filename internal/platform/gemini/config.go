package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/wordnews/internal/config"
	"github.com/phrazzld/wordnews/internal/generation"
)

// validateConfig checks the settings the Gemini client needs.
func validateConfig(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) error {
	if cfg.GeminiAPIKey == "" {
		logger.ErrorContext(ctx, "missing Gemini API key")
		return fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.MaxRetries < 0 {
		return fmt.Errorf("%w: max retries cannot be negative", generation.ErrInvalidConfig)
	}
	if cfg.BaseDelay < 0 {
		return fmt.Errorf("%w: base delay cannot be negative", generation.ErrInvalidConfig)
	}
	return nil
}
