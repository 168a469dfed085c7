package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/phrazzld/wordnews/internal/config"
	"github.com/phrazzld/wordnews/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  slog.Level
		ok    bool
	}{
		{"debug", "debug", slog.LevelDebug, true},
		{"upper_case", "WARN", slog.LevelWarn, true},
		{"fatal_maps_to_error", "fatal", slog.LevelError, true},
		{"unknown_defaults_to_info", "verbose", slog.LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			level, ok := logger.ParseLevel(tt.input)
			assert.Equal(t, tt.want, level)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestSetup(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	l, err := logger.Setup(config.ServerConfig{LogLevel: "debug"})
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.True(t, l.Enabled(context.Background(), slog.LevelDebug))
	assert.Equal(t, l, slog.Default())
}

func TestFromContextOrDefault(t *testing.T) {
	t.Parallel()

	defaultLogger := slog.Default()
	_, customLogger := logger.NewTestLogger(t)

	//nolint:staticcheck // nil context is part of the contract
	assert.Equal(t, defaultLogger, logger.FromContextOrDefault(nil, defaultLogger))
	assert.Equal(t, defaultLogger, logger.FromContextOrDefault(context.Background(), defaultLogger))

	ctx := logger.WithLogger(context.Background(), customLogger)
	assert.Equal(t, customLogger, logger.FromContextOrDefault(ctx, defaultLogger))
	assert.Equal(t, customLogger, logger.FromContext(ctx))
}

func TestWithLogger_NilPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		logger.WithLogger(context.Background(), nil)
	})
}

func TestTestLogBuffer_Entries(t *testing.T) {
	t.Parallel()

	buf, l := logger.NewTestLogger(t)
	l.Info("task claimed", slog.String("task_id", "abc"))

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "task claimed", entries[0]["msg"])
	assert.Equal(t, "abc", entries[0]["task_id"])
	logger.AssertLogContains(t, buf, "task claimed")
}
