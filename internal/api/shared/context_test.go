package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetAndGetTraceID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	generated := SetTraceID(ctx, "")
	assert.Len(t, GetTraceID(generated), 32)
	assert.Empty(t, GetTraceID(ctx), "original context must remain unchanged")

	given := SetTraceID(ctx, "req-42")
	assert.Equal(t, "req-42", GetTraceID(given))
}

func TestGetTraceIDWithInvalidContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), TraceIDKey, 123)
	assert.Empty(t, GetTraceID(ctx))
}

func TestGenerateTraceIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := generateTraceID()
		assert.False(t, seen[id], "duplicate trace ID %s", id)
		seen[id] = true
	}
	assert.Len(t, generateFallbackTraceID(), 32)
}

func TestSubject(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetSubject(ctx))
	assert.Equal(t, "admin", GetSubject(SetSubject(ctx, "admin")))
}
