package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/phrazzld/wordnews/internal/api/shared"
	"github.com/phrazzld/wordnews/internal/auth"
	"github.com/phrazzld/wordnews/internal/domain"
	"github.com/phrazzld/wordnews/internal/store"
	"github.com/phrazzld/wordnews/internal/task"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedMsg    string
	}{
		{"nil error", nil, http.StatusInternalServerError, "An unexpected error occurred"},
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized, "Invalid token"},
		{"wrapped expired token", fmt.Errorf("validate: %w", auth.ErrExpiredToken), http.StatusUnauthorized, "Token expired"},
		{"bad credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
		{"login not configured", auth.ErrNotConfigured, http.StatusServiceUnavailable, "Admin login is not configured"},
		{"task not found", store.ErrTaskNotFound, http.StatusNotFound, "Task not found"},
		{"pool not found", store.ErrWordPoolNotFound, http.StatusNotFound, "Daily word pool not found"},
		{"generic not found", store.ErrNotFound, http.StatusNotFound, "Resource not found"},
		{"name taken", fmt.Errorf("%w: %q", store.ErrProfileNameExists, "x"), http.StatusConflict, "Profile name already exists"},
		{"profile in use", store.ErrProfileInUse, http.StatusConflict, "Generation profile is referenced by tasks"},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest, "Invalid entity data"},
		{"bad date", fmt.Errorf("%w: %q", domain.ErrInvalidTaskDate, "x"), http.StatusBadRequest, domain.ErrInvalidTaskDate.Error()},
		{"profile validation", domain.ErrInvalidConcurrency, http.StatusBadRequest, "Invalid profile: profile concurrency must be greater than 0"},
		{"no profiles", task.ErrNoProfiles, http.StatusBadRequest, "No generation profile found"},
		{"no daily words", task.ErrNoDailyWords, http.StatusBadRequest, "No daily words found"},
		{"store failure", store.NewStoreError("task", "get", "database error", errors.New("connection reset")), http.StatusInternalServerError, "An unexpected error occurred"},
		{"unknown", errors.New("disk on fire at /var/lib/db"), http.StatusInternalServerError, "An unexpected error occurred"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectedStatus, MapErrorToStatusCode(tc.err))
			assert.Equal(t, tc.expectedMsg, GetSafeErrorMessage(tc.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	err := shared.ValidateRequest(&ProfileRequest{TopicPreference: "x", Concurrency: 1, TimeoutMs: 1})
	assert.Equal(t, "Invalid name: required field", SanitizeValidationError(err))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("Key: 'X' Error: secret")))
}
