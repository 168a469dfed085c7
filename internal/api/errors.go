package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/wordnews/internal/auth"
	"github.com/phrazzld/wordnews/internal/domain"
	"github.com/phrazzld/wordnews/internal/store"
	"github.com/phrazzld/wordnews/internal/task"
)

// profileValidationErrors are returned by domain.GenerationProfile.Validate.
var profileValidationErrors = []error{
	domain.ErrEmptyProfileName,
	domain.ErrProfileNameTooLong,
	domain.ErrEmptyTopicPreference,
	domain.ErrInvalidConcurrency,
	domain.ErrInvalidProfileTimeout,
}

// queuePreconditionErrors are enqueue failures whose message is shown verbatim.
var queuePreconditionErrors = []error{
	task.ErrNoProfiles,
	task.ErrNoDailyWords,
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// exposing their types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, auth.ErrNotConfigured):
		return http.StatusServiceUnavailable

	case store.IsNotFoundError(err):
		return http.StatusNotFound

	case store.IsDuplicateError(err),
		errors.Is(err, store.ErrProfileInUse):
		return http.StatusConflict

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidTaskDate),
		errors.Is(err, domain.ErrInvalidTriggerSource),
		isAny(err, profileValidationErrors),
		isAny(err, queuePreconditionErrors):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	for _, target := range queuePreconditionErrors {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	for _, target := range profileValidationErrors {
		if errors.Is(err, target) {
			return "Invalid profile: " + target.Error()
		}
	}

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"
	case errors.Is(err, auth.ErrNotConfigured):
		return "Admin login is not configured"

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, store.ErrProfileNotFound):
		return "Generation profile not found"
	case errors.Is(err, store.ErrWordPoolNotFound):
		return "Daily word pool not found"
	case store.IsNotFoundError(err):
		return "Resource not found"

	case errors.Is(err, store.ErrProfileNameExists):
		return "Profile name already exists"
	case errors.Is(err, store.ErrProfileInUse):
		return "Generation profile is referenced by tasks"
	case store.IsDuplicateError(err):
		return "Resource already exists"

	case errors.Is(err, domain.ErrInvalidTaskDate):
		return domain.ErrInvalidTaskDate.Error()
	case errors.Is(err, domain.ErrInvalidTriggerSource):
		return "Invalid trigger source"
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns validator errors into a message naming the
// first failing field. Other errors yield a generic message.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}
	first := verrs[0]
	return fmt.Sprintf("Invalid %s: %s", first.Field(), getValidationTagMessage(first.Tag()))
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "gt", "gte":
		return "must be positive"
	case "datetime":
		return "must be formatted as YYYY-MM-DD"
	case "dive":
		return "invalid element"
	default:
		return "validation failed"
	}
}
