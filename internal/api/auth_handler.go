package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/phrazzld/wordnews/internal/api/shared"
	"github.com/phrazzld/wordnews/internal/auth"
)

// Authenticator exchanges the admin password for an access token.
type Authenticator interface {
	Login(ctx context.Context, password string) (*auth.Token, error)
}

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	authenticator Authenticator
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(authenticator Authenticator) *AuthHandler {
	return &AuthHandler{authenticator: authenticator}
}

// Login handles POST /api/admin/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	token, err := h.authenticator.Login(r.Context(), req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid credentials", err,
				shared.WithElevatedLogLevel())
			return
		}
		handleAPIError(w, r, err, "admin login")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		AccessToken: token.AccessToken,
		ExpiresAt:   token.ExpiresAt.UTC().Format(time.RFC3339),
	})
}
