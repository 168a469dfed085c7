package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/wordnews/internal/api/shared"
	"github.com/phrazzld/wordnews/internal/domain"
	"github.com/phrazzld/wordnews/internal/store"
)

// ProfileHandler serves generation profile CRUD.
type ProfileHandler struct {
	profiles store.ProfileStore
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(profiles store.ProfileStore) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// List handles GET /api/admin/profiles.
func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.profiles.List(r.Context())
	if err != nil {
		handleAPIError(w, r, err, "list profiles")
		return
	}
	if profiles == nil {
		profiles = []*domain.GenerationProfile{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ProfileListResponse{Profiles: profiles})
}

// Create handles POST /api/admin/profiles.
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	profile, err := domain.NewGenerationProfile(req.Name, req.TopicPreference, req.Concurrency, req.TimeoutMs)
	if err != nil {
		handleAPIError(w, r, err, "create profile")
		return
	}
	if err := h.profiles.Create(r.Context(), profile); err != nil {
		handleAPIError(w, r, err, "create profile")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, profile)
}

// Get handles GET /api/admin/profiles/{id}.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		handleAPIError(w, r, err, "get profile")
		return
	}
	profile, err := h.profiles.GetByID(r.Context(), id)
	if err != nil {
		handleAPIError(w, r, err, "get profile")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, profile)
}

// Update handles PUT /api/admin/profiles/{id}. The body replaces every
// mutable field.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		handleAPIError(w, r, err, "update profile")
		return
	}
	var req ProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	profile, err := h.profiles.GetByID(r.Context(), id)
	if err != nil {
		handleAPIError(w, r, err, "update profile")
		return
	}
	profile.Name = strings.TrimSpace(req.Name)
	profile.TopicPreference = strings.TrimSpace(req.TopicPreference)
	profile.Concurrency = req.Concurrency
	profile.TimeoutMs = req.TimeoutMs
	profile.UpdatedAt = time.Now().UTC()
	if err := profile.Validate(); err != nil {
		handleAPIError(w, r, err, "update profile")
		return
	}

	if err := h.profiles.Update(r.Context(), profile); err != nil {
		handleAPIError(w, r, err, "update profile")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, profile)
}

// Delete handles DELETE /api/admin/profiles/{id}. Profiles still referenced
// by tasks are rejected with 409.
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		handleAPIError(w, r, err, "delete profile")
		return
	}
	if err := h.profiles.Delete(r.Context(), id); err != nil {
		handleAPIError(w, r, err, "delete profile")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
