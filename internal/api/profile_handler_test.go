package api

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/wordnews/internal/api/shared"
	"github.com/phrazzld/wordnews/internal/domain"
	"github.com/phrazzld/wordnews/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProfile(name string) ProfileRequest {
	return ProfileRequest{Name: name, TopicPreference: "space exploration", Concurrency: 1, TimeoutMs: 60000}
}

func TestProfileCRUD(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/admin/profiles", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"profiles":[]}`, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/admin/profiles", validProfile("  science  "), true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[domain.GenerationProfile](t, rec)
	assert.Equal(t, "science", created.Name)
	assert.NotEqual(t, uuid.Nil, created.ID)

	rec = f.do(t, http.MethodGet, "/api/admin/profiles/"+created.ID.String(), nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "space exploration", decodeBody[domain.GenerationProfile](t, rec).TopicPreference)

	update := validProfile("science weekly")
	update.TimeoutMs = 90000
	rec = f.do(t, http.MethodPut, "/api/admin/profiles/"+created.ID.String(), update, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[domain.GenerationProfile](t, rec)
	assert.Equal(t, "science weekly", updated.Name)
	assert.Equal(t, 90000, updated.TimeoutMs)
	assert.Equal(t, created.ID, updated.ID)

	rec = f.do(t, http.MethodGet, "/api/admin/profiles", nil, true)
	list := decodeBody[ProfileListResponse](t, rec)
	require.Len(t, list.Profiles, 1)
	assert.Equal(t, "science weekly", list.Profiles[0].Name)

	rec = f.do(t, http.MethodDelete, "/api/admin/profiles/"+created.ID.String(), nil, true)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/admin/profiles/"+created.ID.String(), nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Generation profile not found", decodeBody[shared.ErrorResponse](t, rec).Error)
}

func TestProfileErrors(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	existing := testdb.CreateProfile(t, f.stores, "science", "space")
	other := testdb.CreateProfile(t, f.stores, "sport", "football")
	testdb.CreateTask(t, f.stores, testDate, existing.ID)

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
		wantError  string
	}{
		{
			name:       "duplicate name",
			method:     http.MethodPost,
			path:       "/api/admin/profiles",
			body:       validProfile("science"),
			wantStatus: http.StatusConflict,
			wantError:  "Profile name already exists",
		},
		{
			name:       "rename onto existing name",
			method:     http.MethodPut,
			path:       "/api/admin/profiles/" + other.ID.String(),
			body:       validProfile("science"),
			wantStatus: http.StatusConflict,
			wantError:  "Profile name already exists",
		},
		{
			name:       "zero concurrency",
			method:     http.MethodPost,
			path:       "/api/admin/profiles",
			body:       ProfileRequest{Name: "x", TopicPreference: "y", Concurrency: 0, TimeoutMs: 1},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid concurrency: must be positive",
		},
		{
			name:       "blank topic after trimming",
			method:     http.MethodPost,
			path:       "/api/admin/profiles",
			body:       ProfileRequest{Name: "x", TopicPreference: "   ", Concurrency: 1, TimeoutMs: 1},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid profile: profile topic preference cannot be empty",
		},
		{
			name:       "update unknown profile",
			method:     http.MethodPut,
			path:       "/api/admin/profiles/" + uuid.NewString(),
			body:       validProfile("new"),
			wantStatus: http.StatusNotFound,
			wantError:  "Generation profile not found",
		},
		{
			name:       "delete profile in use",
			method:     http.MethodDelete,
			path:       "/api/admin/profiles/" + existing.ID.String(),
			wantStatus: http.StatusConflict,
			wantError:  "Generation profile is referenced by tasks",
		},
		{
			name:       "unknown field",
			method:     http.MethodPost,
			path:       "/api/admin/profiles",
			body:       `{"name":"x","topic_preference":"y","concurrency":1,"timeout_ms":1,"owner":"me"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid request format",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(t, tc.method, tc.path, tc.body, true)
			assert.Equal(t, tc.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tc.wantError, decodeBody[shared.ErrorResponse](t, rec).Error)
		})
	}
}
