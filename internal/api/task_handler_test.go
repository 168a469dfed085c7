package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/wordnews/internal/api/shared"
	"github.com/phrazzld/wordnews/internal/domain"
	"github.com/phrazzld/wordnews/internal/store"
	"github.com/phrazzld/wordnews/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTasks(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	profile := testdb.CreateProfile(t, f.stores, "science", "space")
	testdb.UpsertWordPool(t, f.stores, testDate, testWords, nil)

	rec := f.do(t, http.MethodPost, "/api/admin/tasks/generate", GenerateTasksRequest{TaskDate: testDate}, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decodeBody[GenerateTasksResponse](t, rec)
	require.Len(t, resp.Tasks, 1)
	assert.Equal(t, profile.ID, resp.Tasks[0].ProfileID)
	assert.Equal(t, "science", resp.Tasks[0].ProfileName)
	assert.False(t, resp.Processing)
	assert.Empty(t, f.drainer.Dates())

	created, err := f.stores.Tasks.GetByID(context.Background(), resp.Tasks[0].TaskID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusQueued, created.Status)
	assert.Equal(t, domain.TriggerSourceManual, created.TriggerSource)

	rec = f.do(t, http.MethodPost, "/api/admin/tasks/generate",
		GenerateTasksRequest{TaskDate: testDate, Process: true}, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, decodeBody[GenerateTasksResponse](t, rec).Processing)
	assert.Equal(t, []string{testDate}, f.drainer.Dates())
}

func TestGenerateTasksErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		setup     func(t *testing.T, f *apiFixture)
		body      any
		wantError string
	}{
		{
			name: "no profiles",
			setup: func(t *testing.T, f *apiFixture) {
				testdb.UpsertWordPool(t, f.stores, testDate, testWords, nil)
			},
			body:      GenerateTasksRequest{TaskDate: testDate},
			wantError: "No generation profile found",
		},
		{
			name: "no daily words",
			setup: func(t *testing.T, f *apiFixture) {
				testdb.CreateProfile(t, f.stores, "science", "space")
			},
			body:      GenerateTasksRequest{TaskDate: testDate},
			wantError: "No daily words found",
		},
		{
			name:      "malformed date",
			body:      GenerateTasksRequest{TaskDate: "14/03/2025"},
			wantError: "Invalid task_date: must be formatted as YYYY-MM-DD",
		},
		{
			name:      "missing date",
			body:      map[string]any{"process": true},
			wantError: "Invalid task_date: required field",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newAPIFixture(t)
			if tc.setup != nil {
				tc.setup(t, f)
			}

			rec := f.do(t, http.MethodPost, "/api/admin/tasks/generate", tc.body, true)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.wantError, decodeBody[shared.ErrorResponse](t, rec).Error)
			assert.Empty(t, f.drainer.Dates())
		})
	}
}

func TestProcessTasks(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/admin/tasks/process", ProcessTasksRequest{TaskDate: testDate}, true)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, ProcessTasksResponse{TaskDate: testDate, Status: "processing"},
		decodeBody[ProcessTasksResponse](t, rec))
	assert.Equal(t, []string{testDate}, f.drainer.Dates())

	rec = f.do(t, http.MethodPost, "/api/admin/tasks/process", ProcessTasksRequest{TaskDate: "2025-3-14"}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, f.drainer.Dates(), 1)
}

func TestListAndGetTasks(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	profile := testdb.CreateProfile(t, f.stores, "science", "space")
	first := testdb.CreateTask(t, f.stores, testDate, profile.ID)
	testdb.CreateTask(t, f.stores, testDate, profile.ID)
	testdb.CreateTask(t, f.stores, "2025-03-15", profile.ID)

	rec := f.do(t, http.MethodGet, "/api/admin/tasks?task_date="+testDate, nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[TaskListResponse](t, rec)
	assert.Equal(t, testDate, list.TaskDate)
	require.Len(t, list.Tasks, 2)
	assert.Equal(t, "science", list.Tasks[0].ProfileName)

	rec = f.do(t, http.MethodGet, "/api/admin/tasks?task_date=2025-02-30", nil, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/admin/tasks/"+first.ID.String(), nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[domain.Task](t, rec)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, domain.TaskStatusQueued, got.Status)

	rec = f.do(t, http.MethodGet, "/api/admin/tasks/"+uuid.NewString(), nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Task not found", decodeBody[shared.ErrorResponse](t, rec).Error)

	rec = f.do(t, http.MethodGet, "/api/admin/tasks/not-a-uuid", nil, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid ID", decodeBody[shared.ErrorResponse](t, rec).Error)
}

func TestListTasksDefaultsToToday(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	rec := f.do(t, http.MethodGet, "/api/admin/tasks", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)

	list := decodeBody[TaskListResponse](t, rec)
	assert.NoError(t, domain.ValidateTaskDate(list.TaskDate))
	assert.Empty(t, list.Tasks)
}

func TestDeleteTask(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	profile := testdb.CreateProfile(t, f.stores, "science", "space")
	victim := testdb.CreateTask(t, f.stores, testDate, profile.ID)

	rec := f.do(t, http.MethodDelete, "/api/admin/tasks/"+victim.ID.String(), nil, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, DeleteTaskResponse{ID: victim.ID.String(), TaskDate: testDate, Deleted: true},
		decodeBody[DeleteTaskResponse](t, rec))
	assert.Equal(t, []string{testDate}, f.drainer.Dates(), "deleting a task re-drains its date")

	_, err := f.stores.Tasks.GetByID(context.Background(), victim.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	rec = f.do(t, http.MethodDelete, "/api/admin/tasks/"+victim.ID.String(), nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Len(t, f.drainer.Dates(), 1)
}
