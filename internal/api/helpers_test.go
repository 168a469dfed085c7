package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/wordnews/internal/auth"
	"github.com/phrazzld/wordnews/internal/config"
	"github.com/phrazzld/wordnews/internal/generation"
	"github.com/phrazzld/wordnews/internal/mocks"
	"github.com/phrazzld/wordnews/internal/platform/logger"
	"github.com/phrazzld/wordnews/internal/platform/sqlstore"
	"github.com/phrazzld/wordnews/internal/task"
	"github.com/phrazzld/wordnews/internal/testdb"
	"github.com/stretchr/testify/require"
)

const (
	testDate      = "2025-03-14"
	adminPassword = "correct horse battery staple"
)

var testWords = []string{"orbit", "launch", "crew", "signal", "module"}

// recordingDrainer captures background drain requests instead of running them.
type recordingDrainer struct {
	mu    sync.Mutex
	dates []string
}

func (d *recordingDrainer) Start(_ context.Context, taskDate string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dates = append(d.dates, taskDate)
}

func (d *recordingDrainer) Dates() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.dates...)
}

type apiFixture struct {
	stores  *sqlstore.Stores
	queue   *task.Queue
	drainer *recordingDrainer
	jwt     auth.JWTService
	router  http.Handler
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	stores := testdb.Open(t)
	_, log := logger.NewTestLogger(t)

	pipeline, err := generation.NewPipeline(&mocks.MockLLMClient{}, 0, log)
	require.NoError(t, err)
	queue, err := task.NewQueue(task.Dependencies{
		DB:       stores.DB,
		Tasks:    stores.Tasks,
		Profiles: stores.Profiles,
		Words:    stores.Words,
		Articles: stores.Articles,
		Pipeline: pipeline,
		Model:    "mock-model",
		Logger:   log,
	})
	require.NoError(t, err)

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            "0123456789abcdef0123456789abcdef",
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)

	verifier := &mocks.MockPasswordVerifier{CompareFn: func(hash, password string) error {
		if password != adminPassword {
			return auth.ErrInvalidCredentials
		}
		return nil
	}}

	drainer := &recordingDrainer{}
	router := NewRouter(RouterConfig{
		Logger:        log,
		DB:            stores.DB,
		Authenticator: auth.NewAuthenticator("stored-hash", verifier, jwtService),
		JWTService:    jwtService,
		Queue:         queue,
		Drainer:       drainer,
		Tasks:         stores.Tasks,
		Profiles:      stores.Profiles,
		Words:         stores.Words,
		Location:      time.UTC,
	})

	return &apiFixture{stores: stores, queue: queue, drainer: drainer, jwt: jwtService, router: router}
}

// do sends a request through the router. authed requests carry a valid
// admin token.
func (f *apiFixture) do(t *testing.T, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		token, _, err := f.jwt.GenerateToken(context.Background(), auth.AdminSubject)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
