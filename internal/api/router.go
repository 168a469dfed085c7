package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	apiMiddleware "github.com/phrazzld/wordnews/internal/api/middleware"
	"github.com/phrazzld/wordnews/internal/api/shared"
	"github.com/phrazzld/wordnews/internal/auth"
	"github.com/phrazzld/wordnews/internal/store"
)

// Pinger reports database reachability for the health check.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterConfig carries every dependency of the admin API.
type RouterConfig struct {
	Logger        *slog.Logger
	DB            Pinger
	Authenticator Authenticator
	JWTService    auth.JWTService
	Queue         TaskQueue
	Drainer       BackgroundDrainer
	Tasks         store.TaskStore
	Profiles      store.ProfileStore
	Words         store.WordPoolStore
	Location      *time.Location
}

// NewRouter creates the admin API router with all routes and middleware.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(cfg.Logger))
	r.Use(middleware.Recoverer)

	authHandler := NewAuthHandler(cfg.Authenticator)
	authMiddleware := apiMiddleware.NewAuthMiddleware(cfg.JWTService)
	taskHandler := NewTaskHandler(cfg.Queue, cfg.Drainer, cfg.Tasks, cfg.Location)
	profileHandler := NewProfileHandler(cfg.Profiles)
	wordsHandler := NewWordsHandler(cfg.Words)

	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/tasks/generate", taskHandler.Generate)
			r.Post("/tasks/process", taskHandler.Process)
			r.Get("/tasks", taskHandler.List)
			r.Get("/tasks/{id}", taskHandler.Get)
			r.Delete("/tasks/{id}", taskHandler.Delete)

			r.Get("/profiles", profileHandler.List)
			r.Post("/profiles", profileHandler.Create)
			r.Get("/profiles/{id}", profileHandler.Get)
			r.Put("/profiles/{id}", profileHandler.Update)
			r.Delete("/profiles/{id}", profileHandler.Delete)

			r.Put("/words/{date}", wordsHandler.Upsert)
		})
	})

	r.Get("/health", healthHandler(cfg.DB))

	return r
}

func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, "Database unavailable", err)
				return
			}
		}
		shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ok", Time: time.Now().UTC()})
	}
}
