package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phrazzld/wordnews/internal/api"
	"github.com/phrazzld/wordnews/internal/auth"
	"github.com/phrazzld/wordnews/internal/task"
	"github.com/spf13/cobra"
)

const defaultShutdownTimeout = 15 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the admin HTTP API",
		Long:  "Starts the admin HTTP API. Drains requested through the API run in the background and are awaited on shutdown.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := newApplication(ctx, opts)
			if err != nil {
				return err
			}
			defer app.close()

			if err := app.initQueue(ctx, true); err != nil {
				return err
			}

			if app.config.Auth.AdminPasswordHash == "" {
				return fmt.Errorf("auth.admin_password_hash must be set to serve the admin API")
			}
			jwtService, err := auth.NewJWTService(app.config.Auth)
			if err != nil {
				return fmt.Errorf("failed to initialize JWT service: %w", err)
			}

			drainer := task.NewDrainer(app.queue, task.DrainerConfig{Workers: app.config.Queue.Workers}, app.logger)
			router := api.NewRouter(api.RouterConfig{
				Logger:        app.logger,
				DB:            app.db,
				Authenticator: auth.NewAuthenticator(app.config.Auth.AdminPasswordHash, auth.NewBcryptVerifier(), jwtService),
				JWTService:    jwtService,
				Queue:         app.queue,
				Drainer:       drainer,
				Tasks:         app.stores.Tasks,
				Profiles:      app.stores.Profiles,
				Words:         app.stores.Words,
				Location:      app.location,
			})

			return app.startHTTPServer(ctx, router, drainer)
		},
	}
}

// startHTTPServer serves until ctx is canceled or the listener fails, then
// shuts down gracefully and waits for background drains.
func (app *application) startHTTPServer(ctx context.Context, router http.Handler, drainer *task.Drainer) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		app.logger.Info("starting server", slog.Int("port", app.config.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		app.logger.Info("shutting down server")
	}

	timeout := app.config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("server shutdown failed", slog.String("error", err.Error()))
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	app.logger.Info("waiting for background drains")
	drainer.Wait()
	app.logger.Info("server shutdown completed")
	return nil
}
