// Package internal provides the main application initialization and runtime logic.
package internal

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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/arczen/internal/api"
	"github.com/starford/arczen/internal/sidebar"
	"github.com/starford/arczen/internal/sse"
)

// Run starts the review server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	svc, err := NewReviewService(cfg, logger)
	if err != nil {
		return err
	}
	runOpts := svc.Options()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.Review.HTTP.Address()),
		slog.String("sidebar_path", runOpts.SidebarPath),
		slog.String("profile_dir", runOpts.ProfileDir),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Parse the sidebar once up front so the first preview is instant. A
	// missing or malformed file is not fatal; the watcher picks it up later.
	if doc, loadErr := sidebar.LoadFile(runOpts.SidebarPath); loadErr != nil {
		logger.Warn("initial sidebar load failed", slog.String("error", loadErr.Error()))
	} else {
		svc.SetDocument(doc)
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)

	// Build API router.
	apiRouter := api.NewRouter(svc, cfg.Review.Auth.AuthEnabled(), cfg.Review.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.Review.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.Review.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the sidebar file and push reload events to review clients.
	g.Go(func() error {
		watchErr := sidebar.Watch(gCtx, runOpts.SidebarPath, logger, func(doc *sidebar.Document) {
			svc.SetDocument(doc)
			broker.PublishSidebarReload(runOpts.SidebarPath, len(doc.Spaces()))
		})
		if watchErr != nil {
			logger.Warn("sidebar watcher unavailable", slog.String("error", watchErr.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.Review.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		broker.Close()

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
