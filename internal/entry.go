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
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/lectio/lectio/internal/api"
	"github.com/lectio/lectio/internal/genai"
	"github.com/lectio/lectio/internal/mcpserver"
	"github.com/lectio/lectio/internal/notestore"
	"github.com/lectio/lectio/internal/quizstore"
	"github.com/lectio/lectio/internal/service"
	"github.com/lectio/lectio/internal/sse"
	"github.com/lectio/lectio/internal/uploads"
)

// buildService constructs the stores, the AI client and the service
// from configuration. The returned closer releases the quiz database.
func buildService(cfg *Config, logger *slog.Logger, events service.Publisher) (*service.Service, *notestore.Store, func(), error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Store.SQLitePath), 0o755); err != nil {
		return nil, nil, nil, fmt.Errorf("create data dir: %w", err)
	}

	notes, err := notestore.New(cfg.Store.NotesDir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init note store: %w", err)
	}
	quizzes, err := quizstore.Open(cfg.Store.SQLitePath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init quiz store: %w", err)
	}
	uploadDir, err := uploads.New(cfg.Store.UploadsDir)
	if err != nil {
		quizzes.Close()
		return nil, nil, nil, fmt.Errorf("init upload dir: %w", err)
	}

	client, err := genai.New(genai.Config{
		Provider:          cfg.AI.Provider,
		Model:             cfg.AI.Model,
		APIKey:            cfg.AI.APIKey,
		RequestsPerMinute: cfg.AI.RequestsPerMinute,
	})
	if err != nil {
		quizzes.Close()
		return nil, nil, nil, fmt.Errorf("init ai client: %w", err)
	}

	svc := service.New(service.Deps{
		Notes:   notes,
		Quizzes: quizzes,
		Uploads: uploadDir,
		Client:  client,
		Events:  events,
		Limits: service.Limits{
			MaxSourceChars:     cfg.Limits.MaxSourceChars,
			MaxPagePromptChars: cfg.Limits.MaxPagePromptChars,
			MaxPageTextChars:   cfg.Limits.MaxPageTextChars,
		},
		Logger: logger,
	})
	return svc, notes, func() { quizzes.Close() }, nil
}

func newLogger(cfg *Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := newLogger(cfg)
	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("notes_dir", cfg.Store.NotesDir),
		slog.String("sqlite_path", cfg.Store.SQLitePath),
		slog.String("uploads_dir", cfg.Store.UploadsDir),
		slog.String("provider", cfg.AI.Provider),
		slog.String("log_level", cfg.App.LogLevel.String()))

	broker := sse.NewBroker()
	defer broker.Close()

	svc, notes, closeStores, err := buildService(cfg, logger, broker)
	if err != nil {
		return err
	}
	defer closeStores()

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","model":%q}`, cfg.AI.Model)
	})
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the note directory so externally edited or deleted notes
	// still produce SSE events.
	g.Go(func() error {
		return notestore.Watch(gCtx, notes, logger, func(kind, fileID string) {
			broker.PublishNoteEvent(kind, fileID)
		})
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

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

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the MCP tool surface over stdio with the given options.
func RunMCP(_ context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	// Log to stderr: stdout belongs to the MCP transport.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	svc, _, closeStores, err := buildService(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer closeStores()

	logger.Info("Starting MCP server on stdio")
	return mcpserver.New(svc).ServeStdio()
}
