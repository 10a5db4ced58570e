// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/onboard/internal/api"
	"github.com/starford/onboard/internal/capability"
	"github.com/starford/onboard/internal/index"
	"github.com/starford/onboard/internal/pageservice"
	"github.com/starford/onboard/internal/render"
	"github.com/starford/onboard/internal/sse"
	"github.com/starford/onboard/internal/storage"
	"github.com/starford/onboard/internal/toc"
)

// Services is the wired application core shared by the HTTP server and the
// MCP server.
type Services struct {
	Config    *Config
	Logger    *slog.Logger
	Store     *storage.FS
	DB        *index.DB
	Formatter *toc.Formatter
	Pages     *pageservice.Service
}

// Close releases the index database.
func (s *Services) Close() error {
	return s.DB.Close()
}

// NewLogger returns a JSON logger writing to w at the configured level.
func NewLogger(cfg *Config, w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
}

// Setup opens storage and the index, runs the initial sync and builds the
// page service.
func Setup(cfg *Config, logger *slog.Logger) (*Services, error) {
	f, err := toc.New(cfg.TOC.Options())
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.Content.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create content dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Content.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	if err := index.Sync(db, store, f, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	return &Services{
		Config:    cfg,
		Logger:    logger,
		Store:     store,
		DB:        db,
		Formatter: f,
		Pages:     pageservice.NewService(store, db, f, capability.New(cfg.Capabilities)),
	}, nil
}

// NewHandler builds the full HTTP handler: health checks, the JSON API under
// /api and the HTML pages at the root.
func NewHandler(svc *pageservice.Service, events http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", health)
	r.Get("/health/ready", health)

	r.Mount("/api", api.NewRouter(svc, events))
	api.NewSite(svc, render.New()).Mount(r)

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{logOutput: os.Stdout}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := NewLogger(cfg, app.logOutput)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_path", cfg.Content.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Int("capabilities", len(cfg.Capabilities)),
		slog.String("log_level", cfg.App.LogLevel.String()))

	services, err := Setup(cfg, logger)
	if err != nil {
		return err
	}
	defer services.Close()

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: NewHandler(services.Pages, broker),
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)
	watchCtx, stopWatch := context.WithCancel(gCtx)
	defer stopWatch()

	// Keep the index in step with the content dir and tell browsers.
	g.Go(func() error {
		err := index.Watch(watchCtx, services.DB, services.Store, services.Formatter, cfg.Content.Path, logger, broker.PublishPageEvent)
		if err != nil {
			logger.Error("watcher stopped", slog.String("error", err.Error()))
		}
		return nil
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
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")
		stopWatch()

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
