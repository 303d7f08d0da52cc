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

	"github.com/starford/golinks/internal/api"
	"github.com/starford/golinks/internal/embed"
	"github.com/starford/golinks/internal/linkservice"
	"github.com/starford/golinks/internal/linkstore"
	"github.com/starford/golinks/internal/mcpserver"
	"github.com/starford/golinks/internal/observe"
	"github.com/starford/golinks/internal/seed"
	"github.com/starford/golinks/internal/sse"
)

// deps is the wiring shared by every command.
type deps struct {
	cfg    *Config
	logger *slog.Logger
	store  *linkstore.Store
}

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// open builds the logger, the embedder and the store. The caller closes
// the store.
func (app *application) open(logTo *os.File) (*deps, error) {
	cfg := app.config

	logger := app.logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(logTo, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
	}
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("embedding_provider", cfg.Embedding.Provider),
		slog.Int("embedding_dimensions", cfg.Embedding.Dimensions),
		slog.String("seed_path", cfg.Seed.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	embedder, err := newEmbedder(cfg.Embedding, logger)
	if err != nil {
		return nil, fmt.Errorf("init embedder: %w", err)
	}

	store, err := linkstore.Open(cfg.SQLite.Path, embedder, linkstore.WithCandidateCap(cfg.Search.CandidateCap))
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	return &deps{cfg: cfg, logger: logger, store: store}, nil
}

func newEmbedder(cfg EmbeddingConfig, logger *slog.Logger) (embed.Embedder, error) {
	switch cfg.Provider {
	case EmbeddingProviderOpenAI:
		e, err := embed.NewOpenAI(embed.OpenAIConfig{
			Host:       cfg.Host,
			Model:      cfg.Model,
			Token:      cfg.Token,
			Dimensions: cfg.Dimensions,
		}, logger)
		if err != nil {
			return nil, err
		}
		return e, nil
	case EmbeddingProviderHash:
		e, err := embed.NewHash(cfg.Dimensions)
		if err != nil {
			return nil, err
		}
		return e, nil
	}
	return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	rt, err := app.open(os.Stdout)
	if err != nil {
		return err
	}
	defer rt.store.Close()
	cfg, logger := rt.cfg, rt.logger

	// SSE broker doubles as an operation hook so link writes reach clients.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	svc := linkservice.New(rt.store, observe.Hooks{observe.Log{Logger: logger}, broker})

	var importer *seed.Importer
	if cfg.Seed.Path != "" {
		importer = seed.NewImporter(svc, cfg.Seed.Path, logger)
		if _, err := importer.Import(ctx); err != nil {
			logger.Warn("initial seed import failed", slog.String("error", err.Error()))
		}
	}

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(api.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	// Health check endpoints.
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := rt.store.Count(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", api.NewRouter(svc, broker))
	r.Mount("/go", api.NewRedirectRouter(svc))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	if importer != nil && cfg.Seed.Watch {
		g.Go(func() error {
			return importer.Watch(gCtx, seed.DefaultDebounce)
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		// Unblock the seed watcher and anything else bound to gCtx.
		return context.Canceled
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the MCP tools on stdin/stdout. Logs go to stderr so they do
// not corrupt the protocol stream.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	rt, err := app.open(os.Stderr)
	if err != nil {
		return err
	}
	defer rt.store.Close()

	svc := linkservice.New(rt.store, observe.Log{Logger: rt.logger})
	rt.logger.Info("Starting MCP server on stdio")
	return mcpserver.New(svc, app.version).ServeStdio()
}

// RunImport applies the seed file at path once and returns the report.
func RunImport(ctx context.Context, path string, opts ...Option) (seed.Report, error) {
	app, err := newApplication(opts)
	if err != nil {
		return seed.Report{}, err
	}
	if path == "" {
		path = app.config.Seed.Path
	}
	if path == "" {
		return seed.Report{}, fmt.Errorf("seed path is required")
	}
	rt, err := app.open(os.Stderr)
	if err != nil {
		return seed.Report{}, err
	}
	defer rt.store.Close()

	svc := linkservice.New(rt.store, observe.Log{Logger: rt.logger})
	return seed.NewImporter(svc, path, rt.logger).Import(ctx)
}
