// Package main is the entrypoint for the intelligence engine API server.
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

	"github.com/kyrieos/intelligence-engine/internal/ai"
	"github.com/kyrieos/intelligence-engine/internal/api"
	"github.com/kyrieos/intelligence-engine/internal/api/handler"
	mw "github.com/kyrieos/intelligence-engine/internal/api/middleware"
	"github.com/kyrieos/intelligence-engine/internal/cache"
	"github.com/kyrieos/intelligence-engine/internal/cfo"
	"github.com/kyrieos/intelligence-engine/internal/config"
	"github.com/kyrieos/intelligence-engine/internal/store"
	"github.com/kyrieos/intelligence-engine/internal/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config; fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded",
		"env", cfg.Server.Env,
		"store_backend", cfg.Store.Backend,
		"ai_provider", cfg.AI.Provider,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Open the job store
	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// 3. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 4. Create AI provider; nil disables narratives
	aiProvider, err := ai.NewProvider(cfg.AI)
	if err != nil {
		return fmt.Errorf("create AI provider: %w", err)
	}
	if aiProvider != nil {
		slog.Info("AI provider initialized", "provider", aiProvider.Name())
	} else {
		slog.Info("AI narratives disabled")
	}

	// 5. Start the worker pool
	pool := worker.NewPool(slog.Default(),
		worker.WithConcurrency(cfg.Worker.Concurrency),
		worker.WithQueueSize(cfg.Worker.QueueSize),
	)
	if err := pool.Start(ctx); err != nil {
		return fmt.Errorf("start worker pool: %w", err)
	}

	svc := cfo.NewService(st, redisCache, aiProvider, pool, cfg.AI.InferenceTimeout)

	// 6. Start HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      newRouter(cfg, st, redisCache, svc),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		stopPool(pool)
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		stopPool(pool)
		return fmt.Errorf("server shutdown: %w", err)
	}
	if err := pool.Stop(shutdownCtx); err != nil {
		slog.Warn("worker pool did not drain before timeout", "error", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// openStore returns the configured Store and a func that releases it.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	if cfg.Store.Backend == config.StoreBackendMemory {
		slog.Warn("using in-memory store; jobs are lost on restart")
		return store.NewMemoryStore(), func() {}, nil
	}

	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	slog.Info("database connected")

	if err := store.RunMigrations(cfg.Database.URL, cfg.Store.MigrationsDir); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	return store.NewPostgresStore(pool), pool.Close, nil
}

func newRouter(cfg *config.Config, st store.Store, ca cache.Cache, svc *cfo.Service) http.Handler {
	return api.NewRouter(api.Dependencies{
		Auth:      mw.NewAuth(cfg.Auth.Secret, cfg.Auth.SecretHash),
		RateLimit: mw.NewRateLimit(ca, cfg.Server.RateLimitPerMinute),

		RootHandler:    handler.NewRootHandler(),
		HealthHandler:  handler.NewHealthHandler(st, ca),
		MetricsHandler: promhttp.Handler(),

		AnalyzeHandler:      handler.NewAnalyzeHandler(svc),
		LatestReportHandler: handler.NewLatestReportHandler(svc),
		ListActionsHandler:  handler.NewListActionsHandler(st),

		GetJobHandler:   handler.NewGetJobHandler(st),
		ListJobsHandler: handler.NewListJobsHandler(st),
	})
}

func stopPool(pool *worker.Pool) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := pool.Stop(ctx); err != nil {
		slog.Warn("worker pool did not drain before timeout", "error", err)
	}
}
