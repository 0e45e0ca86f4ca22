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

	"github.com/spf13/cobra"

	"github.com/kiranshivaraju/insightreporter/internal/ai"
	"github.com/kiranshivaraju/insightreporter/internal/api"
	"github.com/kiranshivaraju/insightreporter/internal/api/handler"
	mw "github.com/kiranshivaraju/insightreporter/internal/api/middleware"
	"github.com/kiranshivaraju/insightreporter/internal/briefing"
	"github.com/kiranshivaraju/insightreporter/internal/cache"
	"github.com/kiranshivaraju/insightreporter/internal/config"
	"github.com/kiranshivaraju/insightreporter/internal/dataset"
	"github.com/kiranshivaraju/insightreporter/internal/pipeline"
	"github.com/kiranshivaraju/insightreporter/internal/scheduler"
	"github.com/kiranshivaraju/insightreporter/internal/session"
	"github.com/kiranshivaraju/insightreporter/internal/store"
)

const (
	shutdownTimeout = 30 * time.Second
	requestTimeout  = 30 * time.Second
)

func newServeCmd(root *rootFlags) *cobra.Command {
	var migrationsDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the optional scheduled briefing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig(cmd.OutOrStdout())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.ValidateServer(); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.ValidateAI(); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, migrationsDir)
		},
	}
	cmd.Flags().StringVar(&migrationsDir, "migrations", "migrations", "directory holding SQL migrations")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, migrationsDir string) error {
	slog.Info("config loaded", "ai_provider", cfg.AI.Provider, "env", cfg.Server.Env, "dataset", cfg.Dataset.Source)

	// 1. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 2. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, migrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

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

	// 4. Create AI provider
	provider, err := ai.NewProvider(ctx, cfg.AI)
	if err != nil {
		return fmt.Errorf("create AI provider: %w", err)
	}
	slog.Info("AI provider initialized", "provider", provider.Name(), "model", provider.Model())

	// 5. Wire the briefing service
	pgStore := store.NewPostgresStore(pool)
	svc := briefing.NewService(
		dataset.NewLoader(cfg.Dataset.HTTPTimeout),
		pipeline.NewForProvider(provider),
		session.NewStore(redisCache, cfg.Redis.SessionTTL),
		cfg.Dataset.Source,
		cfg.AI.InferenceTimeout,
	)

	// 6. Scheduled briefing
	sched := scheduler.New(svc, redisCache)
	if cfg.Briefing.Schedule != "" {
		if err := sched.Start(ctx, cfg.Briefing.Schedule); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer sched.Stop()
	}

	// 7. Build router with dependencies
	router := api.NewRouter(api.Dependencies{
		Auth:           mw.NewAuth(pgStore),
		RateLimit:      mw.NewRateLimit(redisCache, cfg.Server.RateLimitPerMinute),
		RequestTimeout: requestTimeout,

		HealthHandler: handler.NewHealthHandler(map[string]handler.Pinger{
			"database": pgStore,
			"cache":    redisCache,
		}, provider.Name()),
		DatasetHandler:   handler.NewDatasetHandler(svc),
		AnalysisHandler:  handler.NewAnalysisHandler(svc),
		DispatchHandler:  handler.NewDispatchHandler(svc),
		LatestHandler:    handler.NewLatestHandler(sched),
		LogsHandler:      handler.NewLogsHandler(svc),
		CreateKeyHandler: handler.NewCreateKeyHandler(pgStore),
		ListKeysHandler:  handler.NewListKeysHandler(pgStore),
		RevokeKeyHandler: handler.NewRevokeKeyHandler(pgStore),
	})

	// 8. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
	// Dispatch responses wait on the whole pipeline.
	if cfg.AI.InferenceTimeout > 0 {
		srv.WriteTimeout = cfg.AI.InferenceTimeout + requestTimeout
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
