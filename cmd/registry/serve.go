package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/mcit/lawregistry/internal/app"
	"github.com/mcit/lawregistry/internal/calendar"
	calendarhttp "github.com/mcit/lawregistry/internal/calendar/http"
	"github.com/mcit/lawregistry/internal/laws"
	"github.com/mcit/lawregistry/internal/observability"
	"github.com/mcit/lawregistry/internal/platform/cache"
	"github.com/mcit/lawregistry/internal/platform/db"
	"github.com/mcit/lawregistry/internal/shared"
	"github.com/mcit/lawregistry/jobs"
)

func serve(ctx context.Context) error {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return nil
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: cfg.PGMaxConns})
	if err != nil {
		return err
	}
	defer pool.Close()

	var redisClient *redis.Client
	if client, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisDB); err != nil {
		logger.Warn("redis unavailable, summary cache disabled", slog.Any("error", err))
	} else {
		redisClient = client
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	metrics := observability.NewMetrics()
	dates := calendar.NewService(calendar.WithObserver(metrics))
	auditLogger := shared.NewAuditLogger(pool, dates)

	lawsService := laws.NewService(
		laws.NewRepository(pool),
		dates,
		auditLogger,
		laws.NewSummaryCache(redisClient, cfg.SummaryCacheTTL),
		logger,
	)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:      logger,
		Config:      cfg,
		LawsHandler: laws.NewHandler(logger, lawsService),
		DateHandler: calendarhttp.NewHandler(logger, dates),
		JobHandler:  jobs.NewHandler(inspector, logger),
		Metrics:     metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.Error("http server", slog.Any("error", err))
		return err
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
