package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/mcit/lawregistry/internal/app"
	"github.com/mcit/lawregistry/internal/calendar"
	jobmetrics "github.com/mcit/lawregistry/internal/jobs"
	"github.com/mcit/lawregistry/internal/laws"
	"github.com/mcit/lawregistry/internal/platform/cache"
	"github.com/mcit/lawregistry/internal/platform/db"
	"github.com/mcit/lawregistry/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Default().Error("worker", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
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

	// The warmup only makes sense with a cache to fill.
	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	dates := calendar.NewService()
	lawsService := laws.NewService(
		laws.NewRepository(pool),
		dates,
		nil,
		laws.NewSummaryCache(redisClient, cfg.SummaryCacheTTL),
		logger,
	)
	warmupJob := jobs.NewSummaryWarmupJob(lawsService, logger, jobmetrics.NewMetrics(nil))

	warmupTask, err := jobs.NewSummaryWarmupTask(jobs.SummaryWarmupPayload{})
	if err != nil {
		return err
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB},
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskLawsSummaryWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.WarmupSchedule, Task: warmupTask, Options: []asynq.Option{asynq.Queue(jobs.QueueDefault)}},
		},
	})
	if err != nil {
		return err
	}

	logger.Info("starting worker", slog.String("warmup_cron", cfg.WarmupSchedule))
	return worker.Run(ctx)
}
