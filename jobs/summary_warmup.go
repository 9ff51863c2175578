package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/mcit/lawregistry/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// SummaryWarmer is implemented by laws.Service.
type SummaryWarmer interface {
	WarmSummaries(ctx context.Context, now time.Time) (int, error)
}

// SummaryWarmupJob fills the law summary cache so the first report request of
// the day does not pay for the aggregation.
type SummaryWarmupJob struct {
	Laws    SummaryWarmer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewSummaryWarmupJob wires dependencies for the warmup handler.
func NewSummaryWarmupJob(laws SummaryWarmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *SummaryWarmupJob {
	return &SummaryWarmupJob{
		Laws:    laws,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes TaskLawsSummaryWarmup tasks.
func (j *SummaryWarmupJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Laws == nil {
		return errors.New("summary warmup: handler not configured")
	}
	var payload SummaryWarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("summary warmup: payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	start := j.now()
	day, err := payload.day(start)
	if err != nil {
		return fmt.Errorf("summary warmup: at %q: %v: %w", payload.At, err, asynq.SkipRetry)
	}

	metrics := j.metrics()
	tracker := metrics.Track(TaskLawsSummaryWarmup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("day", day.Format(time.DateOnly)))
	logger.Info("starting summary warmup")

	warmed, err := j.Laws.WarmSummaries(ctx, day)
	metrics.AddWarmed(TaskLawsSummaryWarmup, warmed)
	if err != nil {
		logger.Error("summary warmup failed", slog.Int("warmed", warmed), slog.Any("error", err))
		return err
	}
	logger.Info("completed summary warmup", slog.Int("periods", warmed), slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *SummaryWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskLawsSummaryWarmup))
	}
	return slog.Default().With(slog.String("job", TaskLawsSummaryWarmup))
}

func (j *SummaryWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *SummaryWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
