package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/mcit/lawregistry/internal/jobs"
)

type stubWarmer struct {
	days   []time.Time
	warmed int
	err    error
}

func (s *stubWarmer) WarmSummaries(ctx context.Context, now time.Time) (int, error) {
	s.days = append(s.days, now)
	return s.warmed, s.err
}

func newTestJob(warmer *stubWarmer) *SummaryWarmupJob {
	job := NewSummaryWarmupJob(warmer, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))
	job.clock = func() time.Time { return time.Date(2025, 1, 1, 1, 0, 0, 0, time.UTC) }
	return job
}

func TestSummaryWarmupUsesClock(t *testing.T) {
	warmer := &stubWarmer{warmed: 8}
	task, err := NewSummaryWarmupTask(SummaryWarmupPayload{})
	require.NoError(t, err)
	require.Equal(t, TaskLawsSummaryWarmup, task.Type())

	require.NoError(t, newTestJob(warmer).Handle(context.Background(), task))
	require.Len(t, warmer.days, 1)
	require.Equal(t, "2025-01-01", warmer.days[0].Format(time.DateOnly))
}

func TestSummaryWarmupPinnedDay(t *testing.T) {
	warmer := &stubWarmer{warmed: 13}
	task, err := NewSummaryWarmupTask(SummaryWarmupPayload{At: "2024-07-08"})
	require.NoError(t, err)

	require.NoError(t, newTestJob(warmer).Handle(context.Background(), task))
	require.Equal(t, time.Date(2024, 7, 8, 0, 0, 0, 0, time.UTC), warmer.days[0])
}

func TestSummaryWarmupRejectsBadPayload(t *testing.T) {
	warmer := &stubWarmer{}
	job := newTestJob(warmer)

	err := job.Handle(context.Background(), asynq.NewTask(TaskLawsSummaryWarmup, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)

	task, err := NewSummaryWarmupTask(SummaryWarmupPayload{At: "08/07/2024"})
	require.NoError(t, err)
	err = job.Handle(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
	require.Empty(t, warmer.days)
}

func TestSummaryWarmupPropagatesFailure(t *testing.T) {
	boom := errors.New("redis unavailable")
	warmer := &stubWarmer{warmed: 2, err: boom}
	err := newTestJob(warmer).Handle(context.Background(), asynq.NewTask(TaskLawsSummaryWarmup, nil))
	require.ErrorIs(t, err, boom)
}

func TestSummaryWarmupRequiresService(t *testing.T) {
	var job *SummaryWarmupJob
	require.Error(t, job.Handle(context.Background(), asynq.NewTask(TaskLawsSummaryWarmup, nil)))
}
