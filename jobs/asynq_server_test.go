package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return s.info, s.err
}

func serveHealth(t *testing.T, inspector QueueInspector) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Route("/jobs", NewHandler(inspector, nil).MountRoutes)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	return rec
}

func TestHealthReportsQueue(t *testing.T) {
	rec := serveHealth(t, stubInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 3, Active: 1, Failed: 2}})
	require.Equal(t, http.StatusOK, rec.Code)
	var got queueHealth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, queueHealth{Queue: QueueDefault, Pending: 3, Active: 1, Failed: 2}, got)
}

func TestHealthWithoutInspector(t *testing.T) {
	rec := serveHealth(t, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"queue":"default","pending":0,"active":0,"failed":0}`, rec.Body.String())
}

func TestHealthQueueUnavailable(t *testing.T) {
	rec := serveHealth(t, stubInspector{err: errors.New("dial tcp: refused")})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestNewWorkerValidatesRegistrations(t *testing.T) {
	mr := miniredis.RunT(t)
	opts := asynq.RedisClientOpt{Addr: mr.Addr()}
	handler := TaskHandler{Type: TaskLawsSummaryWarmup, Handler: func(context.Context, *asynq.Task) error { return nil }}
	task, err := NewSummaryWarmupTask(SummaryWarmupPayload{})
	require.NoError(t, err)

	_, err = NewWorker(WorkerConfig{RedisOpts: opts})
	require.Error(t, err)

	_, err = NewWorker(WorkerConfig{RedisOpts: opts, Handlers: []TaskHandler{handler}, Cron: []CronRegistration{{Spec: "every tuesday", Task: task}}})
	require.Error(t, err)

	w, err := NewWorker(WorkerConfig{RedisOpts: opts, Handlers: []TaskHandler{handler}, Cron: []CronRegistration{{Spec: "0 1 * * *", Task: task}}})
	require.NoError(t, err)
	require.NotNil(t, w.scheduler)
}

func TestEnqueueSummaryWarmup(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewClient(asynq.RedisClientOpt{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	info, err := client.EnqueueSummaryWarmup(context.Background(), SummaryWarmupPayload{At: "2025-01-01"})
	require.NoError(t, err)
	require.Equal(t, TaskLawsSummaryWarmup, info.Type)
	require.Equal(t, QueueDefault, info.Queue)

	_, err = client.EnqueueSummaryWarmup(context.Background(), SummaryWarmupPayload{At: "2025-01-01"})
	require.ErrorIs(t, err, asynq.ErrDuplicateTask)
}
