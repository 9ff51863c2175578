package app

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/mcit/lawregistry/internal/calendar"
	calendarhttp "github.com/mcit/lawregistry/internal/calendar/http"
	"github.com/mcit/lawregistry/internal/observability"
	"github.com/mcit/lawregistry/internal/shared"
)

func testRouter(t *testing.T, cfg *Config) (http.Handler, *observability.Metrics) {
	t.Helper()
	metrics := observability.NewMetrics()
	dates := calendar.NewService(calendar.WithObserver(metrics))
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return NewRouter(RouterParams{
		Logger:      logger,
		Config:      cfg,
		DateHandler: calendarhttp.NewHandler(logger, dates),
		Metrics:     metrics,
	}), metrics
}

func TestHealthzAndSecurityHeaders(t *testing.T) {
	h, _ := testRouter(t, &Config{AppEnv: "test", RateLimitPerMinute: 100})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	require.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	require.NotEmpty(t, rec.Header().Get("X-Ratelimit-Limit"))
}

func TestMetricsCountNormalizations(t *testing.T) {
	h, _ := testRouter(t, &Config{AppEnv: "test", RateLimitPerMinute: 100})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/dates/normalize", strings.NewReader(`{"date":"2025-01-01"}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `lawregistry_date_normalizations_total{outcome="ok",source="gregorian"} 1`)
	require.Contains(t, body, "lawregistry_http_requests_total")
}

func TestRateLimit(t *testing.T) {
	h, _ := testRouter(t, &Config{AppEnv: "test", RateLimitPerMinute: 2})
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	require.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestActorMiddleware(t *testing.T) {
	r := chi.NewRouter()
	r.Use(actorMiddleware(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	var got int64
	var ok bool
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		got, ok = shared.ActorFromContext(r.Context())
	})

	cases := []struct {
		header string
		want   int64
		ok     bool
	}{
		{"42", 42, true},
		{"", 0, false},
		{"abc", 0, false},
		{"-3", 0, false},
	}
	for _, tc := range cases {
		got, ok = 0, false
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set(ActorHeader, tc.header)
		}
		r.ServeHTTP(httptest.NewRecorder(), req)
		require.Equal(t, tc.ok, ok, tc.header)
		require.Equal(t, tc.want, got, tc.header)
	}
}
