package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	calendarhttp "github.com/mcit/lawregistry/internal/calendar/http"
	"github.com/mcit/lawregistry/internal/laws"
	"github.com/mcit/lawregistry/internal/observability"
	"github.com/mcit/lawregistry/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger      *slog.Logger
	Config      *Config
	LawsHandler *laws.Handler
	DateHandler *calendarhttp.Handler
	JobHandler  *jobs.Handler
	Metrics     *observability.Metrics
}

// NewRouter constructs the chi.Router with registry defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	if params.Config == nil || !params.Config.IsProduction() {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.LawsHandler != nil {
		r.Route("/api/laws", params.LawsHandler.MountRoutes)
	}
	if params.DateHandler != nil {
		r.Route("/api/dates", params.DateHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
