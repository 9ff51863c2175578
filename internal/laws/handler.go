package laws

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mcit/lawregistry/internal/calendar"
	"github.com/mcit/lawregistry/internal/platform/httpx"
	"github.com/mcit/lawregistry/internal/shared"
)

// LawService is the behaviour Handler needs from Service.
type LawService interface {
	Create(ctx context.Context, req CreateLawRequest, actorID int64) (Law, error)
	Update(ctx context.Context, id int64, req UpdateLawRequest, actorID int64) (Law, error)
	Delete(ctx context.Context, id int64, actorID int64) error
	Get(ctx context.Context, id int64) (Law, error)
	List(ctx context.Context, filters ListFilters) (ListResult, error)
	Summary(ctx context.Context, period SummaryPeriod) (Summary, error)
}

// Handler exposes the law registry as a JSON API.
type Handler struct {
	logger  *slog.Logger
	service LawService
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service LawService) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers law routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/reports/summary", h.summary)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actorID, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrUnauthorized, shared.ErrActorMissing))
		return
	}
	var req CreateLawRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	law, err := h.service.Create(r.Context(), req, actorID)
	if err != nil {
		h.fail(w, r, "create law", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, law)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actorID, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrUnauthorized, shared.ErrActorMissing))
		return
	}
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateLawRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	law, err := h.service.Update(r.Context(), id, req, actorID)
	if err != nil {
		h.fail(w, r, "update law", err)
		return
	}
	httpx.JSON(w, http.StatusOK, law)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	actorID, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrUnauthorized, shared.ErrActorMissing))
		return
	}
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id, actorID); err != nil {
		h.fail(w, r, "delete law", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	law, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get law", err)
		return
	}
	httpx.JSON(w, http.StatusOK, law)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := ListFilters{
		Type:        LawType(q.Get("type")),
		Status:      Status(q.Get("status")),
		Title:       q.Get("title"),
		ExactTitle:  q.Get("exact_title"),
		PublishDate: q.Get("publish_date"),
	}
	var err error
	if filters.UserID, err = queryInt64(q.Get("user_id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if filters.SequenceNumber, err = queryInt64(q.Get("sequence_number")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if name := q.Get("publish_calendar"); name != "" {
		if filters.PublishCalendar, err = calendar.ParseSystem(name); err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
			return
		}
	}
	page, err := queryInt64(q.Get("page"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	perPage, err := queryInt64(q.Get("per_page"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	filters.Page, filters.PerPage = int(page), int(perPage)

	result, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.fail(w, r, "list laws", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

// summary reads year and month in the calendar named by ?calendar=, Lunar
// Hijri when absent. ?calendar=gregorian counts by the Gregorian publish year.
func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	system := calendar.LunarHijri
	if name := q.Get("calendar"); name != "" {
		parsed, err := calendar.ParseSystem(name)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
			return
		}
		system = parsed
	}
	year, err := queryInt64(q.Get("year"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	month, err := queryInt64(q.Get("month"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	summary, err := h.service.Summary(r.Context(), SummaryPeriod{Calendar: system, Year: int(year), Month: int(month)})
	if err != nil {
		h.fail(w, r, "law summary", err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if h.logger != nil {
		h.logger.Warn(op+" failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id", httpx.ErrValidation)
	}
	return id, nil
}

func queryInt64(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", httpx.ErrValidation, raw)
	}
	return v, nil
}
