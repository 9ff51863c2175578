// Package calendarhttp exposes the date normalization engine over HTTP.
package calendarhttp

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mcit/lawregistry/internal/calendar"
	"github.com/mcit/lawregistry/internal/platform/httpx"
)

// DateService is the engine surface used by the handler.
type DateService interface {
	Detect(raw string) (calendar.Detection, error)
	NormalizeToLunarHijri(raw string) (string, error)
	NormalizeFrom(system calendar.System, raw string) (string, error)
	SolarHijriToGregorian(year, month, day int) (calendar.Date, error)
	GregorianToSolarHijri(d calendar.Date) (string, error)
}

// Handler serves /api/dates.
type Handler struct {
	logger  *slog.Logger
	service DateService
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service DateService) *Handler {
	return &Handler{logger: logger, service: service}
}

// NormalizeRequest asks for a date to be normalized to Lunar Hijri. System is
// optional; when empty the calendar is detected from the year.
type NormalizeRequest struct {
	Date   string `json:"date"`
	System string `json:"system,omitempty"`
}

// NormalizeResponse reports the normalized date and how its source calendar
// was chosen.
type NormalizeResponse struct {
	Input      string          `json:"input"`
	Source     calendar.System `json:"source"`
	Rule       string          `json:"rule,omitempty"`
	Ambiguous  bool            `json:"ambiguous"`
	LunarHijri string          `json:"lunar_hijri"`
}

// ConversionResponse pairs a date with its rendition in another calendar.
type ConversionResponse struct {
	Gregorian  string `json:"gregorian"`
	SolarHijri string `json:"solar_hijri"`
}

func (h *Handler) handleNormalize(w http.ResponseWriter, r *http.Request) {
	var req NormalizeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if strings.TrimSpace(req.Date) == "" {
		httpx.RespondError(w, fmt.Errorf("%w: date is required", httpx.ErrValidation))
		return
	}

	resp := NormalizeResponse{Input: req.Date}
	var (
		out string
		err error
	)
	if req.System != "" {
		system, perr := calendar.ParseSystem(req.System)
		if perr != nil {
			httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, perr))
			return
		}
		resp.Source = system
		out, err = h.service.NormalizeFrom(system, req.Date)
	} else {
		det, derr := h.service.Detect(req.Date)
		if derr != nil {
			h.fail(w, req.Date, derr)
			return
		}
		resp.Source, resp.Rule, resp.Ambiguous = det.System, det.Rule, det.Ambiguous
		out, err = h.service.NormalizeToLunarHijri(req.Date)
	}
	if err != nil {
		h.fail(w, req.Date, err)
		return
	}
	resp.LunarHijri = out
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) handleDetect(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("date")
	det, err := h.service.Detect(raw)
	if err != nil {
		h.fail(w, raw, err)
		return
	}
	httpx.JSON(w, http.StatusOK, det)
}

func (h *Handler) handleSolarToGregorian(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("date")
	src, err := calendar.Parse(calendar.SolarHijri, raw)
	if err != nil {
		h.fail(w, raw, err)
		return
	}
	g, err := h.service.SolarHijriToGregorian(src.Year, src.Month, src.Day)
	if err != nil {
		h.fail(w, raw, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ConversionResponse{Gregorian: g.String(), SolarHijri: src.String()})
}

func (h *Handler) handleGregorianToSolar(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("date")
	src, err := calendar.Parse(calendar.Gregorian, raw)
	if err != nil {
		h.fail(w, raw, err)
		return
	}
	solar, err := h.service.GregorianToSolarHijri(src)
	if err != nil {
		h.fail(w, raw, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ConversionResponse{Gregorian: src.String(), SolarHijri: solar})
}

func (h *Handler) fail(w http.ResponseWriter, input string, err error) {
	if h.logger != nil {
		h.logger.Debug("date conversion rejected", slog.String("input", input), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
