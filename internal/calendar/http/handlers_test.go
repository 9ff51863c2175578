package calendarhttp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcit/lawregistry/internal/calendar"
	"github.com/mcit/lawregistry/internal/platform/httpx"
)

func newRouter() http.Handler {
	r := chi.NewRouter()
	r.Route("/api/dates", NewHandler(nil, calendar.NewService()).MountRoutes)
	return r
}

func serve(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, req)
	return rec
}

func TestNormalizeDetectsSystem(t *testing.T) {
	cases := []struct {
		body   string
		source calendar.System
		rule   string
		want   string
	}{
		{`{"date":"2025-01-01"}`, calendar.Gregorian, "gregorian_era", "1446-07-01"},
		{`{"date":"1400-01-01"}`, calendar.SolarHijri, "solar_hijri_era", "1442-08-07"},
		{`{"date":"1200-03-10 08:15:00"}`, calendar.LunarHijri, calendar.FallbackRule, "1200-03-10 08:15:00"},
	}
	for _, tc := range cases {
		rec := serve(t, http.MethodPost, "/api/dates/normalize", tc.body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp NormalizeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, tc.source, resp.Source)
		assert.Equal(t, tc.rule, resp.Rule)
		assert.Equal(t, tc.want, resp.LunarHijri)
	}
}

func TestNormalizeWithExplicitSystem(t *testing.T) {
	rec := serve(t, http.MethodPost, "/api/dates/normalize", `{"date":"1446-07-01","system":"qamari"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp NormalizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, calendar.LunarHijri, resp.Source)
	assert.Equal(t, "1446-07-01", resp.LunarHijri)
	assert.Empty(t, resp.Rule)
}

func TestNormalizeFlagsAmbiguousYears(t *testing.T) {
	rec := serve(t, http.MethodPost, "/api/dates/normalize", `{"date":"1600-05-05"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp NormalizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Ambiguous)
	assert.Equal(t, "1600-05-05", resp.LunarHijri)
}

func TestConversionEndpoints(t *testing.T) {
	rec := serve(t, http.MethodGet, "/api/dates/solar-to-gregorian?date=1403-06-31", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var conv ConversionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conv))
	assert.Equal(t, ConversionResponse{Gregorian: "2024-09-21", SolarHijri: "1403-06-31"}, conv)

	rec = serve(t, http.MethodGet, "/api/dates/gregorian-to-solar?date=2024-02-29", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conv))
	assert.Equal(t, ConversionResponse{Gregorian: "2024-02-29", SolarHijri: "1402-12-10"}, conv)

	rec = serve(t, http.MethodGet, "/api/dates/detect?date=1701-01-01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var det calendar.Detection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &det))
	assert.Equal(t, calendar.Detection{Year: 1701, System: calendar.Gregorian, Rule: "gregorian_era"}, det)
}

func TestDateErrors(t *testing.T) {
	cases := []struct {
		name   string
		method string
		target string
		body   string
		title  string
	}{
		{"malformed", http.MethodPost, "/api/dates/normalize", `{"date":"2025/01/01"}`, "Malformed Date"},
		{"invalid month", http.MethodPost, "/api/dates/normalize", `{"date":"2025-13-01"}`, "Invalid Date"},
		{"missing date", http.MethodPost, "/api/dates/normalize", `{}`, "Validation Failed"},
		{"unknown system", http.MethodPost, "/api/dates/normalize", `{"date":"2025-01-01","system":"julian"}`, "Validation Failed"},
		{"esfand day 31", http.MethodGet, "/api/dates/solar-to-gregorian?date=1403-12-31", "", "Invalid Date"},
		{"non leap february", http.MethodGet, "/api/dates/gregorian-to-solar?date=2023-02-29", "", "Invalid Date"},
		{"empty detect", http.MethodGet, "/api/dates/detect", "", "Malformed Date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(t, tc.method, tc.target, tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			var problem httpx.ProblemDetail
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
			assert.Equal(t, tc.title, problem.Title)
		})
	}
}
