package calendarhttp

import "github.com/go-chi/chi/v5"

// MountRoutes registers date conversion routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/normalize", h.handleNormalize)
	r.Get("/detect", h.handleDetect)
	r.Get("/solar-to-gregorian", h.handleSolarToGregorian)
	r.Get("/gregorian-to-solar", h.handleGregorianToSolar)
}
