package api

import (
	"net/http"
	"strconv"

	"github.com/dmatos-dev/plantrack/internal/calendar"
	"github.com/go-chi/chi/v5"
)

// CalendarHandler handles calendar endpoints.
type CalendarHandler struct {
	calendar *calendar.Materializer
}

// NewCalendarHandler creates a calendar handler.
func NewCalendarHandler(m *calendar.Materializer) *CalendarHandler {
	return &CalendarHandler{calendar: m}
}

// RegisterRoutes registers calendar routes.
func (h *CalendarHandler) RegisterRoutes(r chi.Router) {
	r.Get("/v1/calendar/blocked-days", h.BlockedDays)
	r.Get("/v1/calendar/{year}/{month}", h.Month)
}

// Month returns the materialized day grid for one month.
func (h *CalendarHandler) Month(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid year")
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid month")
		return
	}

	view, err := h.calendar.Month(r.Context(), year, month)
	if err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	JSON(w, http.StatusOK, view)
}

// BlockedDays returns every non-working day on record.
func (h *CalendarHandler) BlockedDays(w http.ResponseWriter, r *http.Request) {
	days, err := h.calendar.BlockedDays(r.Context())
	if err != nil {
		ServiceError(w, err)
		return
	}
	JSON(w, http.StatusOK, days)
}
