package api

import (
	"net/http"

	"github.com/dmatos-dev/plantrack/internal/report"
	"github.com/go-chi/chi/v5"
)

// ReportHandler handles sprint report endpoints.
type ReportHandler struct {
	reports *report.Generator
}

// NewReportHandler creates a report handler.
func NewReportHandler(g *report.Generator) *ReportHandler {
	return &ReportHandler{reports: g}
}

// RegisterRoutes registers report routes.
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Route("/v1/reports", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/sprint/{id}", h.LatestForSprint)
		r.Post("/sprint/{id}", h.Generate)
		r.Get("/{id}", h.ByID)
	})
}

// List returns every report, newest first.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reports.List(r.Context())
	if err != nil {
		ServiceError(w, err)
		return
	}
	JSON(w, http.StatusOK, reports)
}

// ByID returns one report.
func (h *ReportHandler) ByID(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid report id")
		return
	}
	rep, err := h.reports.ByID(r.Context(), id)
	if err != nil {
		ServiceError(w, err)
		return
	}
	JSON(w, http.StatusOK, rep)
}

// LatestForSprint returns the newest report of a sprint.
func (h *ReportHandler) LatestForSprint(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid sprint id")
		return
	}
	rep, err := h.reports.LatestForSprint(r.Context(), id)
	if err != nil {
		ServiceError(w, err)
		return
	}
	JSON(w, http.StatusOK, rep)
}

// Generate snapshots a sprint's current metrics into a new report.
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid sprint id")
		return
	}
	rep, err := h.reports.Generate(r.Context(), id)
	if err != nil {
		ServiceError(w, err)
		return
	}
	JSON(w, http.StatusCreated, rep)
}
