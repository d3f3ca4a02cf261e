package api

import (
	"net/http"

	"github.com/dmatos-dev/plantrack/internal/progress"
	"github.com/go-chi/chi/v5"
)

// DashboardHandler handles the developer and stakeholder dashboard endpoints.
type DashboardHandler struct {
	progress *progress.Aggregator
}

// NewDashboardHandler creates a dashboard handler.
func NewDashboardHandler(agg *progress.Aggregator) *DashboardHandler {
	return &DashboardHandler{progress: agg}
}

// RegisterRoutes registers dashboard routes.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/v1/dashboard", h.Developer)
	r.Get("/v1/stakeholder/dashboard", h.Stakeholder)
}

// Developer returns the internal progress dashboard.
func (h *DashboardHandler) Developer(w http.ResponseWriter, r *http.Request) {
	d, err := h.progress.Dashboard(r.Context())
	if err != nil {
		ServiceError(w, err)
		return
	}
	JSON(w, http.StatusOK, d)
}

// Stakeholder returns the external progress view.
func (h *DashboardHandler) Stakeholder(w http.ResponseWriter, r *http.Request) {
	d, err := h.progress.StakeholderDashboard(r.Context())
	if err != nil {
		ServiceError(w, err)
		return
	}
	JSON(w, http.StatusOK, d)
}
