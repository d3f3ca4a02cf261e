package api

import (
	"net/http"

	"github.com/dmatos-dev/plantrack/internal/domain"
	"github.com/dmatos-dev/plantrack/internal/lifecycle"
	"github.com/dmatos-dev/plantrack/internal/progress"
	"github.com/go-chi/chi/v5"
)

// SprintHandler handles sprint endpoints.
type SprintHandler struct {
	lifecycle *lifecycle.Service
	progress  *progress.Aggregator
}

// NewSprintHandler creates a sprint handler.
func NewSprintHandler(lc *lifecycle.Service, agg *progress.Aggregator) *SprintHandler {
	return &SprintHandler{lifecycle: lc, progress: agg}
}

// RegisterRoutes registers sprint routes.
func (h *SprintHandler) RegisterRoutes(r chi.Router) {
	r.Route("/v1/sprints", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/active", h.Active)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.ByID)
			r.Get("/progress", h.Progress)
			r.Patch("/", h.Patch)
		})
	})
}

// List returns every sprint in sequence order.
func (h *SprintHandler) List(w http.ResponseWriter, r *http.Request) {
	sprints, err := h.progress.ListSprints(r.Context())
	if err != nil {
		ServiceError(w, err)
		return
	}
	JSON(w, http.StatusOK, sprints)
}

// Active returns the active sprint, or the first planned one when nothing is
// active yet.
func (h *SprintHandler) Active(w http.ResponseWriter, r *http.Request) {
	sprint, err := h.progress.ActiveSprint(r.Context())
	if err != nil {
		ServiceError(w, err)
		return
	}
	JSON(w, http.StatusOK, sprint)
}

// ByID returns one sprint with progress figures.
func (h *SprintHandler) ByID(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid sprint id")
		return
	}
	sprint, err := h.progress.SprintByID(r.Context(), id)
	if err != nil {
		ServiceError(w, err)
		return
	}
	JSON(w, http.StatusOK, sprint)
}

// Progress returns the per-status task breakdown of one sprint.
func (h *SprintHandler) Progress(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid sprint id")
		return
	}
	breakdown, err := h.progress.SprintProgress(r.Context(), id)
	if err != nil {
		ServiceError(w, err)
		return
	}
	JSON(w, http.StatusOK, breakdown)
}

// Patch applies a partial update to a sprint.
func (h *SprintHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid sprint id")
		return
	}
	var upd domain.SprintUpdate
	if err := decodeBody(r, &upd); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if upd.Status != nil && !upd.Status.Valid() {
		Error(w, http.StatusBadRequest, "invalid status: "+string(*upd.Status))
		return
	}
	sprint, err := h.lifecycle.UpdateSprint(r.Context(), id, &upd)
	if err != nil {
		ServiceError(w, err)
		return
	}
	JSON(w, http.StatusOK, sprint)
}
