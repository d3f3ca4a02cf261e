package api

import (
	"net/http"

	"github.com/dmatos-dev/plantrack/internal/prompt"
	"github.com/go-chi/chi/v5"
)

// PromptHandler handles session briefing endpoints.
type PromptHandler struct {
	prompts *prompt.Builder
}

// NewPromptHandler creates a prompt handler.
func NewPromptHandler(pb *prompt.Builder) *PromptHandler {
	return &PromptHandler{prompts: pb}
}

// RegisterRoutes registers prompt routes.
func (h *PromptHandler) RegisterRoutes(r chi.Router) {
	r.Get("/v1/prompts/today", h.Today)
	r.Get("/v1/prompts/context", h.Context)
}

// Today renders the briefing for today's session.
func (h *PromptHandler) Today(w http.ResponseWriter, r *http.Request) {
	p, err := h.prompts.ForToday(r.Context())
	if err != nil {
		ServiceError(w, err)
		return
	}
	JSON(w, http.StatusOK, p)
}

// Context returns the fixed project briefing block.
func (h *PromptHandler) Context(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"context": h.prompts.ProjectContext()})
}
