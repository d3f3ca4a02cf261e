package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dmatos-dev/plantrack/internal/domain"
	"github.com/dmatos-dev/plantrack/internal/lifecycle"
	"github.com/dmatos-dev/plantrack/internal/progress"
	"github.com/dmatos-dev/plantrack/internal/prompt"
	"github.com/dmatos-dev/plantrack/internal/store"
	"github.com/go-chi/chi/v5"
)

const defaultPageSize = 50

// TaskHandler handles task endpoints.
type TaskHandler struct {
	lifecycle *lifecycle.Service
	progress  *progress.Aggregator
	prompts   *prompt.Builder
}

// NewTaskHandler creates a task handler.
func NewTaskHandler(lc *lifecycle.Service, agg *progress.Aggregator, pb *prompt.Builder) *TaskHandler {
	return &TaskHandler{lifecycle: lc, progress: agg, prompts: pb}
}

// RegisterRoutes registers task routes.
func (h *TaskHandler) RegisterRoutes(r chi.Router) {
	r.Route("/v1/tasks", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/today", h.Today)
		r.Get("/next", h.Next)
		r.Get("/code/{code}", h.ByCode)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.ByID)
			r.Patch("/", h.Patch)
			r.Post("/start", h.Start)
			r.Post("/complete", h.Complete)
			r.Post("/block", h.Block)
			r.Post("/skip", h.Skip)
			r.Post("/notes", h.AddNote)
			r.Post("/executions", h.LogExecution)
			r.Get("/prompt", h.Prompt)
		})
	})
}

// List returns a filtered page of tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := taskFilterFromQuery(r)
	if err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	tasks, total, err := h.progress.ListTasks(r.Context(), filter)
	if err != nil {
		ServiceError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"items":  tasks,
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

func taskFilterFromQuery(r *http.Request) (store.TaskFilter, error) {
	filter := store.TaskFilter{Limit: defaultPageSize}
	q := r.URL.Query()

	if v := q.Get("sprint"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, err
		}
		filter.SprintID = &id
	}
	if v := q.Get("status"); v != "" {
		status := domain.TaskStatus(v)
		if !status.Valid() {
			return filter, fmt.Errorf("invalid status: %s", v)
		}
		filter.Status = &status
	}
	if v := q.Get("from"); v != "" {
		from, err := time.Parse(time.DateOnly, v)
		if err != nil {
			return filter, err
		}
		filter.From = &from
	}
	if v := q.Get("to"); v != "" {
		to, err := time.Parse(time.DateOnly, v)
		if err != nil {
			return filter, err
		}
		filter.To = &to
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return filter, err
		}
		if limit > 0 {
			filter.Limit = limit
		}
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			return filter, err
		}
		if offset > 0 {
			filter.Offset = offset
		}
	}
	return filter, nil
}

// ByID returns one task with its notes and execution log.
func (h *TaskHandler) ByID(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid task id")
		return
	}
	task, err := h.progress.TaskByID(r.Context(), id)
	if err != nil {
		ServiceError(w, err)
		return
	}
	JSON(w, http.StatusOK, task)
}

// ByCode returns one task looked up by its short code.
func (h *TaskHandler) ByCode(w http.ResponseWriter, r *http.Request) {
	task, err := h.progress.TaskByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		ServiceError(w, err)
		return
	}
	JSON(w, http.StatusOK, task)
}

// Today returns the task scheduled for today, falling back to the next
// upcoming planned task.
func (h *TaskHandler) Today(w http.ResponseWriter, r *http.Request) {
	task, err := h.progress.TodayTask(r.Context())
	if err != nil {
		ServiceError(w, err)
		return
	}
	if task == nil {
		Error(w, http.StatusNotFound, "no task scheduled")
		return
	}
	JSON(w, http.StatusOK, task)
}

// Next returns the earliest planned task in the backlog.
func (h *TaskHandler) Next(w http.ResponseWriter, r *http.Request) {
	task, err := h.progress.NextTask(r.Context())
	if err != nil {
		ServiceError(w, err)
		return
	}
	if task == nil {
		Error(w, http.StatusNotFound, "no planned task remaining")
		return
	}
	JSON(w, http.StatusOK, task)
}

// Patch applies a partial update to a task without changing its status.
func (h *TaskHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid task id")
		return
	}
	var upd domain.TaskUpdate
	if err := decodeBody(r, &upd); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	task, err := h.lifecycle.Update(r.Context(), id, &upd)
	if err != nil {
		ServiceError(w, err)
		return
	}
	JSON(w, http.StatusOK, task)
}

// Start moves a task to IN_PROGRESS.
func (h *TaskHandler) Start(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid task id")
		return
	}
	task, err := h.lifecycle.Start(r.Context(), id)
	if err != nil {
		ServiceError(w, err)
		return
	}
	JSON(w, http.StatusOK, task)
}

// Complete moves a task to COMPLETED. The optional body carries actual hours
// and completion notes; omitted hours default to the planned hours.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid task id")
		return
	}
	var upd domain.TaskUpdate
	if err := decodeBody(r, &upd); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	task, err := h.lifecycle.Complete(r.Context(), id, &upd)
	if err != nil {
		ServiceError(w, err)
		return
	}
	JSON(w, http.StatusOK, task)
}

// Block moves a task to BLOCKED with a reason.
func (h *TaskHandler) Block(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid task id")
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := decodeBody(r, &body); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	task, err := h.lifecycle.Block(r.Context(), id, body.Reason)
	if err != nil {
		ServiceError(w, err)
		return
	}
	JSON(w, http.StatusOK, task)
}

// Skip moves a task to SKIPPED.
func (h *TaskHandler) Skip(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid task id")
		return
	}
	task, err := h.lifecycle.Skip(r.Context(), id)
	if err != nil {
		ServiceError(w, err)
		return
	}
	JSON(w, http.StatusOK, task)
}

// AddNote appends a note to a task.
func (h *TaskHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid task id")
		return
	}
	var note domain.TaskNote
	if err := decodeBody(r, &note); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if note.Content == "" {
		Error(w, http.StatusBadRequest, "content is required")
		return
	}
	saved, err := h.lifecycle.AddNote(r.Context(), id, &note)
	if err != nil {
		ServiceError(w, err)
		return
	}
	JSON(w, http.StatusCreated, saved)
}

// LogExecution appends a work-session log entry to a task.
func (h *TaskHandler) LogExecution(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid task id")
		return
	}
	var exec domain.TaskExecution
	if err := decodeBody(r, &exec); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	saved, err := h.lifecycle.LogExecution(r.Context(), id, &exec)
	if err != nil {
		ServiceError(w, err)
		return
	}
	JSON(w, http.StatusCreated, saved)
}

// Prompt renders the session briefing for a task.
func (h *TaskHandler) Prompt(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid task id")
		return
	}
	p, err := h.prompts.ForTask(r.Context(), id)
	if err != nil {
		ServiceError(w, err)
		return
	}
	JSON(w, http.StatusOK, p)
}
