// Package lifecycle owns the task state machine and its sprint side effects.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmatos-dev/plantrack/internal/domain"
	"github.com/dmatos-dev/plantrack/internal/store"
)

// Service applies lifecycle operations to tasks. The state machine is
// deliberately permissive: no operation checks the prior status, so a
// completed task can be re-started or skipped. This mirrors how the plan is
// actually corrected by hand when a session is re-run.
type Service struct {
	store store.Store
	now   func() time.Time
}

// New creates a lifecycle service backed by st.
func New(st store.Store) *Service {
	return &Service{store: st, now: time.Now}
}

func getTask(ctx context.Context, st store.Store, id int64) (*domain.Task, error) {
	task, err := st.Tasks().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("task %d: %w", id, domain.ErrNotFound)
	}
	return task, nil
}

func getSprint(ctx context.Context, st store.Store, id int64) (*domain.Sprint, error) {
	sprint, err := st.Sprints().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sprint == nil {
		return nil, fmt.Errorf("sprint %d: %w", id, domain.ErrNotFound)
	}
	return sprint, nil
}

// Start moves a task to IN_PROGRESS and stamps startedAt. Starting the first
// task of a PLANNED sprint promotes the sprint to ACTIVE.
func (s *Service) Start(ctx context.Context, id int64) (*domain.Task, error) {
	var task *domain.Task
	err := s.store.InTransaction(ctx, func(tx store.Store) error {
		var err error
		task, err = getTask(ctx, tx, id)
		if err != nil {
			return err
		}

		now := s.now()
		task.Status = domain.TaskInProgress
		task.StartedAt = &now
		if err := tx.Tasks().Save(ctx, task); err != nil {
			return err
		}

		sprint, err := getSprint(ctx, tx, task.SprintID)
		if err != nil {
			return err
		}
		if sprint.Status == domain.SprintPlanned {
			sprint.Status = domain.SprintActive
			if err := tx.Sprints().Save(ctx, sprint); err != nil {
				return err
			}
			slog.Info("sprint activated", "sprint", sprint.SprintNumber, "trigger", task.TaskCode)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("task started", "task", task.TaskCode)
	return task, nil
}

// Complete moves a task to COMPLETED and cascades into its sprint. The
// recorded hours default to the planned hours when the caller supplies none,
// so completion always yields a concrete actual-hours value. The task save
// and the sprint rollup commit or roll back as one unit.
func (s *Service) Complete(ctx context.Context, id int64, upd *domain.TaskUpdate) (*domain.Task, error) {
	var task *domain.Task
	err := s.store.InTransaction(ctx, func(tx store.Store) error {
		var err error
		task, err = getTask(ctx, tx, id)
		if err != nil {
			return err
		}

		now := s.now()
		task.Status = domain.TaskCompleted
		task.CompletedAt = &now

		if upd != nil && upd.ActualHours != nil {
			task.ActualHours = upd.ActualHours
		} else {
			hours := task.PlannedHours
			task.ActualHours = &hours
		}
		if upd != nil && upd.CompletionNotes != nil {
			task.CompletionNotes = *upd.CompletionNotes
		}

		if err := tx.Tasks().Save(ctx, task); err != nil {
			return err
		}
		return s.onTaskCompleted(ctx, tx, task.SprintID, *task.ActualHours)
	})
	if err != nil {
		return nil, err
	}
	slog.Info("task completed", "task", task.TaskCode, "actual_hours", *task.ActualHours)
	return task, nil
}

// Block moves a task to BLOCKED and records the blocker reason. It touches
// no sprint counters.
func (s *Service) Block(ctx context.Context, id int64, reason string) (*domain.Task, error) {
	task, err := getTask(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	task.Status = domain.TaskBlocked
	task.Blockers = reason
	if err := s.store.Tasks().Save(ctx, task); err != nil {
		return nil, err
	}
	slog.Info("task blocked", "task", task.TaskCode, "reason", reason)
	return task, nil
}

// Skip moves a task to SKIPPED. It records no hours and touches no sprint
// counters.
func (s *Service) Skip(ctx context.Context, id int64) (*domain.Task, error) {
	task, err := getTask(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	task.Status = domain.TaskSkipped
	if err := s.store.Tasks().Save(ctx, task); err != nil {
		return nil, err
	}
	slog.Info("task skipped", "task", task.TaskCode)
	return task, nil
}

// Update applies the non-nil fields of upd without changing status. Usable
// at any point in the lifecycle, including after completion.
func (s *Service) Update(ctx context.Context, id int64, upd *domain.TaskUpdate) (*domain.Task, error) {
	task, err := getTask(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if upd != nil {
		if upd.CompletionNotes != nil {
			task.CompletionNotes = *upd.CompletionNotes
		}
		if upd.Blockers != nil {
			task.Blockers = *upd.Blockers
		}
		if upd.ActualHours != nil {
			task.ActualHours = upd.ActualHours
		}
		if upd.Description != nil {
			task.Description = *upd.Description
		}
	}
	if err := s.store.Tasks().Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// AddNote appends a note to a task. The store fills in the INFO type and
// "developer" author when the caller leaves them empty.
func (s *Service) AddNote(ctx context.Context, id int64, note *domain.TaskNote) (*domain.TaskNote, error) {
	task, err := getTask(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	note.TaskID = task.ID
	if err := s.store.Tasks().AddNote(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// LogExecution appends a work-session log entry to a task.
func (s *Service) LogExecution(ctx context.Context, id int64, exec *domain.TaskExecution) (*domain.TaskExecution, error) {
	task, err := getTask(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	exec.TaskID = task.ID
	if exec.StartedAt.IsZero() {
		exec.StartedAt = s.now()
	}
	if err := s.store.Tasks().AddExecution(ctx, exec); err != nil {
		return nil, err
	}
	return exec, nil
}

// UpdateSprint applies the non-nil fields of upd to a sprint.
func (s *Service) UpdateSprint(ctx context.Context, id int64, upd *domain.SprintUpdate) (*domain.Sprint, error) {
	sprint, err := getSprint(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if upd != nil {
		if upd.Status != nil {
			sprint.Status = *upd.Status
		}
		if upd.CompletionNotes != nil {
			sprint.CompletionNotes = *upd.CompletionNotes
		}
	}
	if err := s.store.Sprints().Save(ctx, sprint); err != nil {
		return nil, err
	}
	return sprint, nil
}
