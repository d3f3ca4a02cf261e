package lifecycle

import (
	"context"
	"log/slog"

	"github.com/dmatos-dev/plantrack/internal/domain"
	"github.com/dmatos-dev/plantrack/internal/store"
)

// onTaskCompleted folds a completed task into its sprint: bump the
// denormalized counters, and when no PLANNED or IN_PROGRESS task remains,
// close the sprint and activate the lowest-numbered PLANNED one. Runs inside
// the completion transaction so the counters can never drift from the task
// row.
func (s *Service) onTaskCompleted(ctx context.Context, tx store.Store, sprintID int64, actualHours float64) error {
	sprint, err := getSprint(ctx, tx, sprintID)
	if err != nil {
		return err
	}

	sprint.CompletedSessions++
	sprint.ActualHours += actualHours
	if err := tx.Sprints().Save(ctx, sprint); err != nil {
		return err
	}

	planned, err := tx.Tasks().CountBySprintAndStatus(ctx, sprintID, domain.TaskPlanned)
	if err != nil {
		return err
	}
	inProgress, err := tx.Tasks().CountBySprintAndStatus(ctx, sprintID, domain.TaskInProgress)
	if err != nil {
		return err
	}

	if planned+inProgress > 0 {
		return nil
	}

	sprint.Status = domain.SprintCompleted
	if err := tx.Sprints().Save(ctx, sprint); err != nil {
		return err
	}
	slog.Info("sprint completed", "sprint", sprint.SprintNumber,
		"sessions", sprint.CompletedSessions, "actual_hours", sprint.ActualHours)

	next, err := tx.Sprints().GetFirstPlannedOrderedBySequence(ctx)
	if err != nil {
		return err
	}
	if next == nil {
		// No planned sprint left: end of the project plan.
		return nil
	}
	next.Status = domain.SprintActive
	if err := tx.Sprints().Save(ctx, next); err != nil {
		return err
	}
	slog.Info("sprint activated", "sprint", next.SprintNumber, "after", sprint.SprintNumber)
	return nil
}
