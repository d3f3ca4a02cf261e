// Package report generates and serves persisted sprint progress reports.
package report

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmatos-dev/plantrack/internal/domain"
	"github.com/dmatos-dev/plantrack/internal/store"
)

// Generator builds sprint-end reports from the live task counts.
type Generator struct {
	store store.Store
}

// New creates a generator backed by st.
func New(st store.Store) *Generator {
	return &Generator{store: st}
}

// Generate snapshots a sprint's metrics into a persisted report.
func (g *Generator) Generate(ctx context.Context, sprintID int64) (*domain.SprintReport, error) {
	sprint, err := g.store.Sprints().GetByID(ctx, sprintID)
	if err != nil {
		return nil, err
	}
	if sprint == nil {
		return nil, fmt.Errorf("sprint %d: %w", sprintID, domain.ErrNotFound)
	}

	completed, err := g.store.Tasks().CountBySprintAndStatus(ctx, sprintID, domain.TaskCompleted)
	if err != nil {
		return nil, err
	}
	blocked, err := g.store.Tasks().CountBySprintAndStatus(ctx, sprintID, domain.TaskBlocked)
	if err != nil {
		return nil, err
	}
	skipped, err := g.store.Tasks().CountBySprintAndStatus(ctx, sprintID, domain.TaskSkipped)
	if err != nil {
		return nil, err
	}

	progress := domain.ProgressPercent(completed, sprint.TotalSessions)

	metrics := map[string]any{
		"totalSessions":     sprint.TotalSessions,
		"completedSessions": completed,
		"blockedTasks":      blocked,
		"skippedTasks":      skipped,
		"totalHours":        sprint.TotalHours,
		"actualHours":       sprint.ActualHours,
		"progressPercent":   progress,
	}
	metricsJSON, err := json.Marshal(metrics)
	if err != nil {
		metricsJSON = []byte("{}")
	}

	report := &domain.SprintReport{
		SprintID:   sprint.ID,
		ReportType: domain.ReportSprintEnd,
		SummaryPt: fmt.Sprintf(
			"Sprint %d (%s): %d/%d sessões concluídas (%.1f%%). Horas: %.1f/%d. %d tarefas bloqueadas, %d ignoradas.",
			sprint.SprintNumber, sprint.Name, completed, sprint.TotalSessions,
			progress, sprint.ActualHours, sprint.TotalHours, blocked, skipped),
		SummaryEn: fmt.Sprintf(
			"Sprint %d (%s): %d/%d sessions completed (%.1f%%). Hours: %.1f/%d. %d blocked, %d skipped.",
			sprint.SprintNumber, sprint.NameEn, completed, sprint.TotalSessions,
			progress, sprint.ActualHours, sprint.TotalHours, blocked, skipped),
		MetricsJSON: string(metricsJSON),
	}

	if err := g.store.Reports().Save(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// List returns every report, newest first.
func (g *Generator) List(ctx context.Context) ([]*domain.SprintReport, error) {
	return g.store.Reports().GetAll(ctx)
}

// LatestForSprint returns the newest report of a sprint or ErrNotFound.
func (g *Generator) LatestForSprint(ctx context.Context, sprintID int64) (*domain.SprintReport, error) {
	reports, err := g.store.Reports().GetBySprint(ctx, sprintID)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, fmt.Errorf("report for sprint %d: %w", sprintID, domain.ErrNotFound)
	}
	return reports[0], nil
}

// ByID returns one report or ErrNotFound.
func (g *Generator) ByID(ctx context.Context, id int64) (*domain.SprintReport, error) {
	report, err := g.store.Reports().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, fmt.Errorf("report %d: %w", id, domain.ErrNotFound)
	}
	return report, nil
}
