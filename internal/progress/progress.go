// Package progress computes read-only progress views over the plan. Nothing
// here mutates state; every result is a snapshot and may be stale by the
// time it reaches the caller.
package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/dmatos-dev/plantrack/internal/domain"
	"github.com/dmatos-dev/plantrack/internal/store"
)

// Config carries the project-wide planning constants. Global totals are
// fixed configuration, not derived from the sprint collection, so a scope
// change must be reflected here rather than silently recomputed.
type Config struct {
	ProjectName       string
	Client            string
	TotalSessions     int
	TotalHoursPlanned int
	StartDate         time.Time
	TargetDate        time.Time
}

// Aggregator computes progress figures against the stores.
type Aggregator struct {
	store store.Store
	cfg   Config
	now   func() time.Time
}

// New creates an aggregator with the given project constants.
func New(st store.Store, cfg Config) *Aggregator {
	return &Aggregator{store: st, cfg: cfg, now: time.Now}
}

// SprintView is a sprint enriched with its progress figures.
type SprintView struct {
	domain.Sprint
	ProgressPercent float64 `json:"progressPercent"`
	TaskCount       int     `json:"taskCount"`
}

func (a *Aggregator) sprintView(ctx context.Context, sprint *domain.Sprint) (*SprintView, error) {
	tasks, err := a.store.Tasks().GetBySprint(ctx, sprint.ID)
	if err != nil {
		return nil, err
	}
	return &SprintView{
		Sprint:          *sprint,
		ProgressPercent: sprint.ProgressPercent(),
		TaskCount:       len(tasks),
	}, nil
}

// ListSprints returns every sprint in sequence order with progress figures.
func (a *Aggregator) ListSprints(ctx context.Context) ([]*SprintView, error) {
	sprints, err := a.store.Sprints().GetAllOrderedBySequence(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]*SprintView, 0, len(sprints))
	for _, sprint := range sprints {
		view, err := a.sprintView(ctx, sprint)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// SprintByID returns one sprint with progress figures.
func (a *Aggregator) SprintByID(ctx context.Context, id int64) (*SprintView, error) {
	sprint, err := a.store.Sprints().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sprint == nil {
		return nil, fmt.Errorf("sprint %d: %w", id, domain.ErrNotFound)
	}
	return a.sprintView(ctx, sprint)
}

// ActiveSprint returns the ACTIVE sprint, falling back to the first PLANNED
// one when nothing is active yet.
func (a *Aggregator) ActiveSprint(ctx context.Context) (*SprintView, error) {
	sprint, err := a.store.Sprints().GetCurrentlyActive(ctx)
	if err != nil {
		return nil, err
	}
	if sprint == nil {
		sprint, err = a.store.Sprints().GetFirstPlannedOrderedBySequence(ctx)
		if err != nil {
			return nil, err
		}
	}
	if sprint == nil {
		return nil, fmt.Errorf("active sprint: %w", domain.ErrNotFound)
	}
	return a.sprintView(ctx, sprint)
}

// SprintBreakdown is the per-status task count detail of one sprint.
type SprintBreakdown struct {
	SprintNumber      int     `json:"sprintNumber"`
	Name              string  `json:"name"`
	TotalSessions     int     `json:"totalSessions"`
	CompletedSessions int     `json:"completedSessions"`
	TotalHours        int     `json:"totalHours"`
	ActualHours       float64 `json:"actualHours"`
	ProgressPercent   float64 `json:"progressPercent"`
	PlannedTasks      int     `json:"plannedTasks"`
	InProgressTasks   int     `json:"inProgressTasks"`
	CompletedTasks    int     `json:"completedTasks"`
	BlockedTasks      int     `json:"blockedTasks"`
	SkippedTasks      int     `json:"skippedTasks"`
}

// SprintProgress returns the status breakdown of one sprint. The progress
// percentage is computed from the live COMPLETED count, not the denormalized
// counter, so a drifted counter shows up here as a discrepancy.
func (a *Aggregator) SprintProgress(ctx context.Context, id int64) (*SprintBreakdown, error) {
	sprint, err := a.store.Sprints().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sprint == nil {
		return nil, fmt.Errorf("sprint %d: %w", id, domain.ErrNotFound)
	}

	counts := make(map[domain.TaskStatus]int, len(domain.TaskStatuses))
	for _, status := range domain.TaskStatuses {
		n, err := a.store.Tasks().CountBySprintAndStatus(ctx, id, status)
		if err != nil {
			return nil, err
		}
		counts[status] = n
	}

	return &SprintBreakdown{
		SprintNumber:      sprint.SprintNumber,
		Name:              sprint.Name,
		TotalSessions:     sprint.TotalSessions,
		CompletedSessions: sprint.CompletedSessions,
		TotalHours:        sprint.TotalHours,
		ActualHours:       sprint.ActualHours,
		ProgressPercent:   domain.ProgressPercent(counts[domain.TaskCompleted], sprint.TotalSessions),
		PlannedTasks:      counts[domain.TaskPlanned],
		InProgressTasks:   counts[domain.TaskInProgress],
		CompletedTasks:    counts[domain.TaskCompleted],
		BlockedTasks:      counts[domain.TaskBlocked],
		SkippedTasks:      counts[domain.TaskSkipped],
	}, nil
}

// TaskByID returns one task or ErrNotFound.
func (a *Aggregator) TaskByID(ctx context.Context, id int64) (*domain.Task, error) {
	task, err := a.store.Tasks().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("task %d: %w", id, domain.ErrNotFound)
	}
	return task, nil
}

// TaskByCode returns one task by short code or ErrNotFound.
func (a *Aggregator) TaskByCode(ctx context.Context, code string) (*domain.Task, error) {
	task, err := a.store.Tasks().GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("task %s: %w", code, domain.ErrNotFound)
	}
	return task, nil
}

// ListTasks returns a filtered page of tasks plus the total match count.
func (a *Aggregator) ListTasks(ctx context.Context, f store.TaskFilter) ([]*domain.Task, int, error) {
	return a.store.Tasks().GetFiltered(ctx, f)
}

// TodayTask returns the task dated today, or the earliest upcoming PLANNED
// task, or nil when the plan is exhausted.
func (a *Aggregator) TodayTask(ctx context.Context) (*domain.Task, error) {
	today := domain.DateOf(a.now())
	task, err := a.store.Tasks().GetBySessionDate(ctx, today)
	if err != nil || task != nil {
		return task, err
	}
	upcoming, err := a.store.Tasks().GetPlannedFrom(ctx, today)
	if err != nil {
		return nil, err
	}
	if len(upcoming) == 0 {
		return nil, nil
	}
	return upcoming[0], nil
}

// NextTask returns the earliest PLANNED task across the whole backlog, with
// no lower date bound, or nil when none remains.
func (a *Aggregator) NextTask(ctx context.Context) (*domain.Task, error) {
	planned, err := a.store.Tasks().GetAllPlanned(ctx)
	if err != nil {
		return nil, err
	}
	if len(planned) == 0 {
		return nil, nil
	}
	return planned[0], nil
}

// RecentCompleted returns the limit most recently completed tasks.
func (a *Aggregator) RecentCompleted(ctx context.Context, limit int) ([]*domain.Task, error) {
	return a.store.Tasks().GetCompletedMostRecent(ctx, limit)
}

// WeekProgress summarizes the Monday-Sunday week containing today.
type WeekProgress struct {
	WeekTasks        int     `json:"weekTasks"`
	WeekCompleted    int     `json:"weekCompleted"`
	WeekHoursPlanned float64 `json:"weekHoursPlanned"`
	WeekHoursSpent   float64 `json:"weekHoursSpent"`
}

// weekProgress gathers the current week's tasks. The hours-spent figure sums
// every non-null actualHours in the window, whatever the task status; the
// original system behaves this way and downstream views depend on it.
func (a *Aggregator) weekProgress(ctx context.Context) (WeekProgress, []*domain.Task, error) {
	weekStart, weekEnd := domain.WeekWindow(a.now())
	tasks, err := a.store.Tasks().GetInDateRange(ctx, weekStart, weekEnd)
	if err != nil {
		return WeekProgress{}, nil, err
	}

	week := WeekProgress{WeekTasks: len(tasks)}
	for _, task := range tasks {
		if task.Status == domain.TaskCompleted {
			week.WeekCompleted++
		}
		week.WeekHoursPlanned += task.PlannedHours
		if task.ActualHours != nil {
			week.WeekHoursSpent += *task.ActualHours
		}
	}
	return week, tasks, nil
}

// SprintSummary is the compact per-sprint line of the dashboard.
type SprintSummary struct {
	SprintNumber int     `json:"sprintNumber"`
	Name         string  `json:"name"`
	Progress     float64 `json:"progress"`
	Status       string  `json:"status"`
	Color        string  `json:"color,omitempty"`
}

// Dashboard is the developer-facing progress view.
type Dashboard struct {
	ProjectProgress     float64              `json:"projectProgress"`
	TotalSessions       int                  `json:"totalSessions"`
	CompletedSessions   int                  `json:"completedSessions"`
	TotalHoursPlanned   int                  `json:"totalHoursPlanned"`
	TotalHoursSpent     float64              `json:"totalHoursSpent"`
	ActiveSprint        *SprintView          `json:"activeSprint,omitempty"`
	TodayTask           *domain.Task         `json:"todayTask,omitempty"`
	RecentTasks         []*domain.Task       `json:"recentTasks"`
	SprintSummaries     []SprintSummary      `json:"sprintSummaries"`
	UpcomingBlockedDays []*domain.BlockedDay `json:"upcomingBlockedDays"`
	WeekProgress        WeekProgress         `json:"weekProgress"`
}

// Dashboard assembles the developer dashboard.
func (a *Aggregator) Dashboard(ctx context.Context) (*Dashboard, error) {
	completed, err := a.store.Tasks().CountByStatus(ctx, domain.TaskCompleted)
	if err != nil {
		return nil, err
	}
	hoursSpent, err := a.store.Tasks().SumActualHoursOfCompleted(ctx)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		ProjectProgress:   domain.ProgressPercent(completed, a.cfg.TotalSessions),
		TotalSessions:     a.cfg.TotalSessions,
		CompletedSessions: completed,
		TotalHoursPlanned: a.cfg.TotalHoursPlanned,
		TotalHoursSpent:   hoursSpent,
	}

	active, err := a.store.Sprints().GetCurrentlyActive(ctx)
	if err != nil {
		return nil, err
	}
	if active != nil {
		view, err := a.sprintView(ctx, active)
		if err != nil {
			return nil, err
		}
		d.ActiveSprint = view
	}

	if d.TodayTask, err = a.TodayTask(ctx); err != nil {
		return nil, err
	}
	if d.RecentTasks, err = a.RecentCompleted(ctx, 5); err != nil {
		return nil, err
	}

	sprints, err := a.store.Sprints().GetAllOrderedBySequence(ctx)
	if err != nil {
		return nil, err
	}
	for _, sprint := range sprints {
		d.SprintSummaries = append(d.SprintSummaries, SprintSummary{
			SprintNumber: sprint.SprintNumber,
			Name:         sprint.Name,
			Progress:     sprint.ProgressPercent(),
			Status:       string(sprint.Status),
			Color:        sprint.Color,
		})
	}

	if d.UpcomingBlockedDays, err = a.store.BlockedDays().GetFrom(ctx, domain.DateOf(a.now())); err != nil {
		return nil, err
	}

	if d.WeekProgress, _, err = a.weekProgress(ctx); err != nil {
		return nil, err
	}
	return d, nil
}
