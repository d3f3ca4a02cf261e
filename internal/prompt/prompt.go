// Package prompt renders the session briefing text handed to the developer
// at the start of a work session.
package prompt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmatos-dev/plantrack/internal/domain"
	"github.com/dmatos-dev/plantrack/internal/store"
)

// Builder assembles prompts from a task, its sprint and recent history.
type Builder struct {
	store          store.Store
	projectContext string
	totalSessions  int
	now            func() time.Time
}

// New creates a builder. projectContext is the fixed project briefing block
// included in every prompt; totalSessions is the project-wide session count.
func New(st store.Store, projectContext string, totalSessions int) *Builder {
	return &Builder{
		store:          st,
		projectContext: projectContext,
		totalSessions:  totalSessions,
		now:            time.Now,
	}
}

// Prompt is a rendered session briefing.
type Prompt struct {
	TaskID   int64  `json:"taskId,omitempty"`
	TaskCode string `json:"taskCode,omitempty"`
	Title    string `json:"title,omitempty"`
	Prompt   string `json:"prompt"`
}

// ForTask renders the briefing for a specific task.
func (b *Builder) ForTask(ctx context.Context, taskID int64) (*Prompt, error) {
	task, err := b.store.Tasks().GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("task %d: %w", taskID, domain.ErrNotFound)
	}
	return b.build(ctx, task)
}

// ForToday renders the briefing for today's task, falling back to the next
// upcoming planned one. With no candidate it returns a placeholder prompt
// rather than an error.
func (b *Builder) ForToday(ctx context.Context) (*Prompt, error) {
	today := domain.DateOf(b.now())
	task, err := b.store.Tasks().GetBySessionDate(ctx, today)
	if err != nil {
		return nil, err
	}
	if task == nil {
		upcoming, err := b.store.Tasks().GetPlannedFrom(ctx, today)
		if err != nil {
			return nil, err
		}
		if len(upcoming) > 0 {
			task = upcoming[0]
		}
	}
	if task == nil {
		return &Prompt{Prompt: "No task scheduled for today."}, nil
	}
	return b.build(ctx, task)
}

// ProjectContext returns the fixed project briefing block.
func (b *Builder) ProjectContext() string {
	return b.projectContext
}

func (b *Builder) build(ctx context.Context, task *domain.Task) (*Prompt, error) {
	sprint, err := b.store.Sprints().GetByID(ctx, task.SprintID)
	if err != nil {
		return nil, err
	}
	if sprint == nil {
		return nil, fmt.Errorf("sprint %d: %w", task.SprintID, domain.ErrNotFound)
	}

	totalCompleted, err := b.store.Tasks().CountByStatus(ctx, domain.TaskCompleted)
	if err != nil {
		return nil, err
	}
	recent, err := b.store.Tasks().GetCompletedMostRecent(ctx, 3)
	if err != nil {
		return nil, err
	}

	var recentLines strings.Builder
	for _, t := range recent {
		fmt.Fprintf(&recentLines, "  - %s: %s\n", t.TaskCode, t.Title)
	}
	var deliverableLines strings.Builder
	for _, d := range task.Deliverables {
		fmt.Fprintf(&deliverableLines, "  * %s\n", d)
	}
	var validationLines strings.Builder
	for _, v := range task.ValidationCriteria {
		fmt.Fprintf(&validationLines, "  + %s\n", v)
	}

	progressPct := 0
	if sprint.TotalSessions > 0 {
		progressPct = sprint.CompletedSessions * 100 / sprint.TotalSessions
	}

	text := fmt.Sprintf(`===========================================
Development Session
Sprint %d: %s | %s | %s
Session %d of %d | %.1fh (%s)
===========================================

PROJECT CONTEXT:
%s

SPRINT %d STATUS:
- Focus: %s
- Progress: %d/%d sessions (%d%%)
- Recently completed:
%s
TODAY'S TASK: %s
%s

DELIVERABLES:
%s
VALIDATION:
%s
Coverage target: %s

DELIVERY RULES:
1. Production-quality code only
2. Unit tests for all new code
3. Integration tests where applicable
4. Follow existing patterns and conventions
`,
		sprint.SprintNumber, sprint.Name, task.TaskCode,
		task.SessionDate.Format("02/01/2006"),
		totalCompleted+1, b.totalSessions, task.PlannedHours, task.DayOfWeek,
		b.projectContext,
		sprint.SprintNumber, sprint.Focus,
		sprint.CompletedSessions, sprint.TotalSessions, progressPct,
		recentLines.String(),
		task.Title, task.Description,
		deliverableLines.String(), validationLines.String(),
		task.CoverageTarget,
	)

	return &Prompt{
		TaskID:   task.ID,
		TaskCode: task.TaskCode,
		Title:    task.Title,
		Prompt:   text,
	}, nil
}
