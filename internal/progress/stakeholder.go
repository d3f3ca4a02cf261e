package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/dmatos-dev/plantrack/internal/domain"
)

// StakeholderSprint is the external-facing view of one sprint.
type StakeholderSprint struct {
	Number            int       `json:"number"`
	Name              string    `json:"name"`
	NameEn            string    `json:"nameEn"`
	Progress          float64   `json:"progress"`
	Status            string    `json:"status"`
	StartDate         time.Time `json:"startDate"`
	EndDate           time.Time `json:"endDate"`
	Sessions          int       `json:"sessions"`
	CompletedSessions int       `json:"completedSessions"`
	Hours             int       `json:"hours"`
	HoursSpent        float64   `json:"hoursSpent"`
	Color             string    `json:"color,omitempty"`
	Focus             string    `json:"focus,omitempty"`
}

// Milestone marks a delivery checkpoint derived from sprint end dates.
type Milestone struct {
	Name       string    `json:"name"`
	TargetDate time.Time `json:"targetDate"`
	Status     string    `json:"status"`
}

// WeeklyActivity summarizes the current week for stakeholders.
type WeeklyActivity struct {
	SessionsThisWeek       int     `json:"sessionsThisWeek"`
	HoursThisWeek          float64 `json:"hoursThisWeek"`
	TasksCompletedThisWeek int     `json:"tasksCompletedThisWeek"`
}

// StakeholderDashboard is the external progress view.
type StakeholderDashboard struct {
	ProjectName       string              `json:"projectName"`
	Client            string              `json:"client"`
	OverallProgress   float64             `json:"overallProgress"`
	TotalSessions     int                 `json:"totalSessions"`
	CompletedSessions int                 `json:"completedSessions"`
	TotalHoursPlanned int                 `json:"totalHoursPlanned"`
	TotalHoursSpent   float64             `json:"totalHoursSpent"`
	StartDate         time.Time           `json:"startDate"`
	TargetDate        time.Time           `json:"targetDate"`
	DaysRemaining     int                 `json:"daysRemaining"`
	Sprints           []StakeholderSprint `json:"sprints"`
	Milestones        []Milestone         `json:"milestones"`
	WeeklyActivity    WeeklyActivity      `json:"weeklyActivity"`
	LastUpdated       time.Time           `json:"lastUpdated"`
}

// StakeholderDashboard assembles the external progress view.
func (a *Aggregator) StakeholderDashboard(ctx context.Context) (*StakeholderDashboard, error) {
	completed, err := a.store.Tasks().CountByStatus(ctx, domain.TaskCompleted)
	if err != nil {
		return nil, err
	}
	hoursSpent, err := a.store.Tasks().SumActualHoursOfCompleted(ctx)
	if err != nil {
		return nil, err
	}

	now := a.now()
	daysRemaining := int(a.cfg.TargetDate.Sub(domain.DateOf(now)).Hours() / 24)

	d := &StakeholderDashboard{
		ProjectName:       a.cfg.ProjectName,
		Client:            a.cfg.Client,
		OverallProgress:   domain.ProgressPercent(completed, a.cfg.TotalSessions),
		TotalSessions:     a.cfg.TotalSessions,
		CompletedSessions: completed,
		TotalHoursPlanned: a.cfg.TotalHoursPlanned,
		TotalHoursSpent:   hoursSpent,
		StartDate:         a.cfg.StartDate,
		TargetDate:        a.cfg.TargetDate,
		DaysRemaining:     max(0, daysRemaining),
		LastUpdated:       now,
	}

	sprints, err := a.store.Sprints().GetAllOrderedBySequence(ctx)
	if err != nil {
		return nil, err
	}
	for _, sprint := range sprints {
		d.Sprints = append(d.Sprints, StakeholderSprint{
			Number:            sprint.SprintNumber,
			Name:              sprint.Name,
			NameEn:            sprint.NameEn,
			Progress:          sprint.ProgressPercent(),
			Status:            string(sprint.Status),
			StartDate:         sprint.StartDate,
			EndDate:           sprint.EndDate,
			Sessions:          sprint.TotalSessions,
			CompletedSessions: sprint.CompletedSessions,
			Hours:             sprint.TotalHours,
			HoursSpent:        sprint.ActualHours,
			Color:             sprint.Color,
			Focus:             sprint.Focus,
		})

		d.Milestones = append(d.Milestones, Milestone{
			Name:       fmt.Sprintf("Sprint %d Complete", sprint.SprintNumber),
			TargetDate: sprint.EndDate,
			Status:     milestoneStatus(sprint.Status),
		})
	}

	goLive := "FUTURE"
	if daysRemaining <= 0 {
		goLive = "COMPLETED"
	}
	d.Milestones = append(d.Milestones, Milestone{
		Name:       "Go-Live",
		TargetDate: a.cfg.TargetDate,
		Status:     goLive,
	})

	week, tasks, err := a.weekProgress(ctx)
	if err != nil {
		return nil, err
	}
	d.WeeklyActivity = WeeklyActivity{
		SessionsThisWeek:       len(tasks),
		HoursThisWeek:          week.WeekHoursSpent,
		TasksCompletedThisWeek: week.WeekCompleted,
	}

	return d, nil
}

func milestoneStatus(s domain.SprintStatus) string {
	switch s {
	case domain.SprintCompleted:
		return "COMPLETED"
	case domain.SprintActive:
		return "IN_PROGRESS"
	default:
		return "FUTURE"
	}
}
