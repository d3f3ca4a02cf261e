// Package seed loads the pre-planned delivery schedule into an empty store.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dmatos-dev/plantrack/internal/domain"
	"github.com/dmatos-dev/plantrack/internal/store"
)

// planFile is the on-disk layout of a delivery plan.
type planFile struct {
	Sprints     []planSprint     `json:"sprints"`
	Tasks       []planTask       `json:"tasks"`
	BlockedDays []planBlockedDay `json:"blockedDays"`
}

type planSprint struct {
	Number        int    `json:"number"`
	Name          string `json:"name"`
	NameEn        string `json:"nameEn"`
	Description   string `json:"description"`
	Weeks         int    `json:"weeks"`
	TotalHours    int    `json:"totalHours"`
	TotalSessions int    `json:"totalSessions"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
	Focus         string `json:"focus"`
	Color         string `json:"color"`
}

type planTask struct {
	Sprint             int      `json:"sprint"`
	Code               string   `json:"code"`
	Date               string   `json:"date"`
	PlannedHours       float64  `json:"plannedHours"`
	Title              string   `json:"title"`
	TitleEn            string   `json:"titleEn"`
	Description        string   `json:"description"`
	Deliverables       []string `json:"deliverables"`
	ValidationCriteria []string `json:"validationCriteria"`
	CoverageTarget     string   `json:"coverageTarget"`
	PromptTemplate     string   `json:"promptTemplate"`
}

type planBlockedDay struct {
	Date      string  `json:"date"`
	Type      string  `json:"type"`
	Reason    string  `json:"reason"`
	HoursLost float64 `json:"hoursLost"`
}

// Loader bulk-loads a plan file into the store.
type Loader struct {
	store store.Store
}

// New creates a loader backed by st.
func New(st store.Store) *Loader {
	return &Loader{store: st}
}

// Load reads the plan at path and inserts sprints, tasks and blocked days.
// It is idempotent: if any task already exists the load is skipped, so the
// server can run it unconditionally at startup.
func (l *Loader) Load(ctx context.Context, path string) error {
	existing, err := l.store.Tasks().Count(ctx)
	if err != nil {
		return err
	}
	if existing > 0 {
		slog.Info("plan already loaded, skipping seed", "tasks", existing)
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read plan file: %w", err)
	}
	var plan planFile
	if err := json.Unmarshal(data, &plan); err != nil {
		return fmt.Errorf("parse plan file: %w", err)
	}

	return l.store.InTransaction(ctx, func(tx store.Store) error {
		sprintIDs := make(map[int]int64, len(plan.Sprints))
		sprintStarts := make(map[int]time.Time, len(plan.Sprints))

		for _, ps := range plan.Sprints {
			startDate, err := time.Parse(time.DateOnly, ps.StartDate)
			if err != nil {
				return fmt.Errorf("sprint %d start date: %w", ps.Number, err)
			}
			endDate, err := time.Parse(time.DateOnly, ps.EndDate)
			if err != nil {
				return fmt.Errorf("sprint %d end date: %w", ps.Number, err)
			}

			sprint := &domain.Sprint{
				SprintNumber:  ps.Number,
				Name:          ps.Name,
				NameEn:        ps.NameEn,
				Description:   ps.Description,
				Weeks:         ps.Weeks,
				TotalHours:    ps.TotalHours,
				TotalSessions: ps.TotalSessions,
				StartDate:     startDate,
				EndDate:       endDate,
				Focus:         ps.Focus,
				Color:         ps.Color,
				Status:        domain.SprintPlanned,
			}
			if err := tx.Sprints().Save(ctx, sprint); err != nil {
				return err
			}
			sprintIDs[ps.Number] = sprint.ID
			sprintStarts[ps.Number] = startDate
		}

		sortOrder := 0
		for _, pt := range plan.Tasks {
			sprintID, ok := sprintIDs[pt.Sprint]
			if !ok {
				return fmt.Errorf("task %s references unknown sprint %d", pt.Code, pt.Sprint)
			}
			date, err := time.Parse(time.DateOnly, pt.Date)
			if err != nil {
				return fmt.Errorf("task %s date: %w", pt.Code, err)
			}

			sortOrder++
			weekNumber := int(date.Sub(sprintStarts[pt.Sprint]).Hours()/(24*7)) + 1

			task := &domain.Task{
				SprintID:           sprintID,
				TaskCode:           pt.Code,
				SessionDate:        date,
				DayOfWeek:          domain.WeekdayAbbrev(date),
				WeekNumber:         weekNumber,
				PlannedHours:       pt.PlannedHours,
				Title:              pt.Title,
				TitleEn:            pt.TitleEn,
				Description:        pt.Description,
				Deliverables:       pt.Deliverables,
				ValidationCriteria: pt.ValidationCriteria,
				CoverageTarget:     pt.CoverageTarget,
				PromptTemplate:     pt.PromptTemplate,
				Status:             domain.TaskPlanned,
				SortOrder:          sortOrder,
			}
			if err := tx.Tasks().Save(ctx, task); err != nil {
				return err
			}
		}

		for _, pb := range plan.BlockedDays {
			date, err := time.Parse(time.DateOnly, pb.Date)
			if err != nil {
				return fmt.Errorf("blocked day %s: %w", pb.Date, err)
			}
			day := &domain.BlockedDay{
				BlockedDate: date,
				BlockType:   domain.BlockType(pb.Type),
				Reason:      pb.Reason,
				HoursLost:   pb.HoursLost,
			}
			if err := tx.BlockedDays().Save(ctx, day); err != nil {
				return err
			}
		}

		slog.Info("plan loaded",
			"sprints", len(plan.Sprints),
			"tasks", len(plan.Tasks),
			"blocked_days", len(plan.BlockedDays))
		return nil
	})
}
