// Package calendar materializes month grids combining tasks and blocked
// (non-working) days.
package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/dmatos-dev/plantrack/internal/domain"
	"github.com/dmatos-dev/plantrack/internal/store"
)

// Day is one materialized calendar day.
type Day struct {
	Date        time.Time    `json:"date"`
	DayOfWeek   string       `json:"dayOfWeek"`
	IsWorkDay   bool         `json:"isWorkDay"`
	IsBlocked   bool         `json:"isBlocked"`
	BlockReason string       `json:"blockReason,omitempty"`
	Task        *domain.Task `json:"task,omitempty"`
}

// Month is a full month grid, first to last day inclusive.
type Month struct {
	Year  int   `json:"year"`
	Month int   `json:"month"`
	Days  []Day `json:"days"`
}

// Materializer builds month views from the task and blocked-day collections.
// It is a pure read-side component.
type Materializer struct {
	store store.Store
}

// New creates a materializer backed by st.
func New(st store.Store) *Materializer {
	return &Materializer{store: st}
}

// Month builds the grid for the given year and 1-12 month. Each day carries
// its weekday abbreviation, the Saturday-rest work-day flag, the blocked-day
// reason if one exists, and at most one task matched by exact date.
func (m *Materializer) Month(ctx context.Context, year, month int) (*Month, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("month %d out of range", month)
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	tasks, err := m.store.Tasks().GetInDateRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	taskByDate := make(map[string]*domain.Task, len(tasks))
	for _, task := range tasks {
		taskByDate[task.SessionDate.Format(time.DateOnly)] = task
	}

	blockedDays, err := m.store.BlockedDays().GetInDateRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	blockedByDate := make(map[string]*domain.BlockedDay, len(blockedDays))
	for _, day := range blockedDays {
		blockedByDate[day.BlockedDate.Format(time.DateOnly)] = day
	}

	view := &Month{Year: year, Month: month}
	for date := from; !date.After(to); date = date.AddDate(0, 0, 1) {
		key := date.Format(time.DateOnly)
		day := Day{
			Date:      date,
			DayOfWeek: domain.WeekdayAbbrev(date),
			IsWorkDay: domain.IsWorkDay(date),
			Task:      taskByDate[key],
		}
		if blocked := blockedByDate[key]; blocked != nil {
			day.IsBlocked = true
			day.BlockReason = blocked.Reason
		}
		view.Days = append(view.Days, day)
	}

	return view, nil
}

// BlockedDays lists every blocked day on record.
func (m *Materializer) BlockedDays(ctx context.Context) ([]*domain.BlockedDay, error) {
	return m.store.BlockedDays().GetAll(ctx)
}
