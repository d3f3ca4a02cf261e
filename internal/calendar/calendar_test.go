package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/dmatos-dev/plantrack/internal/domain"
	"github.com/dmatos-dev/plantrack/internal/store"
)

func newTestMaterializer(t *testing.T) (*Materializer, store.Store) {
	t.Helper()
	st, err := store.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return New(st), st
}

func seedSprint(t *testing.T, st store.Store) *domain.Sprint {
	t.Helper()
	sprint := &domain.Sprint{
		SprintNumber:  1,
		Name:          "Fase 1",
		NameEn:        "Phase 1",
		Weeks:         4,
		TotalHours:    80,
		TotalSessions: 24,
		StartDate:     time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2026, time.March, 29, 0, 0, 0, 0, time.UTC),
		Status:        domain.SprintActive,
	}
	if err := st.Sprints().Save(context.Background(), sprint); err != nil {
		t.Fatalf("save sprint: %v", err)
	}
	return sprint
}

func TestMonthGrid(t *testing.T) {
	m, st := newTestMaterializer(t)
	ctx := context.Background()
	sprint := seedSprint(t, st)

	taskDay := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	task := &domain.Task{
		SprintID:     sprint.ID,
		TaskCode:     "S1-D01",
		SessionDate:  taskDay,
		DayOfWeek:    "MON",
		WeekNumber:   1,
		PlannedHours: 3.5,
		Title:        "Kickoff",
		Status:       domain.TaskPlanned,
	}
	if err := st.Tasks().Save(ctx, task); err != nil {
		t.Fatalf("save task: %v", err)
	}

	if err := st.BlockedDays().Save(ctx, &domain.BlockedDay{
		BlockedDate: time.Date(2026, time.March, 23, 0, 0, 0, 0, time.UTC),
		BlockType:   domain.BlockHoliday,
		Reason:      "Southern Africa Liberation Day",
	}); err != nil {
		t.Fatalf("save blocked day: %v", err)
	}

	view, err := m.Month(ctx, 2026, 3)
	if err != nil {
		t.Fatalf("Month: %v", err)
	}

	if view.Year != 2026 || view.Month != 3 {
		t.Errorf("header = %d-%d", view.Year, view.Month)
	}
	if len(view.Days) != 31 {
		t.Fatalf("March has %d days in the grid, want 31", len(view.Days))
	}

	byDate := make(map[string]Day, len(view.Days))
	for _, d := range view.Days {
		byDate[d.Date.Format(time.DateOnly)] = d
	}

	first := byDate["2026-03-01"]
	if first.DayOfWeek != "SUN" || !first.IsWorkDay {
		t.Errorf("2026-03-01 = %+v, want SUN work day", first)
	}

	saturday := byDate["2026-03-07"]
	if saturday.DayOfWeek != "SAT" || saturday.IsWorkDay {
		t.Errorf("2026-03-07 = %+v, want SAT rest day", saturday)
	}

	withTask := byDate["2026-03-02"]
	if withTask.Task == nil || withTask.Task.TaskCode != "S1-D01" {
		t.Errorf("2026-03-02 task = %+v, want S1-D01", withTask.Task)
	}

	blocked := byDate["2026-03-23"]
	if !blocked.IsBlocked || blocked.BlockReason != "Southern Africa Liberation Day" {
		t.Errorf("2026-03-23 = %+v, want blocked with reason", blocked)
	}

	empty := byDate["2026-03-15"]
	if empty.Task != nil || empty.IsBlocked {
		t.Errorf("2026-03-15 = %+v, want plain day", empty)
	}
}

func TestMonthValidation(t *testing.T) {
	m, _ := newTestMaterializer(t)
	ctx := context.Background()

	for _, month := range []int{0, 13, -1} {
		if _, err := m.Month(ctx, 2026, month); err == nil {
			t.Errorf("Month(2026, %d) accepted, want error", month)
		}
	}
}

func TestMonthFebruaryLengths(t *testing.T) {
	m, _ := newTestMaterializer(t)
	ctx := context.Background()

	view, err := m.Month(ctx, 2028, 2)
	if err != nil {
		t.Fatalf("Month: %v", err)
	}
	if len(view.Days) != 29 {
		t.Errorf("Feb 2028 grid has %d days, want 29 (leap year)", len(view.Days))
	}

	view, err = m.Month(ctx, 2026, 2)
	if err != nil {
		t.Fatalf("Month: %v", err)
	}
	if len(view.Days) != 28 {
		t.Errorf("Feb 2026 grid has %d days, want 28", len(view.Days))
	}
}

func TestBlockedDaysList(t *testing.T) {
	m, st := newTestMaterializer(t)
	ctx := context.Background()

	dates := []time.Time{
		time.Date(2026, time.April, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 23, 0, 0, 0, 0, time.UTC),
	}
	for _, d := range dates {
		if err := st.BlockedDays().Save(ctx, &domain.BlockedDay{
			BlockedDate: d,
			BlockType:   domain.BlockHoliday,
			Reason:      "holiday",
		}); err != nil {
			t.Fatalf("save blocked day: %v", err)
		}
	}

	days, err := m.BlockedDays(ctx)
	if err != nil {
		t.Fatalf("BlockedDays: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("got %d days, want 2", len(days))
	}
	if !days[0].BlockedDate.Before(days[1].BlockedDate) {
		t.Error("blocked days must come back in ascending date order")
	}
}
