package progress

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmatos-dev/plantrack/internal/domain"
	"github.com/dmatos-dev/plantrack/internal/store"
)

var testNow = time.Date(2026, time.March, 4, 10, 0, 0, 0, time.UTC) // Wednesday

func testConfig() Config {
	return Config{
		ProjectName:       "SGCD",
		Client:            "Embaixada",
		TotalSessions:     204,
		TotalHoursPlanned: 680,
		StartDate:         time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),
		TargetDate:        time.Date(2026, time.December, 20, 0, 0, 0, 0, time.UTC),
	}
}

func newTestAggregator(t *testing.T) (*Aggregator, store.Store) {
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
	agg := New(st, testConfig())
	agg.now = func() time.Time { return testNow }
	return agg, st
}

func seedSprint(t *testing.T, st store.Store, number int, status domain.SprintStatus) *domain.Sprint {
	t.Helper()
	start := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, (number-1)*28)
	sprint := &domain.Sprint{
		SprintNumber:  number,
		Name:          "Fase",
		NameEn:        "Phase",
		Weeks:         4,
		TotalHours:    80,
		TotalSessions: 24,
		StartDate:     start,
		EndDate:       start.AddDate(0, 0, 27),
		Status:        status,
		Color:         "#1abc9c",
	}
	if err := st.Sprints().Save(context.Background(), sprint); err != nil {
		t.Fatalf("save sprint: %v", err)
	}
	return sprint
}

func seedTask(t *testing.T, st store.Store, sprint *domain.Sprint, code string, day time.Time, status domain.TaskStatus, actualHours *float64) *domain.Task {
	t.Helper()
	task := &domain.Task{
		SprintID:     sprint.ID,
		TaskCode:     code,
		SessionDate:  day,
		DayOfWeek:    domain.WeekdayAbbrev(day),
		WeekNumber:   1,
		PlannedHours: 3.5,
		Title:        "Task " + code,
		Status:       status,
		ActualHours:  actualHours,
	}
	if status == domain.TaskCompleted {
		completed := day.Add(18 * time.Hour)
		task.CompletedAt = &completed
	}
	if err := st.Tasks().Save(context.Background(), task); err != nil {
		t.Fatalf("save task: %v", err)
	}
	return task
}

func ptr(f float64) *float64 { return &f }

func TestWeekProgressSumsAllRecordedHours(t *testing.T) {
	agg, st := newTestAggregator(t)
	ctx := context.Background()
	sprint := seedSprint(t, st, 1, domain.SprintActive)

	monday := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	seedTask(t, st, sprint, "S1-D01", monday, domain.TaskCompleted, ptr(3.5))
	// In-progress task with hours already recorded counts toward hours
	// spent even though it is not completed.
	seedTask(t, st, sprint, "S1-D02", monday.AddDate(0, 0, 1), domain.TaskInProgress, ptr(4.0))
	seedTask(t, st, sprint, "S1-D03", monday.AddDate(0, 0, 2), domain.TaskPlanned, nil)
	// Outside the Monday-Sunday window.
	seedTask(t, st, sprint, "S1-D08", monday.AddDate(0, 0, 7), domain.TaskPlanned, nil)

	week, tasks, err := agg.weekProgress(ctx)
	if err != nil {
		t.Fatalf("weekProgress: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("window holds %d tasks, want 3", len(tasks))
	}
	if week.WeekTasks != 3 {
		t.Errorf("WeekTasks = %d, want 3", week.WeekTasks)
	}
	if week.WeekCompleted != 1 {
		t.Errorf("WeekCompleted = %d, want 1", week.WeekCompleted)
	}
	if week.WeekHoursPlanned != 10.5 {
		t.Errorf("WeekHoursPlanned = %v, want 10.5", week.WeekHoursPlanned)
	}
	if week.WeekHoursSpent != 7.5 {
		t.Errorf("WeekHoursSpent = %v, want 7.5", week.WeekHoursSpent)
	}
}

func TestTodayTaskFallsBackToUpcoming(t *testing.T) {
	agg, st := newTestAggregator(t)
	ctx := context.Background()
	sprint := seedSprint(t, st, 1, domain.SprintActive)

	t.Run("no tasks at all", func(t *testing.T) {
		task, err := agg.TodayTask(ctx)
		if err != nil {
			t.Fatalf("TodayTask: %v", err)
		}
		if task != nil {
			t.Errorf("want nil, got %+v", task)
		}
	})

	future := seedTask(t, st, sprint, "S1-D05", testNow.AddDate(0, 0, 2), domain.TaskPlanned, nil)

	t.Run("falls back to earliest upcoming planned", func(t *testing.T) {
		task, err := agg.TodayTask(ctx)
		if err != nil {
			t.Fatalf("TodayTask: %v", err)
		}
		if task == nil || task.ID != future.ID {
			t.Errorf("got %+v, want fallback task", task)
		}
	})

	today := seedTask(t, st, sprint, "S1-D03", domain.DateOf(testNow), domain.TaskCompleted, ptr(3.5))

	t.Run("exact date wins regardless of status", func(t *testing.T) {
		task, err := agg.TodayTask(ctx)
		if err != nil {
			t.Fatalf("TodayTask: %v", err)
		}
		if task == nil || task.ID != today.ID {
			t.Errorf("got %+v, want today's task", task)
		}
	})
}

func TestNextTaskIgnoresDates(t *testing.T) {
	agg, st := newTestAggregator(t)
	ctx := context.Background()
	sprint := seedSprint(t, st, 1, domain.SprintActive)

	// A planned task in the past is still the next one to pick up.
	past := seedTask(t, st, sprint, "S1-D01", testNow.AddDate(0, 0, -10), domain.TaskPlanned, nil)
	seedTask(t, st, sprint, "S1-D09", testNow.AddDate(0, 0, 5), domain.TaskPlanned, nil)

	task, err := agg.NextTask(ctx)
	if err != nil {
		t.Fatalf("NextTask: %v", err)
	}
	if task == nil || task.ID != past.ID {
		t.Errorf("got %+v, want earliest planned task", task)
	}
}

func TestActiveSprintFallback(t *testing.T) {
	agg, st := newTestAggregator(t)
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		_, err := agg.ActiveSprint(ctx)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	planned := seedSprint(t, st, 2, domain.SprintPlanned)

	t.Run("falls back to first planned", func(t *testing.T) {
		view, err := agg.ActiveSprint(ctx)
		if err != nil {
			t.Fatalf("ActiveSprint: %v", err)
		}
		if view.ID != planned.ID {
			t.Errorf("got sprint %d, want planned fallback", view.SprintNumber)
		}
	})

	active := seedSprint(t, st, 1, domain.SprintActive)

	t.Run("active wins", func(t *testing.T) {
		view, err := agg.ActiveSprint(ctx)
		if err != nil {
			t.Fatalf("ActiveSprint: %v", err)
		}
		if view.ID != active.ID {
			t.Errorf("got sprint %d, want active", view.SprintNumber)
		}
	})
}

func TestSprintProgressBreakdown(t *testing.T) {
	agg, st := newTestAggregator(t)
	ctx := context.Background()
	sprint := seedSprint(t, st, 1, domain.SprintActive)
	monday := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

	seedTask(t, st, sprint, "S1-D01", monday, domain.TaskCompleted, ptr(3.5))
	seedTask(t, st, sprint, "S1-D02", monday.AddDate(0, 0, 1), domain.TaskCompleted, ptr(3.5))
	seedTask(t, st, sprint, "S1-D03", monday.AddDate(0, 0, 2), domain.TaskInProgress, nil)
	seedTask(t, st, sprint, "S1-D04", monday.AddDate(0, 0, 3), domain.TaskBlocked, nil)
	seedTask(t, st, sprint, "S1-D05", monday.AddDate(0, 0, 4), domain.TaskPlanned, nil)

	b, err := agg.SprintProgress(ctx, sprint.ID)
	if err != nil {
		t.Fatalf("SprintProgress: %v", err)
	}
	if b.CompletedTasks != 2 || b.InProgressTasks != 1 || b.BlockedTasks != 1 || b.PlannedTasks != 1 || b.SkippedTasks != 0 {
		t.Errorf("breakdown = %+v", b)
	}
	// 2 of 24 planned sessions, from the live count.
	want := domain.ProgressPercent(2, 24)
	if b.ProgressPercent != want {
		t.Errorf("ProgressPercent = %v, want %v", b.ProgressPercent, want)
	}

	if _, err := agg.SprintProgress(ctx, 99); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDashboard(t *testing.T) {
	agg, st := newTestAggregator(t)
	ctx := context.Background()
	sprint := seedSprint(t, st, 1, domain.SprintActive)
	sprint.CompletedSessions = 2
	sprint.ActualHours = 7
	if err := st.Sprints().Save(ctx, sprint); err != nil {
		t.Fatalf("save sprint: %v", err)
	}
	seedSprint(t, st, 2, domain.SprintPlanned)

	monday := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	seedTask(t, st, sprint, "S1-D01", monday, domain.TaskCompleted, ptr(3.5))
	seedTask(t, st, sprint, "S1-D02", monday.AddDate(0, 0, 1), domain.TaskCompleted, ptr(3.5))
	seedTask(t, st, sprint, "S1-D03", domain.DateOf(testNow), domain.TaskPlanned, nil)

	if err := st.BlockedDays().Save(ctx, &domain.BlockedDay{
		BlockedDate: testNow.AddDate(0, 0, 3),
		BlockType:   domain.BlockHoliday,
		Reason:      "holiday",
	}); err != nil {
		t.Fatalf("save blocked day: %v", err)
	}

	d, err := agg.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.CompletedSessions != 2 {
		t.Errorf("CompletedSessions = %d, want 2", d.CompletedSessions)
	}
	if d.TotalSessions != 204 || d.TotalHoursPlanned != 680 {
		t.Errorf("project totals must come from config: %+v", d)
	}
	if d.ProjectProgress != domain.ProgressPercent(2, 204) {
		t.Errorf("ProjectProgress = %v", d.ProjectProgress)
	}
	if d.TotalHoursSpent != 7 {
		t.Errorf("TotalHoursSpent = %v, want 7", d.TotalHoursSpent)
	}
	if d.ActiveSprint == nil || d.ActiveSprint.SprintNumber != 1 {
		t.Errorf("ActiveSprint = %+v", d.ActiveSprint)
	}
	if d.TodayTask == nil || d.TodayTask.TaskCode != "S1-D03" {
		t.Errorf("TodayTask = %+v", d.TodayTask)
	}
	if len(d.RecentTasks) != 2 {
		t.Errorf("RecentTasks = %d entries, want 2", len(d.RecentTasks))
	}
	if len(d.SprintSummaries) != 2 {
		t.Errorf("SprintSummaries = %d entries, want 2", len(d.SprintSummaries))
	}
	if len(d.UpcomingBlockedDays) != 1 {
		t.Errorf("UpcomingBlockedDays = %d entries, want 1", len(d.UpcomingBlockedDays))
	}
	if d.WeekProgress.WeekCompleted != 2 {
		t.Errorf("WeekProgress.WeekCompleted = %d, want 2", d.WeekProgress.WeekCompleted)
	}
}

func TestStakeholderDashboard(t *testing.T) {
	agg, st := newTestAggregator(t)
	ctx := context.Background()

	s1 := seedSprint(t, st, 1, domain.SprintCompleted)
	s2 := seedSprint(t, st, 2, domain.SprintActive)
	seedSprint(t, st, 3, domain.SprintPlanned)

	monday := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	seedTask(t, st, s1, "S1-D01", monday, domain.TaskCompleted, ptr(3.5))
	seedTask(t, st, s2, "S2-D01", monday.AddDate(0, 0, 1), domain.TaskCompleted, ptr(4.0))

	d, err := agg.StakeholderDashboard(ctx)
	if err != nil {
		t.Fatalf("StakeholderDashboard: %v", err)
	}
	if d.ProjectName != "SGCD" || d.Client != "Embaixada" {
		t.Errorf("identity fields: %+v", d)
	}
	if d.CompletedSessions != 2 || d.TotalHoursSpent != 7.5 {
		t.Errorf("totals: completed=%d hours=%v", d.CompletedSessions, d.TotalHoursSpent)
	}
	// 2026-03-04 to 2026-12-20 is 291 days.
	if d.DaysRemaining != 291 {
		t.Errorf("DaysRemaining = %d, want 291", d.DaysRemaining)
	}
	if len(d.Sprints) != 3 {
		t.Fatalf("Sprints = %d entries, want 3", len(d.Sprints))
	}

	// One milestone per sprint plus go-live.
	if len(d.Milestones) != 4 {
		t.Fatalf("Milestones = %d entries, want 4", len(d.Milestones))
	}
	wantStatus := []string{"COMPLETED", "IN_PROGRESS", "FUTURE", "FUTURE"}
	for i, m := range d.Milestones {
		if m.Status != wantStatus[i] {
			t.Errorf("milestone %d (%s) status = %q, want %q", i, m.Name, m.Status, wantStatus[i])
		}
	}
	if d.Milestones[3].Name != "Go-Live" {
		t.Errorf("last milestone = %q, want Go-Live", d.Milestones[3].Name)
	}
	if d.WeeklyActivity.SessionsThisWeek != 2 || d.WeeklyActivity.HoursThisWeek != 7.5 {
		t.Errorf("WeeklyActivity = %+v", d.WeeklyActivity)
	}
}

func TestListSprintsCarriesTaskCounts(t *testing.T) {
	agg, st := newTestAggregator(t)
	ctx := context.Background()
	sprint := seedSprint(t, st, 1, domain.SprintActive)
	sprint.CompletedSessions = 6
	if err := st.Sprints().Save(ctx, sprint); err != nil {
		t.Fatalf("save sprint: %v", err)
	}
	monday := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	seedTask(t, st, sprint, "S1-D01", monday, domain.TaskPlanned, nil)
	seedTask(t, st, sprint, "S1-D02", monday.AddDate(0, 0, 1), domain.TaskPlanned, nil)

	views, err := agg.ListSprints(ctx)
	if err != nil {
		t.Fatalf("ListSprints: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("got %d views, want 1", len(views))
	}
	if views[0].TaskCount != 2 {
		t.Errorf("TaskCount = %d, want 2", views[0].TaskCount)
	}
	if views[0].ProgressPercent != domain.ProgressPercent(6, 24) {
		t.Errorf("ProgressPercent = %v", views[0].ProgressPercent)
	}
}
