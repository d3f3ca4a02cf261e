package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmatos-dev/plantrack/internal/domain"
	"github.com/dmatos-dev/plantrack/internal/store"
)

const testPlan = `{
  "sprints": [
    {
      "number": 1,
      "name": "Fundação",
      "nameEn": "Foundation",
      "weeks": 4,
      "totalHours": 80,
      "totalSessions": 24,
      "startDate": "2026-03-02",
      "endDate": "2026-03-29",
      "focus": "Auth and data model"
    },
    {
      "number": 2,
      "name": "Núcleo Consular",
      "nameEn": "Consular Core",
      "weeks": 4,
      "totalHours": 80,
      "totalSessions": 24,
      "startDate": "2026-03-30",
      "endDate": "2026-04-26",
      "focus": "Core workflows"
    }
  ],
  "tasks": [
    {
      "sprint": 1,
      "code": "S1-D01",
      "date": "2026-03-02",
      "plannedHours": 3.5,
      "title": "Esquema da base de dados",
      "titleEn": "Database schema",
      "deliverables": ["schema.sql"],
      "validationCriteria": ["migrations apply"]
    },
    {
      "sprint": 1,
      "code": "S1-D08",
      "date": "2026-03-09",
      "plannedHours": 3.5,
      "title": "API de utilizadores",
      "titleEn": "User API"
    },
    {
      "sprint": 2,
      "code": "S2-D01",
      "date": "2026-03-30",
      "plannedHours": 4,
      "title": "Registo consular",
      "titleEn": "Consular registry"
    }
  ],
  "blockedDays": [
    {
      "date": "2026-04-04",
      "type": "HOLIDAY",
      "reason": "Dia da Paz",
      "hoursLost": 4
    }
  ]
}`

func newTestStore(t *testing.T) store.Store {
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
	return st
}

func writePlan(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write plan: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if err := New(st).Load(ctx, writePlan(t, testPlan)); err != nil {
		t.Fatalf("Load: %v", err)
	}

	sprints, err := st.Sprints().GetAllOrderedBySequence(ctx)
	if err != nil {
		t.Fatalf("sprints: %v", err)
	}
	if len(sprints) != 2 {
		t.Fatalf("got %d sprints, want 2", len(sprints))
	}
	if sprints[0].Status != domain.SprintPlanned {
		t.Errorf("loaded sprint status = %q, want PLANNED", sprints[0].Status)
	}

	n, err := st.Tasks().Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Fatalf("got %d tasks, want 3", n)
	}

	first, err := st.Tasks().GetByCode(ctx, "S1-D01")
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if first.DayOfWeek != "MON" {
		t.Errorf("DayOfWeek = %q, want MON derived from date", first.DayOfWeek)
	}
	if first.WeekNumber != 1 {
		t.Errorf("WeekNumber = %d, want 1", first.WeekNumber)
	}
	if len(first.Deliverables) != 1 || first.Deliverables[0] != "schema.sql" {
		t.Errorf("Deliverables = %v", first.Deliverables)
	}

	secondWeek, err := st.Tasks().GetByCode(ctx, "S1-D08")
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if secondWeek.WeekNumber != 2 {
		t.Errorf("WeekNumber = %d, want 2 for the second week", secondWeek.WeekNumber)
	}
	if secondWeek.SortOrder <= first.SortOrder {
		t.Errorf("sort order must follow file order: %d then %d", first.SortOrder, secondWeek.SortOrder)
	}

	days, err := st.BlockedDays().GetAll(ctx)
	if err != nil {
		t.Fatalf("blocked days: %v", err)
	}
	if len(days) != 1 || days[0].BlockType != domain.BlockHoliday || days[0].HoursLost != 4 {
		t.Errorf("blocked days = %+v", days)
	}
}

func TestLoadIsIdempotent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	path := writePlan(t, testPlan)

	loader := New(st)
	if err := loader.Load(ctx, path); err != nil {
		t.Fatalf("first Load: %v", err)
	}
	if err := loader.Load(ctx, path); err != nil {
		t.Fatalf("second Load: %v", err)
	}

	n, err := st.Tasks().Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Errorf("got %d tasks after double load, want 3", n)
	}
}

func TestLoadUnknownSprintReference(t *testing.T) {
	st := newTestStore(t)
	plan := `{"sprints": [], "tasks": [{"sprint": 7, "code": "X", "date": "2026-03-02", "plannedHours": 1, "title": "x"}]}`

	if err := New(st).Load(context.Background(), writePlan(t, plan)); err == nil {
		t.Fatal("expected error for task referencing unknown sprint")
	}

	n, err := st.Tasks().Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("partial load leaked %d tasks, want rollback to 0", n)
	}
}

func TestLoadMissingFile(t *testing.T) {
	st := newTestStore(t)
	if err := New(st).Load(context.Background(), "/nonexistent/plan.json"); err == nil {
		t.Fatal("expected error for missing plan file")
	}
}
