package domain

import "time"

// Sprint is a multi-week delivery phase owning an ordered set of tasks.
// CompletedSessions and ActualHours are denormalized counters maintained by
// the completion rollup; they mirror the owned tasks in COMPLETED state.
type Sprint struct {
	ID                int64        `json:"id"`
	SprintNumber      int          `json:"sprintNumber"`
	Name              string       `json:"name"`
	NameEn            string       `json:"nameEn"`
	Description       string       `json:"description,omitempty"`
	Weeks             int          `json:"weeks"`
	TotalHours        int          `json:"totalHours"`
	TotalSessions     int          `json:"totalSessions"`
	StartDate         time.Time    `json:"startDate"`
	EndDate           time.Time    `json:"endDate"`
	Focus             string       `json:"focus,omitempty"`
	Color             string       `json:"color,omitempty"`
	Status            SprintStatus `json:"status"`
	ActualHours       float64      `json:"actualHours"`
	CompletedSessions int          `json:"completedSessions"`
	CompletionNotes   string       `json:"completionNotes,omitempty"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
}

// ProgressPercent is the completed-session ratio expressed 0-100.
func (s *Sprint) ProgressPercent() float64 {
	return ProgressPercent(s.CompletedSessions, s.TotalSessions)
}

// ProgressPercent computes completed/total as a 0-100 percentage,
// returning 0 when total is zero.
func ProgressPercent(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(completed) * 100.0 / float64(total)
}

// SprintUpdate carries the editable sprint fields. Nil fields are left
// untouched.
type SprintUpdate struct {
	Status          *SprintStatus `json:"status,omitempty"`
	CompletionNotes *string       `json:"completionNotes,omitempty"`
}

// SprintReport is a generated progress report persisted per sprint.
type SprintReport struct {
	ID          int64      `json:"id"`
	SprintID    int64      `json:"sprintId"`
	ReportType  ReportType `json:"reportType"`
	WeekNumber  *int       `json:"weekNumber,omitempty"`
	GeneratedAt time.Time  `json:"generatedAt"`
	SummaryPt   string     `json:"summaryPt"`
	SummaryEn   string     `json:"summaryEn"`
	MetricsJSON string     `json:"metricsJson"`
	CreatedAt   time.Time  `json:"createdAt"`
}
