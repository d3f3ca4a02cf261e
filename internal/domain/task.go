// Package domain contains the core types of the delivery-plan tracker.
package domain

import (
	"encoding/json"
	"time"
)

// Task is one dated unit of planned work inside a sprint. Tasks are created
// in bulk when the plan is loaded and are never deleted; only their mutable
// fields (status, hours, timestamps, notes, executions) change afterwards.
type Task struct {
	ID                 int64           `json:"id"`
	SprintID           int64           `json:"sprintId"`
	SprintNumber       int             `json:"sprintNumber,omitempty"`
	SprintName         string          `json:"sprintName,omitempty"`
	TaskCode           string          `json:"taskCode"`
	SessionDate        time.Time       `json:"sessionDate"`
	DayOfWeek          string          `json:"dayOfWeek"`
	WeekNumber         int             `json:"weekNumber"`
	PlannedHours       float64         `json:"plannedHours"`
	Title              string          `json:"title"`
	TitleEn            string          `json:"titleEn,omitempty"`
	Description        string          `json:"description,omitempty"`
	Deliverables       []string        `json:"deliverables"`
	ValidationCriteria []string        `json:"validationCriteria"`
	CoverageTarget     string          `json:"coverageTarget,omitempty"`
	Status             TaskStatus      `json:"status"`
	ActualHours        *float64        `json:"actualHours,omitempty"`
	StartedAt          *time.Time      `json:"startedAt,omitempty"`
	CompletedAt        *time.Time      `json:"completedAt,omitempty"`
	CompletionNotes    string          `json:"completionNotes,omitempty"`
	Blockers           string          `json:"blockers,omitempty"`
	PromptTemplate     string          `json:"promptTemplate,omitempty"`
	SortOrder          int             `json:"sortOrder"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
	Notes              []TaskNote      `json:"notes,omitempty"`
	Executions         []TaskExecution `json:"executions,omitempty"`
}

// TaskNote is a free-text annotation appended to a task.
type TaskNote struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"taskId"`
	NoteType  NoteType  `json:"noteType"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// TaskExecution logs one work session against a task.
type TaskExecution struct {
	ID              int64      `json:"id"`
	TaskID          int64      `json:"taskId"`
	StartedAt       time.Time  `json:"startedAt"`
	EndedAt         *time.Time `json:"endedAt,omitempty"`
	HoursSpent      *float64   `json:"hoursSpent,omitempty"`
	PromptUsed      string     `json:"promptUsed,omitempty"`
	ResponseSummary string     `json:"responseSummary,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// TaskUpdate carries the optional fields of a task patch. Nil fields are
// left untouched.
type TaskUpdate struct {
	CompletionNotes *string  `json:"completionNotes,omitempty"`
	Blockers        *string  `json:"blockers,omitempty"`
	ActualHours     *float64 `json:"actualHours,omitempty"`
	Description     *string  `json:"description,omitempty"`
}

// ParseStringList decodes a JSON array of strings as stored in the
// deliverables and validation_criteria columns. Empty or malformed input
// yields an empty list rather than an error; the original data set contains
// a handful of hand-edited rows and losing their auxiliary lists is
// preferable to failing the whole read.
func ParseStringList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return []string{}
	}
	if items == nil {
		return []string{}
	}
	return items
}

// EncodeStringList is the inverse of ParseStringList.
func EncodeStringList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(b)
}
