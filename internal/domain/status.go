package domain

// TaskStatus is the lifecycle state of a work session.
type TaskStatus string

// Task lifecycle states. Tasks start PLANNED; COMPLETED and SKIPPED are
// terminal, though no operation guards against transitions out of them.
const (
	TaskPlanned    TaskStatus = "PLANNED"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskCompleted  TaskStatus = "COMPLETED"
	TaskBlocked    TaskStatus = "BLOCKED"
	TaskSkipped    TaskStatus = "SKIPPED"
)

// TaskStatuses lists all task states in display order.
var TaskStatuses = []TaskStatus{TaskPlanned, TaskInProgress, TaskCompleted, TaskBlocked, TaskSkipped}

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPlanned, TaskInProgress, TaskCompleted, TaskBlocked, TaskSkipped:
		return true
	}
	return false
}

// Terminal reports whether s is a terminal task state.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskSkipped
}

// SprintStatus is the lifecycle state of a sprint.
type SprintStatus string

const (
	SprintPlanned   SprintStatus = "PLANNED"
	SprintActive    SprintStatus = "ACTIVE"
	SprintCompleted SprintStatus = "COMPLETED"
)

// Valid reports whether s is a known sprint status.
func (s SprintStatus) Valid() bool {
	switch s {
	case SprintPlanned, SprintActive, SprintCompleted:
		return true
	}
	return false
}

// NoteType classifies a task note.
type NoteType string

const (
	NoteInfo        NoteType = "INFO"
	NoteWarning     NoteType = "WARNING"
	NoteBlocker     NoteType = "BLOCKER"
	NoteDecision    NoteType = "DECISION"
	NoteObservation NoteType = "OBSERVATION"
)

// BlockType classifies a non-working day.
type BlockType string

const (
	BlockHoliday BlockType = "HOLIDAY"
	BlockEvent   BlockType = "EVENT"
)

// ReportType classifies a generated sprint report.
type ReportType string

const (
	ReportSprintEnd ReportType = "SPRINT_END"
	ReportWeekly    ReportType = "WEEKLY"
	ReportCustom    ReportType = "CUSTOM"
)
