// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/dmatos-dev/plantrack/internal/domain"
)

// TaskFilter narrows a task listing. Nil fields are ignored.
type TaskFilter struct {
	SprintID *int64
	Status   *domain.TaskStatus
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

// TaskStore persists tasks, their notes and execution log entries.
// Lookups return (nil, nil) when no row matches; callers decide whether
// absence is an error.
type TaskStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	GetByCode(ctx context.Context, code string) (*domain.Task, error)

	// GetBySessionDate returns the task scheduled on the given date, if any.
	GetBySessionDate(ctx context.Context, date time.Time) (*domain.Task, error)

	// GetPlannedFrom returns PLANNED tasks dated on or after date, ordered
	// by date then sort position.
	GetPlannedFrom(ctx context.Context, date time.Time) ([]*domain.Task, error)

	// GetAllPlanned returns every PLANNED task in the same ordering,
	// regardless of date.
	GetAllPlanned(ctx context.Context) ([]*domain.Task, error)

	// GetCompletedMostRecent returns up to limit completed tasks ordered by
	// completion time descending, ties broken by session date descending.
	GetCompletedMostRecent(ctx context.Context, limit int) ([]*domain.Task, error)

	GetInDateRange(ctx context.Context, from, to time.Time) ([]*domain.Task, error)
	GetBySprint(ctx context.Context, sprintID int64) ([]*domain.Task, error)
	GetBySprintAndStatus(ctx context.Context, sprintID int64, status domain.TaskStatus) ([]*domain.Task, error)

	// GetFiltered returns a page of tasks plus the total match count.
	GetFiltered(ctx context.Context, f TaskFilter) ([]*domain.Task, int, error)

	CountByStatus(ctx context.Context, status domain.TaskStatus) (int, error)
	CountBySprintAndStatus(ctx context.Context, sprintID int64, status domain.TaskStatus) (int, error)
	SumActualHoursOfCompleted(ctx context.Context) (float64, error)
	Count(ctx context.Context) (int, error)

	// Save inserts the task when ID is zero, otherwise updates it in place.
	Save(ctx context.Context, task *domain.Task) error

	AddNote(ctx context.Context, note *domain.TaskNote) error
	AddExecution(ctx context.Context, exec *domain.TaskExecution) error
}

// SprintStore persists sprints.
type SprintStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Sprint, error)
	GetBySequenceNumber(ctx context.Context, n int) (*domain.Sprint, error)
	GetAllOrderedBySequence(ctx context.Context) ([]*domain.Sprint, error)

	// GetCurrentlyActive returns the ACTIVE sprint. The engine maintains at
	// most one but nothing enforces it; with several active the
	// lowest-numbered wins.
	GetCurrentlyActive(ctx context.Context) (*domain.Sprint, error)

	// GetFirstPlannedOrderedBySequence returns the PLANNED sprint with the
	// lowest sequence number, if any.
	GetFirstPlannedOrderedBySequence(ctx context.Context) (*domain.Sprint, error)

	Save(ctx context.Context, sprint *domain.Sprint) error
}

// BlockedDayStore persists non-working days.
type BlockedDayStore interface {
	GetByDate(ctx context.Context, date time.Time) (*domain.BlockedDay, error)
	GetFrom(ctx context.Context, date time.Time) ([]*domain.BlockedDay, error)
	GetInDateRange(ctx context.Context, from, to time.Time) ([]*domain.BlockedDay, error)
	GetAll(ctx context.Context) ([]*domain.BlockedDay, error)
	Save(ctx context.Context, day *domain.BlockedDay) error
}

// ReportStore persists generated sprint reports.
type ReportStore interface {
	GetByID(ctx context.Context, id int64) (*domain.SprintReport, error)
	GetAll(ctx context.Context) ([]*domain.SprintReport, error)
	GetBySprint(ctx context.Context, sprintID int64) ([]*domain.SprintReport, error)
	Save(ctx context.Context, report *domain.SprintReport) error
}

// Store aggregates the collections and supplies the transactional unit the
// completion rollup requires.
type Store interface {
	Tasks() TaskStore
	Sprints() SprintStore
	BlockedDays() BlockedDayStore
	Reports() ReportStore

	// InTransaction runs fn against a transactional view of the store and
	// commits if fn returns nil, rolling back otherwise. Calls made on the
	// view from inside fn join the same transaction; nested calls to
	// InTransaction join it as well.
	InTransaction(ctx context.Context, fn func(Store) error) error

	// Ping verifies connectivity to the underlying database.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
