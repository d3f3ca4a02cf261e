package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmatos-dev/plantrack/internal/domain"
)

// sprintStore is the sprint collection view of a SQLiteStore.
type sprintStore SQLiteStore

const sprintColumns = `
	id, sprint_number, name, name_en, description, weeks, total_hours,
	total_sessions, start_date, end_date, focus, color, status,
	actual_hours, completed_sessions, completion_notes, created_at, updated_at`

func scanSprint(row rowScanner) (*domain.Sprint, error) {
	var sprint domain.Sprint
	var startDate, endDate string
	var description, focus, color, completionNotes sql.NullString
	var createdAt, updatedAt int64

	err := row.Scan(
		&sprint.ID, &sprint.SprintNumber, &sprint.Name, &sprint.NameEn,
		&description, &sprint.Weeks, &sprint.TotalHours, &sprint.TotalSessions,
		&startDate, &endDate, &focus, &color, &sprint.Status,
		&sprint.ActualHours, &sprint.CompletedSessions, &completionNotes,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	sprint.StartDate = parseDate(startDate)
	sprint.EndDate = parseDate(endDate)
	sprint.Description = description.String
	sprint.Focus = focus.String
	sprint.Color = color.String
	sprint.CompletionNotes = completionNotes.String
	sprint.CreatedAt = time.Unix(createdAt, 0).UTC()
	sprint.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return &sprint, nil
}

func (s *sprintStore) queryOne(ctx context.Context, where string, args ...any) (*domain.Sprint, error) {
	st := (*SQLiteStore)(s)
	row := st.q.QueryRowContext(ctx, "SELECT"+sprintColumns+" FROM sprints "+where, args...)
	sprint, err := scanSprint(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan sprint row: %w", err)
	}
	return sprint, nil
}

// GetByID retrieves a sprint by id.
func (s *sprintStore) GetByID(ctx context.Context, id int64) (*domain.Sprint, error) {
	return s.queryOne(ctx, "WHERE id = ?", id)
}

// GetBySequenceNumber retrieves a sprint by its unique sequence number.
func (s *sprintStore) GetBySequenceNumber(ctx context.Context, n int) (*domain.Sprint, error) {
	return s.queryOne(ctx, "WHERE sprint_number = ?", n)
}

// GetAllOrderedBySequence returns every sprint in sequence order.
func (s *sprintStore) GetAllOrderedBySequence(ctx context.Context) ([]*domain.Sprint, error) {
	st := (*SQLiteStore)(s)
	rows, err := st.q.QueryContext(ctx, "SELECT"+sprintColumns+" FROM sprints ORDER BY sprint_number ASC")
	if err != nil {
		return nil, fmt.Errorf("query sprints: %w", err)
	}
	defer rows.Close()

	var sprints []*domain.Sprint
	for rows.Next() {
		sprint, err := scanSprint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sprint row: %w", err)
		}
		sprints = append(sprints, sprint)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sprints: %w", err)
	}
	return sprints, nil
}

// GetCurrentlyActive returns the ACTIVE sprint, if any.
func (s *sprintStore) GetCurrentlyActive(ctx context.Context) (*domain.Sprint, error) {
	return s.queryOne(ctx, "WHERE status = ? ORDER BY sprint_number ASC LIMIT 1", domain.SprintActive)
}

// GetFirstPlannedOrderedBySequence returns the lowest-numbered PLANNED sprint.
func (s *sprintStore) GetFirstPlannedOrderedBySequence(ctx context.Context) (*domain.Sprint, error) {
	return s.queryOne(ctx, "WHERE status = ? ORDER BY sprint_number ASC LIMIT 1", domain.SprintPlanned)
}

// Save inserts the sprint when ID is zero, otherwise updates it in place.
func (s *sprintStore) Save(ctx context.Context, sprint *domain.Sprint) error {
	st := (*SQLiteStore)(s)
	now := time.Now()

	if sprint.ID == 0 {
		if sprint.Status == "" {
			sprint.Status = domain.SprintPlanned
		}
		sprint.CreatedAt = now
		sprint.UpdatedAt = now
		res, err := st.q.ExecContext(ctx, `
			INSERT INTO sprints (
				sprint_number, name, name_en, description, weeks, total_hours,
				total_sessions, start_date, end_date, focus, color, status,
				actual_hours, completed_sessions, completion_notes,
				created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sprint.SprintNumber, sprint.Name, sprint.NameEn,
			sprint.Description, sprint.Weeks, sprint.TotalHours,
			sprint.TotalSessions, dateStr(sprint.StartDate),
			dateStr(sprint.EndDate), sprint.Focus, sprint.Color,
			sprint.Status, sprint.ActualHours, sprint.CompletedSessions,
			sprint.CompletionNotes, now.Unix(), now.Unix(),
		)
		if err != nil {
			return fmt.Errorf("insert sprint: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("sprint insert id: %w", err)
		}
		sprint.ID = id
		return nil
	}

	sprint.UpdatedAt = now
	_, err := st.q.ExecContext(ctx, `
		UPDATE sprints SET
			name = ?, name_en = ?, description = ?, weeks = ?,
			total_hours = ?, total_sessions = ?, start_date = ?, end_date = ?,
			focus = ?, color = ?, status = ?, actual_hours = ?,
			completed_sessions = ?, completion_notes = ?, updated_at = ?
		WHERE id = ?`,
		sprint.Name, sprint.NameEn, sprint.Description, sprint.Weeks,
		sprint.TotalHours, sprint.TotalSessions, dateStr(sprint.StartDate),
		dateStr(sprint.EndDate), sprint.Focus, sprint.Color, sprint.Status,
		sprint.ActualHours, sprint.CompletedSessions, sprint.CompletionNotes,
		now.Unix(), sprint.ID,
	)
	if err != nil {
		return fmt.Errorf("update sprint: %w", err)
	}
	return nil
}
