package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmatos-dev/plantrack/internal/domain"
)

// taskStore is the task collection view of a SQLiteStore.
type taskStore SQLiteStore

const taskColumns = `
	t.id, t.sprint_id, sp.sprint_number, sp.name, t.task_code, t.session_date,
	t.day_of_week, t.week_number, t.planned_hours, t.title, t.title_en,
	t.description, t.deliverables, t.validation_criteria, t.coverage_target,
	t.status, t.actual_hours, t.started_at, t.completed_at, t.completion_notes,
	t.blockers, t.prompt_template, t.sort_order, t.created_at, t.updated_at`

const taskFrom = ` FROM tasks t JOIN sprints sp ON sp.id = t.sprint_id `

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var sessionDate string
	var titleEn, description, deliverables, criteria, coverage sql.NullString
	var completionNotes, blockers, promptTemplate sql.NullString
	var actualHours sql.NullFloat64
	var startedAt, completedAt sql.NullInt64
	var createdAt, updatedAt int64

	err := row.Scan(
		&task.ID, &task.SprintID, &task.SprintNumber, &task.SprintName,
		&task.TaskCode, &sessionDate, &task.DayOfWeek, &task.WeekNumber,
		&task.PlannedHours, &task.Title, &titleEn, &description,
		&deliverables, &criteria, &coverage, &task.Status, &actualHours,
		&startedAt, &completedAt, &completionNotes, &blockers,
		&promptTemplate, &task.SortOrder, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.SessionDate = parseDate(sessionDate)
	task.TitleEn = titleEn.String
	task.Description = description.String
	task.Deliverables = domain.ParseStringList(deliverables.String)
	task.ValidationCriteria = domain.ParseStringList(criteria.String)
	task.CoverageTarget = coverage.String
	task.ActualHours = floatFromNull(actualHours)
	task.StartedAt = timeFromNull(startedAt)
	task.CompletedAt = timeFromNull(completedAt)
	task.CompletionNotes = completionNotes.String
	task.Blockers = blockers.String
	task.PromptTemplate = promptTemplate.String
	task.CreatedAt = time.Unix(createdAt, 0).UTC()
	task.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return &task, nil
}

func (t *taskStore) queryOne(ctx context.Context, where string, args ...any) (*domain.Task, error) {
	s := (*SQLiteStore)(t)
	row := s.q.QueryRowContext(ctx, "SELECT"+taskColumns+taskFrom+where, args...)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan task row: %w", err)
	}
	return task, nil
}

func (t *taskStore) queryMany(ctx context.Context, tail string, args ...any) ([]*domain.Task, error) {
	s := (*SQLiteStore)(t)
	rows, err := s.q.QueryContext(ctx, "SELECT"+taskColumns+taskFrom+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task row: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

// GetByID retrieves a task with its notes and execution log.
func (t *taskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	task, err := t.queryOne(ctx, "WHERE t.id = ?", id)
	if err != nil || task == nil {
		return task, err
	}
	if err := t.loadChildren(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// GetByCode retrieves a task by its unique short code.
func (t *taskStore) GetByCode(ctx context.Context, code string) (*domain.Task, error) {
	task, err := t.queryOne(ctx, "WHERE t.task_code = ?", code)
	if err != nil || task == nil {
		return task, err
	}
	if err := t.loadChildren(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// GetBySessionDate returns the task scheduled on the given date, if any.
func (t *taskStore) GetBySessionDate(ctx context.Context, date time.Time) (*domain.Task, error) {
	return t.queryOne(ctx, "WHERE t.session_date = ? LIMIT 1", dateStr(date))
}

// GetPlannedFrom returns PLANNED tasks dated on or after date.
func (t *taskStore) GetPlannedFrom(ctx context.Context, date time.Time) ([]*domain.Task, error) {
	return t.queryMany(ctx,
		"WHERE t.session_date >= ? AND t.status = ? ORDER BY t.session_date ASC, t.sort_order ASC",
		dateStr(date), domain.TaskPlanned)
}

// GetAllPlanned returns every PLANNED task across the whole backlog.
func (t *taskStore) GetAllPlanned(ctx context.Context) ([]*domain.Task, error) {
	return t.queryMany(ctx,
		"WHERE t.status = ? ORDER BY t.session_date ASC, t.sort_order ASC",
		domain.TaskPlanned)
}

// GetCompletedMostRecent returns the most recently completed tasks.
func (t *taskStore) GetCompletedMostRecent(ctx context.Context, limit int) ([]*domain.Task, error) {
	return t.queryMany(ctx,
		"WHERE t.completed_at IS NOT NULL ORDER BY t.completed_at DESC, t.session_date DESC LIMIT ?",
		limit)
}

// GetInDateRange returns tasks dated within [from, to].
func (t *taskStore) GetInDateRange(ctx context.Context, from, to time.Time) ([]*domain.Task, error) {
	return t.queryMany(ctx,
		"WHERE t.session_date BETWEEN ? AND ? ORDER BY t.session_date ASC, t.sort_order ASC",
		dateStr(from), dateStr(to))
}

// GetBySprint returns all tasks of a sprint in sort order.
func (t *taskStore) GetBySprint(ctx context.Context, sprintID int64) ([]*domain.Task, error) {
	return t.queryMany(ctx,
		"WHERE t.sprint_id = ? ORDER BY t.sort_order ASC", sprintID)
}

// GetBySprintAndStatus returns a sprint's tasks in a given state.
func (t *taskStore) GetBySprintAndStatus(ctx context.Context, sprintID int64, status domain.TaskStatus) ([]*domain.Task, error) {
	return t.queryMany(ctx,
		"WHERE t.sprint_id = ? AND t.status = ? ORDER BY t.sort_order ASC",
		sprintID, status)
}

// GetFiltered returns a page of tasks plus the total match count.
func (t *taskStore) GetFiltered(ctx context.Context, f TaskFilter) ([]*domain.Task, int, error) {
	s := (*SQLiteStore)(t)

	var conds []string
	var args []any
	if f.SprintID != nil {
		conds = append(conds, "t.sprint_id = ?")
		args = append(args, *f.SprintID)
	}
	if f.Status != nil {
		conds = append(conds, "t.status = ?")
		args = append(args, *f.Status)
	}
	if f.From != nil {
		conds = append(conds, "t.session_date >= ?")
		args = append(args, dateStr(*f.From))
	}
	if f.To != nil {
		conds = append(conds, "t.session_date <= ?")
		args = append(args, dateStr(*f.To))
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ") + " "
	}

	var total int
	countQuery := "SELECT COUNT(*)" + taskFrom + where
	if err := s.q.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count filtered tasks: %w", err)
	}

	tail := where + "ORDER BY t.session_date ASC, t.sort_order ASC"
	if f.Limit > 0 {
		tail += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	tasks, err := t.queryMany(ctx, tail, args...)
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// CountByStatus counts tasks in a given state across all sprints.
func (t *taskStore) CountByStatus(ctx context.Context, status domain.TaskStatus) (int, error) {
	s := (*SQLiteStore)(t)
	var n int
	err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE status = ?`, status).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count tasks by status: %w", err)
	}
	return n, nil
}

// CountBySprintAndStatus counts a sprint's tasks in a given state.
func (t *taskStore) CountBySprintAndStatus(ctx context.Context, sprintID int64, status domain.TaskStatus) (int, error) {
	s := (*SQLiteStore)(t)
	var n int
	err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE sprint_id = ? AND status = ?`, sprintID, status).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count sprint tasks by status: %w", err)
	}
	return n, nil
}

// SumActualHoursOfCompleted totals recorded hours over completed tasks.
func (t *taskStore) SumActualHoursOfCompleted(ctx context.Context) (float64, error) {
	s := (*SQLiteStore)(t)
	var sum float64
	err := s.q.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(actual_hours), 0) FROM tasks WHERE status = ?`, domain.TaskCompleted).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum actual hours: %w", err)
	}
	return sum, nil
}

// Count returns the total number of tasks.
func (t *taskStore) Count(ctx context.Context) (int, error) {
	s := (*SQLiteStore)(t)
	var n int
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

// Save inserts the task when ID is zero, otherwise updates it in place.
func (t *taskStore) Save(ctx context.Context, task *domain.Task) error {
	s := (*SQLiteStore)(t)
	now := time.Now()

	if task.ID == 0 {
		if task.Status == "" {
			task.Status = domain.TaskPlanned
		}
		task.CreatedAt = now
		task.UpdatedAt = now
		res, err := s.q.ExecContext(ctx, `
			INSERT INTO tasks (
				sprint_id, task_code, session_date, day_of_week, week_number,
				planned_hours, title, title_en, description, deliverables,
				validation_criteria, coverage_target, status, actual_hours,
				started_at, completed_at, completion_notes, blockers,
				prompt_template, sort_order, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			task.SprintID, task.TaskCode, dateStr(task.SessionDate),
			task.DayOfWeek, task.WeekNumber, task.PlannedHours, task.Title,
			task.TitleEn, task.Description,
			domain.EncodeStringList(task.Deliverables),
			domain.EncodeStringList(task.ValidationCriteria),
			task.CoverageTarget, task.Status, task.ActualHours,
			unixOrNil(task.StartedAt), unixOrNil(task.CompletedAt),
			task.CompletionNotes, task.Blockers, task.PromptTemplate,
			task.SortOrder, now.Unix(), now.Unix(),
		)
		if err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("task insert id: %w", err)
		}
		task.ID = id
		return nil
	}

	task.UpdatedAt = now
	_, err := s.q.ExecContext(ctx, `
		UPDATE tasks SET
			session_date = ?, day_of_week = ?, week_number = ?,
			planned_hours = ?, title = ?, title_en = ?, description = ?,
			deliverables = ?, validation_criteria = ?, coverage_target = ?,
			status = ?, actual_hours = ?, started_at = ?, completed_at = ?,
			completion_notes = ?, blockers = ?, prompt_template = ?,
			sort_order = ?, updated_at = ?
		WHERE id = ?`,
		dateStr(task.SessionDate), task.DayOfWeek, task.WeekNumber,
		task.PlannedHours, task.Title, task.TitleEn, task.Description,
		domain.EncodeStringList(task.Deliverables),
		domain.EncodeStringList(task.ValidationCriteria),
		task.CoverageTarget, task.Status, task.ActualHours,
		unixOrNil(task.StartedAt), unixOrNil(task.CompletedAt),
		task.CompletionNotes, task.Blockers, task.PromptTemplate,
		task.SortOrder, now.Unix(), task.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

// AddNote appends a note row for a task.
func (t *taskStore) AddNote(ctx context.Context, note *domain.TaskNote) error {
	s := (*SQLiteStore)(t)
	if note.NoteType == "" {
		note.NoteType = domain.NoteInfo
	}
	if note.Author == "" {
		note.Author = "developer"
	}
	note.CreatedAt = time.Now()

	res, err := s.q.ExecContext(ctx, `
		INSERT INTO task_notes (task_id, note_type, content, author, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		note.TaskID, note.NoteType, note.Content, note.Author, note.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert task note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("task note insert id: %w", err)
	}
	note.ID = id
	return nil
}

// AddExecution appends an execution log row for a task.
func (t *taskStore) AddExecution(ctx context.Context, exec *domain.TaskExecution) error {
	s := (*SQLiteStore)(t)
	exec.CreatedAt = time.Now()

	res, err := s.q.ExecContext(ctx, `
		INSERT INTO task_executions (task_id, started_at, ended_at, hours_spent, prompt_used, response_summary, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		exec.TaskID, exec.StartedAt.Unix(), unixOrNil(exec.EndedAt),
		exec.HoursSpent, exec.PromptUsed, exec.ResponseSummary, exec.Notes,
		exec.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert task execution: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("task execution insert id: %w", err)
	}
	exec.ID = id
	return nil
}

func (t *taskStore) loadChildren(ctx context.Context, task *domain.Task) error {
	s := (*SQLiteStore)(t)

	rows, err := s.q.QueryContext(ctx, `
		SELECT id, task_id, note_type, content, author, created_at
		FROM task_notes WHERE task_id = ? ORDER BY created_at ASC, id ASC`, task.ID)
	if err != nil {
		return fmt.Errorf("query task notes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var note domain.TaskNote
		var createdAt int64
		if err := rows.Scan(&note.ID, &note.TaskID, &note.NoteType, &note.Content, &note.Author, &createdAt); err != nil {
			return fmt.Errorf("scan task note: %w", err)
		}
		note.CreatedAt = time.Unix(createdAt, 0).UTC()
		task.Notes = append(task.Notes, note)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate task notes: %w", err)
	}

	execRows, err := s.q.QueryContext(ctx, `
		SELECT id, task_id, started_at, ended_at, hours_spent, prompt_used, response_summary, notes, created_at
		FROM task_executions WHERE task_id = ? ORDER BY started_at ASC, id ASC`, task.ID)
	if err != nil {
		return fmt.Errorf("query task executions: %w", err)
	}
	defer execRows.Close()
	for execRows.Next() {
		var exec domain.TaskExecution
		var startedAt, createdAt int64
		var endedAt sql.NullInt64
		var hoursSpent sql.NullFloat64
		var promptUsed, responseSummary, notes sql.NullString
		if err := execRows.Scan(&exec.ID, &exec.TaskID, &startedAt, &endedAt, &hoursSpent, &promptUsed, &responseSummary, &notes, &createdAt); err != nil {
			return fmt.Errorf("scan task execution: %w", err)
		}
		exec.StartedAt = time.Unix(startedAt, 0).UTC()
		exec.EndedAt = timeFromNull(endedAt)
		exec.HoursSpent = floatFromNull(hoursSpent)
		exec.PromptUsed = promptUsed.String
		exec.ResponseSummary = responseSummary.String
		exec.Notes = notes.String
		exec.CreatedAt = time.Unix(createdAt, 0).UTC()
		task.Executions = append(task.Executions, exec)
	}
	if err := execRows.Err(); err != nil {
		return fmt.Errorf("iterate task executions: %w", err)
	}

	return nil
}
