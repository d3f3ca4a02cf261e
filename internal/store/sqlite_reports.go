package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmatos-dev/plantrack/internal/domain"
)

// reportStore is the sprint-report collection view of a SQLiteStore.
type reportStore SQLiteStore

func scanReport(row rowScanner) (*domain.SprintReport, error) {
	var report domain.SprintReport
	var weekNumber sql.NullInt64
	var summaryPt, summaryEn, metricsJSON sql.NullString
	var generatedAt, createdAt int64

	err := row.Scan(
		&report.ID, &report.SprintID, &report.ReportType, &weekNumber,
		&generatedAt, &summaryPt, &summaryEn, &metricsJSON, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	if weekNumber.Valid {
		n := int(weekNumber.Int64)
		report.WeekNumber = &n
	}
	report.GeneratedAt = time.Unix(generatedAt, 0).UTC()
	report.SummaryPt = summaryPt.String
	report.SummaryEn = summaryEn.String
	report.MetricsJSON = metricsJSON.String
	report.CreatedAt = time.Unix(createdAt, 0).UTC()

	return &report, nil
}

const reportColumns = `id, sprint_id, report_type, week_number, generated_at, summary_pt, summary_en, metrics_json, created_at`

func (r *reportStore) queryMany(ctx context.Context, tail string, args ...any) ([]*domain.SprintReport, error) {
	s := (*SQLiteStore)(r)
	rows, err := s.q.QueryContext(ctx, "SELECT "+reportColumns+" FROM sprint_reports "+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("query sprint reports: %w", err)
	}
	defer rows.Close()

	var reports []*domain.SprintReport
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sprint report: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sprint reports: %w", err)
	}
	return reports, nil
}

// GetByID retrieves a report by id.
func (r *reportStore) GetByID(ctx context.Context, id int64) (*domain.SprintReport, error) {
	s := (*SQLiteStore)(r)
	row := s.q.QueryRowContext(ctx, "SELECT "+reportColumns+" FROM sprint_reports WHERE id = ?", id)
	report, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan sprint report: %w", err)
	}
	return report, nil
}

// GetAll returns every report, newest first.
func (r *reportStore) GetAll(ctx context.Context) ([]*domain.SprintReport, error) {
	return r.queryMany(ctx, "ORDER BY generated_at DESC, id DESC")
}

// GetBySprint returns a sprint's reports, newest first.
func (r *reportStore) GetBySprint(ctx context.Context, sprintID int64) ([]*domain.SprintReport, error) {
	return r.queryMany(ctx, "WHERE sprint_id = ? ORDER BY generated_at DESC, id DESC", sprintID)
}

// Save inserts a new report row.
func (r *reportStore) Save(ctx context.Context, report *domain.SprintReport) error {
	s := (*SQLiteStore)(r)
	now := time.Now()
	report.CreatedAt = now
	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = now
	}

	var weekNumber any
	if report.WeekNumber != nil {
		weekNumber = *report.WeekNumber
	}

	res, err := s.q.ExecContext(ctx, `
		INSERT INTO sprint_reports (sprint_id, report_type, week_number, generated_at, summary_pt, summary_en, metrics_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		report.SprintID, report.ReportType, weekNumber,
		report.GeneratedAt.Unix(), report.SummaryPt, report.SummaryEn,
		report.MetricsJSON, now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert sprint report: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sprint report insert id: %w", err)
	}
	report.ID = id
	return nil
}
