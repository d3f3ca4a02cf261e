package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmatos-dev/plantrack/internal/domain"
)

// blockedDayStore is the blocked-day collection view of a SQLiteStore.
type blockedDayStore SQLiteStore

func scanBlockedDay(row rowScanner) (*domain.BlockedDay, error) {
	var day domain.BlockedDay
	var blockedDate string
	if err := row.Scan(&day.ID, &blockedDate, &day.DayOfWeek, &day.BlockType, &day.Reason, &day.HoursLost); err != nil {
		return nil, err
	}
	day.BlockedDate = parseDate(blockedDate)
	return &day, nil
}

func (b *blockedDayStore) queryMany(ctx context.Context, tail string, args ...any) ([]*domain.BlockedDay, error) {
	s := (*SQLiteStore)(b)
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, blocked_date, day_of_week, block_type, reason, hours_lost FROM blocked_days `+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("query blocked days: %w", err)
	}
	defer rows.Close()

	var days []*domain.BlockedDay
	for rows.Next() {
		day, err := scanBlockedDay(rows)
		if err != nil {
			return nil, fmt.Errorf("scan blocked day: %w", err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocked days: %w", err)
	}
	return days, nil
}

// GetByDate returns the blocked-day record for an exact date, if any.
func (b *blockedDayStore) GetByDate(ctx context.Context, date time.Time) (*domain.BlockedDay, error) {
	s := (*SQLiteStore)(b)
	row := s.q.QueryRowContext(ctx,
		`SELECT id, blocked_date, day_of_week, block_type, reason, hours_lost FROM blocked_days WHERE blocked_date = ?`,
		dateStr(date))
	day, err := scanBlockedDay(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan blocked day: %w", err)
	}
	return day, nil
}

// GetFrom returns blocked days on or after date, ascending.
func (b *blockedDayStore) GetFrom(ctx context.Context, date time.Time) ([]*domain.BlockedDay, error) {
	return b.queryMany(ctx, "WHERE blocked_date >= ? ORDER BY blocked_date ASC", dateStr(date))
}

// GetInDateRange returns blocked days within [from, to], ascending.
func (b *blockedDayStore) GetInDateRange(ctx context.Context, from, to time.Time) ([]*domain.BlockedDay, error) {
	return b.queryMany(ctx, "WHERE blocked_date BETWEEN ? AND ? ORDER BY blocked_date ASC", dateStr(from), dateStr(to))
}

// GetAll returns every blocked day, ascending.
func (b *blockedDayStore) GetAll(ctx context.Context) ([]*domain.BlockedDay, error) {
	return b.queryMany(ctx, "ORDER BY blocked_date ASC")
}

// Save inserts or replaces the record for the day's date.
func (b *blockedDayStore) Save(ctx context.Context, day *domain.BlockedDay) error {
	s := (*SQLiteStore)(b)
	if day.DayOfWeek == "" {
		day.DayOfWeek = domain.WeekdayAbbrev(day.BlockedDate)
	}
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO blocked_days (blocked_date, day_of_week, block_type, reason, hours_lost)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(blocked_date) DO UPDATE SET
			day_of_week = excluded.day_of_week,
			block_type = excluded.block_type,
			reason = excluded.reason,
			hours_lost = excluded.hours_lost`,
		dateStr(day.BlockedDate), day.DayOfWeek, day.BlockType, day.Reason, day.HoursLost,
	)
	if err != nil {
		return fmt.Errorf("upsert blocked day: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil && day.ID == 0 {
		day.ID = id
	}
	return nil
}
