package domain

import (
	"strings"
	"time"
)

// DateOf strips the time-of-day component, keeping the calendar date in UTC.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsWorkDay reports whether d is a working day. The delivery calendar rests
// on Saturdays only; Sunday through Friday are working days.
func IsWorkDay(d time.Time) bool {
	return d.Weekday() != time.Saturday
}

// WeekdayAbbrev returns the three-letter upper-case weekday name ("MON").
func WeekdayAbbrev(d time.Time) string {
	return strings.ToUpper(d.Weekday().String()[:3])
}

// WeekWindow returns the Monday and Sunday bounding the week containing d.
func WeekWindow(d time.Time) (start, end time.Time) {
	day := DateOf(d)
	offset := (int(day.Weekday()) + 6) % 7 // days since Monday
	start = day.AddDate(0, 0, -offset)
	end = start.AddDate(0, 0, 6)
	return start, end
}
