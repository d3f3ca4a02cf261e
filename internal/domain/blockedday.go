package domain

import "time"

// BlockedDay marks a single calendar date as non-working. It is independent
// of tasks; a date may carry a task, a blocked day, neither, or both.
type BlockedDay struct {
	ID          int64     `json:"id"`
	BlockedDate time.Time `json:"blockedDate"`
	DayOfWeek   string    `json:"dayOfWeek"`
	BlockType   BlockType `json:"blockType"`
	Reason      string    `json:"reason"`
	HoursLost   float64   `json:"hoursLost"`
}
