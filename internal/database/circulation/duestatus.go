package circulation

import (
	"time"

	"github.com/shelfward/shelfward/internal/entities"
)

// Classify derives the due status of an open line. daysLeft counts whole
// calendar days from today to the due date: negative means overdue, within
// the window means due-soon. The result is recomputed on every query and
// never persisted.
func Classify(dueDate, today time.Time, dueSoonWindowDays int) (entities.DueStatus, int) {
	daysLeft := daysBetween(today, dueDate)
	switch {
	case daysLeft < 0:
		return entities.DueStatusOverdue, daysLeft
	case daysLeft <= dueSoonWindowDays:
		return entities.DueStatusDueSoon, daysLeft
	default:
		return entities.DueStatusActive, daysLeft
	}
}

// Classify applies the engine's configured due-soon window and clock.
func (e *Engine) Classify(dueDate time.Time) (entities.DueStatus, int) {
	return Classify(dueDate, e.now(), e.policy.DueSoonWindowDays)
}

// daysBetween counts calendar days from a to b, ignoring the time of day.
func daysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
