package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// LoanReporter provides the loan line counts the digest summarizes.
type LoanReporter interface {
	ListLibrarianIDs() ([]uint, error)
	OpenLineCounts(librarianID uint, today time.Time) (overdue, dueSoon int, err error)
}

// OverdueDigestTask computes the overdue and due-soon loan counts for every
// librarian and logs a summary. Nothing is written back; due status stays a
// derived value.
type OverdueDigestTask struct {
	RequestedAt time.Time `json:"requested_at"`
}

// Config returns the queue configuration for digest tasks.
func (t OverdueDigestTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "overdue_digest",
		MaxAttempts: 2,
		Backoff:     time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// OverdueDigestProcessor creates a processor function for OverdueDigestTask.
func OverdueDigestProcessor(reporter LoanReporter) backlite.QueueProcessor[OverdueDigestTask] {
	return func(ctx context.Context, task OverdueDigestTask) error {
		if reporter == nil {
			return fmt.Errorf("loan reporter not configured")
		}

		today := task.RequestedAt
		if today.IsZero() {
			today = time.Now()
		}

		librarianIDs, err := reporter.ListLibrarianIDs()
		if err != nil {
			return fmt.Errorf("overdue digest: list librarians: %w", err)
		}

		var totalOverdue, totalDueSoon int
		for _, id := range librarianIDs {
			overdue, dueSoon, err := reporter.OpenLineCounts(id, today)
			if err != nil {
				return fmt.Errorf("overdue digest: librarian %d: %w", id, err)
			}
			if overdue > 0 || dueSoon > 0 {
				log.Printf("[TASK] Overdue digest: librarian %d has %d overdue and %d due-soon lines", id, overdue, dueSoon)
			}
			totalOverdue += overdue
			totalDueSoon += dueSoon
		}

		log.Printf("[TASK] Overdue digest: %d librarians, %d overdue, %d due soon", len(librarianIDs), totalOverdue, totalDueSoon)
		return nil
	}
}

// NewOverdueDigestQueue creates a backlite queue for digest tasks.
func NewOverdueDigestQueue(reporter LoanReporter) backlite.Queue {
	return backlite.NewQueue(OverdueDigestProcessor(reporter))
}
