package circulation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shelfward/shelfward/internal/entities"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestClassify(t *testing.T) {
	due := date(2025, time.January, 10)

	tests := []struct {
		name     string
		today    time.Time
		want     entities.DueStatus
		daysLeft int
	}{
		{"two days past due", date(2025, time.January, 12), entities.DueStatusOverdue, -2},
		{"five days before due", date(2025, time.January, 5), entities.DueStatusDueSoon, 5},
		{"window boundary", date(2025, time.January, 3), entities.DueStatusDueSoon, 7},
		{"outside window", date(2025, time.January, 2), entities.DueStatusActive, 8},
		{"due today", date(2025, time.January, 10), entities.DueStatusDueSoon, 0},
		{"one day overdue", date(2025, time.January, 11), entities.DueStatusOverdue, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, daysLeft := Classify(due, tt.today, 7)
			assert.Equal(t, tt.want, status)
			assert.Equal(t, tt.daysLeft, daysLeft)
		})
	}
}

func TestClassify_IgnoresTimeOfDay(t *testing.T) {
	due := time.Date(2025, time.January, 10, 23, 59, 0, 0, time.UTC)
	today := time.Date(2025, time.January, 10, 0, 1, 0, 0, time.UTC)

	status, daysLeft := Classify(due, today, 7)
	assert.Equal(t, entities.DueStatusDueSoon, status)
	assert.Zero(t, daysLeft)
}

func TestEngine_Classify_UsesPolicyAndClock(t *testing.T) {
	_, engine, cleanup := setupTestDB(t)
	defer cleanup()

	engine.SetNowFunc(func() time.Time { return date(2025, time.January, 12) })

	status, daysLeft := engine.Classify(date(2025, time.January, 10))
	assert.Equal(t, entities.DueStatusOverdue, status)
	assert.Equal(t, -2, daysLeft)
}
