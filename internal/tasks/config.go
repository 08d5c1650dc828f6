package tasks

import "time"

// Config tunes the background queue that runs digest jobs.
type Config struct {
	// Workers is how many tasks may execute concurrently.
	Workers int

	// MaxRetries bounds re-attempts for a failing task.
	MaxRetries int

	// RetryDelay is the backoff between attempts.
	RetryDelay time.Duration

	// TaskTimeout cancels a task's context after this long.
	TaskTimeout time.Duration

	// ReleaseAfter returns a claimed-but-stalled task to the queue.
	ReleaseAfter time.Duration

	// CleanupInterval is how often completed rows are pruned.
	CleanupInterval time.Duration

	// RetentionDuration keeps completed rows around for inspection.
	RetentionDuration time.Duration
}

// DefaultConfig returns the settings used when nothing is configured.
// Digest work is light, so the pool stays small.
func DefaultConfig() Config {
	return Config{
		Workers:           2,
		MaxRetries:        3,
		RetryDelay:        1 * time.Minute,
		TaskTimeout:       5 * time.Minute,
		ReleaseAfter:      15 * time.Minute,
		CleanupInterval:   1 * time.Hour,
		RetentionDuration: 24 * time.Hour,
	}
}
