package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shelfward/shelfward/internal/config"
	"github.com/shelfward/shelfward/internal/tasks"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// OverdueDigestScheduler enqueues the periodic overdue digest task.
type OverdueDigestScheduler struct {
	taskClient *tasks.Client
	config     config.Digest

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewOverdueDigestScheduler creates a new scheduler instance.
func NewOverdueDigestScheduler(taskClient *tasks.Client, cfg config.Digest) *OverdueDigestScheduler {
	return &OverdueDigestScheduler{
		taskClient: taskClient,
		config:     cfg,
		cron:       cron.New(cron.WithParser(cronParser)),
	}
}

// Start begins the scheduler if the digest is enabled.
func (s *OverdueDigestScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.config.Enabled {
		log.Printf("Overdue digest scheduler: disabled")
		return nil
	}

	if _, err := cronParser.Parse(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.config.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.enqueueDigest()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule digest job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Overdue digest scheduler: started with schedule '%s'", s.config.Schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler.
func (s *OverdueDigestScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Overdue digest scheduler: stopped")
}

// RunNow enqueues an immediate digest.
func (s *OverdueDigestScheduler) RunNow() error {
	return s.enqueue(time.Now())
}

// IsRunning returns whether the scheduler is active.
func (s *OverdueDigestScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next digest will be enqueued.
func (s *OverdueDigestScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *OverdueDigestScheduler) enqueueDigest() {
	if err := s.enqueue(time.Now()); err != nil {
		log.Printf("Overdue digest: failed to enqueue: %v", err)
	}
}

func (s *OverdueDigestScheduler) enqueue(requestedAt time.Time) error {
	if s.taskClient == nil {
		return fmt.Errorf("task client not configured")
	}
	_, err := s.taskClient.Add(tasks.OverdueDigestTask{RequestedAt: requestedAt}).Save()
	return err
}
