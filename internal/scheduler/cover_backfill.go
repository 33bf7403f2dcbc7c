// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Andrei800/booknest/internal/metadata"
)

// CoverBackfillScheduler periodically enriches books that have no cover.
type CoverBackfillScheduler struct {
	enricher *metadata.Enricher
	schedule string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

func NewCoverBackfillScheduler(enricher *metadata.Enricher, schedule string) *CoverBackfillScheduler {
	return &CoverBackfillScheduler{
		enricher: enricher,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start schedules the backfill job. The scheduler stops itself when ctx is
// cancelled.
func (s *CoverBackfillScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runBackfill()
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Cover backfill scheduler: started with schedule '%s'", s.schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *CoverBackfillScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Cover backfill scheduler: stopped")
}

// RunNow triggers an immediate backfill without waiting for the schedule.
func (s *CoverBackfillScheduler) RunNow() {
	go s.runBackfill()
}

// IsRunning reports whether the scheduler is active.
func (s *CoverBackfillScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next backfill will occur, or nil when the
// scheduler is stopped.
func (s *CoverBackfillScheduler) NextRunTime() *time.Time {
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

func (s *CoverBackfillScheduler) runBackfill() {
	log.Printf("Cover backfill: starting")
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	result, err := s.enricher.EnrichAllMissing(ctx)
	if err != nil {
		log.Printf("Cover backfill: failed: %v", err)
		return
	}

	log.Printf("Cover backfill: enriched %d of %d books (%d failed, %d skipped) in %v",
		result.Enriched, result.TotalBooks, result.Failed, result.Skipped,
		time.Since(startTime).Round(time.Millisecond))
}
