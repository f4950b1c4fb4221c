// Package scheduler runs the housekeeping jobs of the remedy service. The
// dataset itself is immutable; jobs only trim rate limiter state and watch the
// data file for changes that need a restart.
package scheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/pri779/Ayurvedic-chatbot/interfaces"
	"github.com/pri779/Ayurvedic-chatbot/logging"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

const (
	bucketCleanupInterval = 30 * time.Minute
	driftCheckInterval    = time.Hour
)

// BucketCleaner drops idle rate limiter buckets
type BucketCleaner interface {
	Cleanup() int
}

// DriftChecker compares the data file on disk with what was loaded
type DriftChecker interface {
	CheckDrift() (bool, error)
	Source() string
}

// Scheduler runs housekeeping using injected dependencies. Any of them
// may be nil, in which case the job is not scheduled.
type Scheduler struct {
	limiter   BucketCleaner
	drift     DriftChecker
	scheduler *gocron.Scheduler
}

// NewScheduler creates a new scheduler instance with injected dependencies
func NewScheduler(limiter BucketCleaner, drift DriftChecker) *Scheduler {
	return &Scheduler{
		limiter:   limiter,
		drift:     drift,
		scheduler: gocron.NewScheduler(time.Local),
	}
}

// Start schedules the jobs and runs them asynchronously
func (s *Scheduler) Start() error {
	if s.limiter != nil {
		if err := s.every(bucketCleanupInterval, s.cleanupBuckets); err != nil {
			return fmt.Errorf("failed to schedule rate limiter cleanup: %w", err)
		}
	}
	if s.drift != nil {
		if err := s.every(driftCheckInterval, s.checkDrift); err != nil {
			return fmt.Errorf("failed to schedule data file check: %w", err)
		}
	}

	s.scheduler.StartAsync()
	logging.Info("Scheduler started", "jobs", s.scheduler.Len())

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) every(interval time.Duration, job func()) error {
	_, err := s.scheduler.Every(interval).WaitForSchedule().Do(job)
	if err != nil {
		logging.Error("Failed to schedule job", "interval", interval.String(), "error", err)
	}
	return err
}

func (s *Scheduler) cleanupBuckets() {
	remaining := s.limiter.Cleanup()
	logging.Debug("Rate limiter cleanup completed", "buckets", remaining)
}

func (s *Scheduler) checkDrift() {
	drifted, err := s.drift.CheckDrift()
	if err != nil {
		logging.Warn("Data file check failed", "file", s.drift.Source(), "error", err)
		return
	}
	if drifted {
		logging.Warn("Data file changed since startup, restart to apply", "file", s.drift.Source())
	}
}
