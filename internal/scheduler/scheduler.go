// Package scheduler runs the periodic jobs: the weekly runway digest and
// pruning of the local cache.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/salary-bridge/internal/storage"
)

// DigestSender is satisfied by the service
type DigestSender interface {
	SendDigests(ctx context.Context) (int, error)
}

// Jobs configures which jobs run and when. Empty schedules disable a job.
type Jobs struct {
	DigestSchedule string
	PruneSchedule  string
	Retention      time.Duration
	Digest         DigestSender
	Pruner         storage.Pruner
}

// Scheduler wraps a cron runner
type Scheduler struct {
	cron *cron.Cron
	jobs Jobs
	log  *logrus.Logger
	now  func() time.Time
}

// New registers the configured jobs
func New(jobs Jobs, log *logrus.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		jobs: jobs,
		log:  log,
		now:  time.Now,
	}

	if jobs.DigestSchedule != "" && jobs.Digest != nil {
		if _, err := s.cron.AddFunc(jobs.DigestSchedule, func() { s.RunDigest(context.Background()) }); err != nil {
			return nil, fmt.Errorf("invalid digest schedule %q: %w", jobs.DigestSchedule, err)
		}
	}
	if jobs.PruneSchedule != "" && jobs.Pruner != nil && jobs.Retention > 0 {
		if _, err := s.cron.AddFunc(jobs.PruneSchedule, func() { s.RunPrune(context.Background()) }); err != nil {
			return nil, fmt.Errorf("invalid prune schedule %q: %w", jobs.PruneSchedule, err)
		}
	}
	return s, nil
}

// JobCount returns the number of registered jobs
func (s *Scheduler) JobCount() int {
	return len(s.cron.Entries())
}

// Run starts the scheduler and blocks until ctx is done, then waits for
// running jobs to finish
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Infof("Scheduler started with %d jobs", s.JobCount())
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.log.Info("Scheduler stopped")
	return nil
}

// RunDigest sends the weekly digest once
func (s *Scheduler) RunDigest(ctx context.Context) {
	sent, err := s.jobs.Digest.SendDigests(ctx)
	if err != nil {
		s.log.Errorf("Digest job failed after %d emails: %v", sent, err)
		return
	}
	s.log.Infof("Digest job finished: %d emails", sent)
}

// RunPrune drops cache entries older than the retention window once
func (s *Scheduler) RunPrune(ctx context.Context) {
	cutoff := s.now().Add(-s.jobs.Retention)
	n, err := s.jobs.Pruner.Prune(ctx, cutoff)
	if err != nil && !errors.Is(err, context.Canceled) {
		s.log.Errorf("Cache prune failed: %v", err)
		return
	}
	s.log.Infof("Pruned %d cache entries older than %s", n, cutoff.Format(time.RFC3339))
}
