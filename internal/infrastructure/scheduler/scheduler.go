package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/adhocore/gronx"
)

// DefaultCron runs housekeeping every five minutes.
const DefaultCron = "*/5 * * * *"

// Job is one housekeeping step. Errors are logged; the schedule keeps going.
type Job struct {
	Name string
	Run  func(ctx context.Context, now time.Time) error
}

// Scheduler wakes on a cron expression and runs its jobs in order.
type Scheduler struct {
	cron   string
	jobs   []Job
	logger *slog.Logger
	now    func() time.Time
}

// New validates cronExpr; an empty expression means DefaultCron.
func New(cronExpr string, logger *slog.Logger, jobs ...Job) (*Scheduler, error) {
	if cronExpr == "" {
		cronExpr = DefaultCron
	}
	if !gronx.IsValid(cronExpr) {
		return nil, fmt.Errorf("scheduler: invalid cron expression %q", cronExpr)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{cron: cronExpr, jobs: jobs, logger: logger, now: time.Now}, nil
}

// Next returns the first tick strictly after t.
func (s *Scheduler) Next(t time.Time) (time.Time, error) {
	return gronx.NextTickAfter(s.cron, t, false)
}

// RunOnce executes every job once.
func (s *Scheduler) RunOnce(ctx context.Context) {
	now := s.now()
	for _, j := range s.jobs {
		start := time.Now()
		if err := j.Run(ctx, now); err != nil {
			s.logger.Error("housekeeping_job_failed", "job", j.Name, "error", err)
			continue
		}
		s.logger.Debug("housekeeping_job_done", "job", j.Name, "took", time.Since(start))
	}
}

// Run blocks until ctx is done, running the jobs at every tick.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("housekeeping_started", "cron", s.cron, "jobs", len(s.jobs))
	for {
		next, err := s.Next(s.now().UTC())
		wait := time.Until(next)
		if err != nil {
			s.logger.Error("housekeeping_nexttick_failed", "cron", s.cron, "error", err)
			wait = 30 * time.Second
		}
		if wait < 0 {
			wait = 0
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("housekeeping_stopping")
			return
		case <-timer.C:
		}
		if err == nil {
			s.RunOnce(ctx)
		}
	}
}
