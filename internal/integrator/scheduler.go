package integrator

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Runner is one integration pass over the pending reports.
type Runner interface {
	Run(ctx context.Context) ([]ReportResult, error)
}

// Scheduler executes integration runs on a cron schedule. Runs happen
// inline on cron's scheduling goroutine, so they can never overlap.
type Scheduler struct {
	runner Runner
	logger *zap.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(runner Runner, logger *zap.Logger) *Scheduler {
	return &Scheduler{runner: runner, logger: logger}
}

// Start registers the run on the given cron expression and blocks until
// the context is cancelled.
func (s *Scheduler) Start(ctx context.Context, schedule, timezone string) error {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}

	c := cron.New(cron.WithLocation(loc))
	_, err = c.AddFunc(schedule, func() {
		s.logger.Info("Starting scheduled integration run")
		if _, err := s.runner.Run(ctx); err != nil {
			s.logger.Error("Integration run aborted", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	c.Start()
	s.logger.Info("Scheduler started",
		zap.String("schedule", schedule),
		zap.String("timezone", timezone))

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
