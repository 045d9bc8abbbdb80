package scheduler

import (
	"context"
	"time"

	"github.com/billforge/billforge/internal/config"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/service"
	"github.com/billforge/billforge/internal/types"
	"github.com/robfig/cron/v3"
)

// Scheduler runs the subscription expiry sweep on the configured cron
// schedule. The sweep itself is single-flight, so an overlapping tick is
// reported as skipped rather than queued.
type Scheduler struct {
	cron    *cron.Cron
	config  *config.Configuration
	logger  *logger.Logger
	sweeper service.SweeperService
}

func New(cfg *config.Configuration, sweeper service.SweeperService, logger *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		config:  cfg,
		logger:  logger,
		sweeper: sweeper,
	}
}

// Start registers the sweep job and starts the cron loop. It is a no-op when
// the sweeper is disabled.
func (s *Scheduler) Start() error {
	if !s.config.Sweeper.Enabled {
		s.logger.Infow("subscription expiry sweeper disabled")
		return nil
	}

	schedule := s.config.Sweeper.Schedule
	if _, err := s.cron.AddFunc(schedule, s.runSweep); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Infow("scheduled subscription expiry sweep", "schedule", schedule)
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Infow("stopped subscription expiry sweep scheduler")
}

func (s *Scheduler) runSweep() {
	// Scheduled runs execute under the system scope; per-item writes are
	// re-scoped to the owning tenant inside the sweep.
	ctx := types.SetTenantID(context.Background(), types.DefaultTenantID)
	ctx = types.SetUserID(ctx, types.DefaultUserID)

	now := time.Now().UTC()
	response, err := s.sweeper.Sweep(ctx, now)
	if err != nil {
		s.logger.Errorw("subscription expiry sweep failed", "error", err)
		return
	}
	if response.Skipped {
		s.logger.Warnw("subscription expiry sweep skipped, previous run still active", "now", now)
		return
	}

	s.logger.Infow("subscription expiry sweep finished",
		"total_processed", response.TotalProcessed,
		"total_success", response.TotalSuccess,
		"total_failed", response.TotalFailed)
}
