// Package scheduler wires up the cron job that periodically removes
// recommendations past the retention window.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper deletes recommendations generated before a cutoff, returning
// the number of rows removed.
type Sweeper interface {
	DeleteRecommendationsOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Scheduler wraps robfig/cron and manages the retention sweep loop.
type Scheduler struct {
	cron      *cron.Cron
	sweeper   Sweeper
	retention time.Duration
	spec      string
	logger    *zap.Logger
}

// New creates a Scheduler that sweeps every intervalHours hours,
// deleting recommendations older than retention.
func New(sweeper Sweeper, retention time.Duration, intervalHours int, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:      cron.New(),
		sweeper:   sweeper,
		retention: retention,
		spec:      fmt.Sprintf("@every %dh", intervalHours),
		logger:    logger,
	}
}

// Start registers the job and starts the scheduler. Also runs one sweep
// immediately so a long-stopped instance catches up without waiting for
// the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runSweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Info("retention sweeper started", zap.String("spec", s.spec), zap.Duration("retention", s.retention))

	go s.runSweep(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("retention sweeper stopped")
}

func (s *Scheduler) runSweep(ctx context.Context) {
	cutoff := time.Now().Add(-s.retention)
	deleted, err := s.sweeper.DeleteRecommendationsOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error("retention sweep failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		s.logger.Info("retention sweep complete", zap.Int64("deleted", deleted), zap.Time("cutoff", cutoff))
	}
}
