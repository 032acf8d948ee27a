package sync

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/ristora/fronthouse/internal/logging"
	"github.com/ristora/fronthouse/internal/metrics"
)

// Recomputer runs the menu availability recompute on a schedule. The
// realtime watcher already triggers recomputes on inventory and recipe
// changes; the schedule catches notifications lost to reconnects.
type Recomputer struct {
	cron      *cron.Cron
	schedule  string
	recompute func(ctx context.Context) error
	metrics   *metrics.Metrics
	logger    *logging.Logger
}

// NewRecomputer creates a scheduled recomputer. schedule is a standard
// five-field cron expression.
func NewRecomputer(schedule string, recompute func(ctx context.Context) error, m *metrics.Metrics, logger *logging.Logger) *Recomputer {
	return &Recomputer{
		cron:      cron.New(),
		schedule:  schedule,
		recompute: recompute,
		metrics:   m,
		logger:    logger,
	}
}

// Start registers the schedule and starts the cron runner.
func (r *Recomputer) Start(ctx context.Context) error {
	_, err := r.cron.AddFunc(r.schedule, func() {
		r.Run(ctx)
	})
	if err != nil {
		return err
	}
	r.cron.Start()
	r.logger.WithFields(map[string]any{"schedule": r.schedule}).Info("availability recompute scheduled")
	return nil
}

// Run executes one recompute immediately.
func (r *Recomputer) Run(ctx context.Context) {
	if err := r.recompute(ctx); err != nil {
		r.logger.WithContext(ctx).WithError(err).Warn("scheduled availability recompute failed")
		return
	}
	r.metrics.RecordRecompute()
}

// Stop halts the cron runner and waits for a running job to finish.
func (r *Recomputer) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}
