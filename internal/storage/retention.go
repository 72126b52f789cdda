package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/shelter-data-etl-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
)

// Pruner deletes snapshots older than a cutoff.
type Pruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionCleaner prunes old snapshots on a cron schedule.
type RetentionCleaner struct {
	store     Pruner
	cron      *cron.Cron
	retention time.Duration
	clock     clockwork.Clock
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewRetentionCleaner schedules pruning with a standard five-field cron expression.
// The cleaner does nothing until Start is called.
func NewRetentionCleaner(store Pruner, schedule string, retentionDays int, metrics *observability.Metrics, logger *slog.Logger) (*RetentionCleaner, error) {
	if retentionDays <= 0 {
		return nil, errors.New("retention in days must be greater than zero")
	}

	c := &RetentionCleaner{
		store:     store,
		cron:      cron.New(),
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		clock:     clockwork.NewRealClock(),
		metrics:   metrics,
		logger:    logger,
	}
	if _, err := c.cron.AddFunc(schedule, func() {
		_, _ = c.Clean(context.Background())
	}); err != nil {
		return nil, fmt.Errorf("retention schedule %q: %w", schedule, err)
	}
	return c, nil
}

// SetClock swaps the time source used to compute the cutoff.
func (c *RetentionCleaner) SetClock(clock clockwork.Clock) {
	c.clock = clock
}

// Start runs the schedule in the background.
func (c *RetentionCleaner) Start() {
	c.cron.Start()
	c.logger.Info("retention cleaner started", "retention", c.retention)
}

// Stop halts the schedule and waits for a running cleanup to finish.
func (c *RetentionCleaner) Stop() {
	<-c.cron.Stop().Done()
}

// Clean deletes snapshots older than the retention window.
func (c *RetentionCleaner) Clean(ctx context.Context) (int64, error) {
	cutoff := c.clock.Now().Add(-c.retention)
	deleted, err := c.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		c.logger.Error("retention cleanup failed", "error", err)
		return 0, err
	}
	c.metrics.SnapshotsDeleted.Add(float64(deleted))
	c.logger.Info("old snapshots removed", "deleted", deleted, "cutoff", cutoff)
	return deleted, nil
}
