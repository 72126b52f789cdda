package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/shelter-data-etl-service/internal/domain"
	"github.com/couchcryptid/shelter-data-etl-service/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/jonboulle/clockwork"
)

// Extractor returns the current raw dataset payload.
type Extractor interface {
	Extract(ctx context.Context) (domain.RawPayload, error)
}

// Transformer converts a raw payload into a snapshot.
type Transformer interface {
	Transform(ctx context.Context, payload domain.RawPayload) (domain.Snapshot, error)
}

// SnapshotLoader receives every new snapshot (Kafka, SQL store).
type SnapshotLoader interface {
	Name() string
	LoadSnapshot(ctx context.Context, snap domain.Snapshot) error
}

// Refresh outcomes, used as metric labels.
const (
	OutcomeUpdated   = "updated"
	OutcomeUnchanged = "unchanged"
	OutcomeNoData    = "no_data"
	OutcomeError     = "error"
)

const initialBackoff = 2 * time.Second

// Refresher keeps the current snapshot fresh. The snapshot is swapped
// atomically, so readers never see a half-built table.
type Refresher struct {
	extractor   Extractor
	transformer Transformer
	loaders     []SnapshotLoader
	interval    time.Duration
	logger      *slog.Logger
	metrics     *observability.Metrics
	clock       clockwork.Clock

	current atomic.Pointer[domain.Snapshot]
}

// New creates a Refresher that refreshes every interval.
func New(e Extractor, t Transformer, interval time.Duration, logger *slog.Logger, metrics *observability.Metrics, loaders ...SnapshotLoader) *Refresher {
	return &Refresher{
		extractor:   e,
		transformer: t,
		loaders:     loaders,
		interval:    interval,
		logger:      logger,
		metrics:     metrics,
		clock:       clockwork.NewRealClock(),
	}
}

// SetClock swaps the time source driving the refresh schedule.
func (r *Refresher) SetClock(c clockwork.Clock) {
	r.clock = c
}

// Snapshot returns the snapshot being served, or domain.ErrNoData before the
// first successful refresh.
func (r *Refresher) Snapshot() (domain.Snapshot, error) {
	snap := r.current.Load()
	if snap == nil {
		return domain.Snapshot{}, domain.ErrNoData
	}
	return *snap, nil
}

// Seed installs a previously stored snapshot so the service can answer
// before its first fetch. It is ignored once a snapshot exists.
func (r *Refresher) Seed(snap domain.Snapshot) bool {
	if !r.current.CompareAndSwap(nil, &snap) {
		return false
	}
	r.metrics.RecordSnapshot(snap)
	r.logger.Info("snapshot seeded from store", "shelters", len(snap.Shelters), "payload_hash", snap.PayloadHash)
	return true
}

// CheckReadiness returns nil once a snapshot is available.
func (r *Refresher) CheckReadiness(_ context.Context) error {
	if r.current.Load() == nil {
		return errors.New("no shelter snapshot has been built yet")
	}
	return nil
}

// Run refreshes immediately and then on every interval until the context is
// cancelled. Until a first snapshot exists, failures are retried with
// exponential backoff instead of waiting a full interval.
func (r *Refresher) Run(ctx context.Context) error {
	r.logger.Info("refresher started", "interval", r.interval)
	r.metrics.RefresherRunning.Set(1)
	defer r.metrics.RefresherRunning.Set(0)

	backoff := initialBackoff
	for {
		wait := r.interval
		if _, err := r.Refresh(ctx); err != nil && r.current.Load() == nil {
			wait = min(backoff, r.interval)
			backoff = retry.NextBackoff(backoff, r.interval)
		} else {
			backoff = initialBackoff
		}

		select {
		case <-ctx.Done():
			r.logger.Info("refresher stopping", "reason", ctx.Err())
			return nil
		case <-r.clock.After(wait):
		}
	}
}

// Refresh runs one fetch-normalize-load cycle. It reports whether a new
// snapshot was installed. A failed fetch leaves the current snapshot in place.
func (r *Refresher) Refresh(ctx context.Context) (bool, error) {
	start := r.clock.Now()
	defer func() {
		r.metrics.RefreshDuration.Observe(r.clock.Since(start).Seconds())
	}()

	payload, err := r.extractor.Extract(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		r.metrics.Refreshes.WithLabelValues(OutcomeNoData).Inc()
		r.logger.Error("dataset unavailable", "error", err, "serving_previous", r.current.Load() != nil)
		return false, fmt.Errorf("%w: %w", domain.ErrNoData, err)
	}

	hash := domain.PayloadHash(payload.Body)
	if prev := r.current.Load(); prev != nil && prev.PayloadHash == hash {
		r.metrics.Refreshes.WithLabelValues(OutcomeUnchanged).Inc()
		r.logger.Debug("dataset unchanged", "payload_hash", hash, "from_cache", payload.FromCache)
		return false, nil
	}

	snap, err := r.transformer.Transform(ctx, payload)
	if errors.Is(err, domain.ErrNoData) {
		r.metrics.Refreshes.WithLabelValues(OutcomeNoData).Inc()
		r.logger.Error("dataset is empty", "url", payload.URL, "serving_previous", r.current.Load() != nil)
		return false, err
	}
	if err != nil {
		r.metrics.Refreshes.WithLabelValues(OutcomeError).Inc()
		r.logger.Error("normalize dataset failed", "error", err, "url", payload.URL)
		return false, fmt.Errorf("normalize dataset: %w", err)
	}

	r.current.Store(&snap)
	r.metrics.Refreshes.WithLabelValues(OutcomeUpdated).Inc()
	r.metrics.RecordSnapshot(snap)
	r.logger.Info("snapshot updated",
		"shelters", len(snap.Shelters),
		"payload_hash", snap.PayloadHash,
		"url", snap.SourceURL,
	)

	r.load(ctx, snap)
	return true, nil
}

// load hands the snapshot to every loader. Loader failures are logged and
// counted; the snapshot is served regardless.
func (r *Refresher) load(ctx context.Context, snap domain.Snapshot) {
	for _, l := range r.loaders {
		if err := l.LoadSnapshot(ctx, snap); err != nil {
			r.metrics.LoaderErrors.WithLabelValues(l.Name()).Inc()
			r.logger.Error("snapshot loader failed", "loader", l.Name(), "error", err)
		}
	}
}
