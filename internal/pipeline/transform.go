package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/shelter-data-etl-service/internal/domain"
	"github.com/couchcryptid/shelter-data-etl-service/internal/observability"
)

// ShelterTransformer implements Transformer with the domain normalizer.
type ShelterTransformer struct {
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewTransformer creates a ShelterTransformer. A nil metrics disables
// counters, which the offline tools rely on.
func NewTransformer(metrics *observability.Metrics, logger *slog.Logger) *ShelterTransformer {
	return &ShelterTransformer{
		metrics: metrics,
		logger:  logger,
	}
}

// Transform normalizes a payload into a snapshot. It fails only when the
// payload is absent or not a feature collection; bad field values never fail
// the batch.
func (t *ShelterTransformer) Transform(_ context.Context, payload domain.RawPayload) (domain.Snapshot, error) {
	shelters, stats, err := domain.Normalize(payload.Body)
	if err != nil {
		return domain.Snapshot{}, err
	}

	if t.metrics != nil {
		t.metrics.RecordStats(stats)
	}
	if stats.AreaInvalid+stats.CapacityInvalid+stats.AccessibilityInvalid+stats.MalformedGeometry > 0 {
		t.logger.Warn("values replaced by defaults",
			"rows", stats.Rows,
			"area_invalid", stats.AreaInvalid,
			"capacity_invalid", stats.CapacityInvalid,
			"accessibility_invalid", stats.AccessibilityInvalid,
			"accessibility_unknown", stats.AccessibilityUnknown,
			"malformed_geometry", stats.MalformedGeometry,
		)
	}

	return domain.NewSnapshot(shelters, stats, domain.PayloadHash(payload.Body), payload.URL), nil
}
