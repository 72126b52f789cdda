package ckan

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/shelter-data-etl-service/internal/domain"
	"github.com/couchcryptid/shelter-data-etl-service/internal/observability"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// Source label values for fetch metrics and logs.
const (
	SourceCache = "cache"
	SourceAPI   = "api"
)

// Catalog is the subset of Client the cached source needs.
type Catalog interface {
	PackageShow(ctx context.Context, id string) (Package, error)
	Fetch(ctx context.Context, resourceURL string) ([]byte, error)
}

// CachedSource serves the dataset payload from a TTL cache keyed by resource
// URL. Concurrent misses share one upstream request.
type CachedSource struct {
	catalog   Catalog
	datasetID string
	cache     *gocache.Cache
	group     singleflight.Group
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewCachedSource wraps a catalog with a payload cache.
func NewCachedSource(catalog Catalog, datasetID string, ttl time.Duration, metrics *observability.Metrics, logger *slog.Logger) *CachedSource {
	return &CachedSource{
		catalog:   catalog,
		datasetID: datasetID,
		cache:     gocache.New(ttl, 2*ttl),
		metrics:   metrics,
		logger:    logger,
	}
}

// Extract returns the current dataset payload, from cache when fresh.
func (s *CachedSource) Extract(ctx context.Context) (domain.RawPayload, error) {
	v, err, _ := s.group.Do(s.datasetID, func() (any, error) {
		return s.load(ctx)
	})
	if err != nil {
		s.metrics.FetchRequests.WithLabelValues(SourceAPI, "error").Inc()
		s.logger.Error("dataset fetch failed", "dataset_id", s.datasetID, "error", err)
		return domain.RawPayload{}, err
	}
	return v.(domain.RawPayload), nil
}

func (s *CachedSource) load(ctx context.Context) (domain.RawPayload, error) {
	resourceURL, err := s.resolve(ctx)
	if err != nil {
		return domain.RawPayload{}, err
	}

	if cached, ok := s.cache.Get(resourceURL); ok {
		payload := cached.(domain.RawPayload)
		payload.FromCache = true
		s.metrics.FetchRequests.WithLabelValues(SourceCache, "success").Inc()
		s.logger.Info("dataset fetched",
			"dataset_id", s.datasetID, "url", resourceURL, "source", SourceCache, "bytes", len(payload.Body))
		return payload, nil
	}

	body, err := s.catalog.Fetch(ctx, resourceURL)
	if err != nil {
		return domain.RawPayload{}, err
	}
	payload := domain.RawPayload{
		Body:      body,
		URL:       resourceURL,
		FetchedAt: time.Now().UTC(),
	}
	s.cache.SetDefault(resourceURL, payload)
	s.metrics.FetchRequests.WithLabelValues(SourceAPI, "success").Inc()
	s.logger.Info("dataset fetched",
		"dataset_id", s.datasetID, "url", resourceURL, "source", SourceAPI, "bytes", len(body))
	return payload, nil
}

// resolve finds the GeoJSON resource URL. The resolution is cached alongside
// the payload so a warm cache makes no catalog calls at all.
func (s *CachedSource) resolve(ctx context.Context) (string, error) {
	key := "resource:" + s.datasetID
	if u, ok := s.cache.Get(key); ok {
		return u.(string), nil
	}
	pkg, err := s.catalog.PackageShow(ctx, s.datasetID)
	if err != nil {
		return "", err
	}
	u, err := ResolveGeoJSONURL(pkg)
	if err != nil {
		return "", err
	}
	s.cache.SetDefault(key, u)
	return u, nil
}

// Invalidate drops every cached entry.
func (s *CachedSource) Invalidate() {
	s.cache.Flush()
}
