package ckan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/shelter-data-etl-service/internal/observability"
	"golang.org/x/time/rate"
)

// maxPayloadBytes bounds a downloaded resource.
const maxPayloadBytes = 64 << 20

// Package is the part of a CKAN package_show result the service uses.
type Package struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Title     string     `json:"title"`
	Resources []Resource `json:"resources"`
}

// Resource is one distributable file of a package.
type Resource struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Format string `json:"format"`
	URL    string `json:"url"`
}

// Client talks to a CKAN action API and downloads resources.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxBytes   int64
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a catalog client. requestsPerSecond <= 0 disables rate
// limiting.
func NewClient(baseURL string, timeout time.Duration, requestsPerSecond float64, metrics *observability.Metrics, logger *slog.Logger) *Client {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter:  rate.NewLimiter(limit, 1),
		maxBytes: maxPayloadBytes,
		metrics:  metrics,
		logger:   logger,
	}
}

// PackageShow fetches package metadata by id or name.
func (c *Client) PackageShow(ctx context.Context, id string) (Package, error) {
	u := c.baseURL + "/api/3/action/package_show?" + url.Values{"id": {id}}.Encode()

	body, status, err := c.get(ctx, u)
	if err != nil {
		return Package{}, fmt.Errorf("package_show %s: %w", id, err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if status != http.StatusOK {
			return Package{}, fmt.Errorf("package_show %s: %w", id, classify(status, apiError{Message: truncate(body)}))
		}
		return Package{}, fmt.Errorf("decode package_show: %w", err)
	}
	if status != http.StatusOK || !env.Success {
		var e apiError
		if env.Error != nil {
			e = *env.Error
		}
		return Package{}, fmt.Errorf("package_show %s: %w", id, classify(status, e))
	}

	var pkg Package
	if err := json.Unmarshal(env.Result, &pkg); err != nil {
		return Package{}, fmt.Errorf("decode package: %w", err)
	}
	return pkg, nil
}

// ResolveGeoJSONURL returns the URL of the first resource declared as GeoJSON.
func ResolveGeoJSONURL(pkg Package) (string, error) {
	for _, r := range pkg.Resources {
		if strings.EqualFold(strings.TrimSpace(r.Format), "geojson") && r.URL != "" {
			return r.URL, nil
		}
	}
	return "", fmt.Errorf("%s: %w", pkg.Name, ErrNoGeoJSONResource)
}

// Fetch downloads a resource body.
func (c *Client) Fetch(ctx context.Context, resourceURL string) ([]byte, error) {
	body, status, err := c.get(ctx, resourceURL)
	if err != nil {
		return nil, fmt.Errorf("fetch resource: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("fetch resource: %w", &APIError{Status: status, Message: truncate(body)})
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.FetchAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > c.maxBytes {
		return nil, resp.StatusCode, fmt.Errorf("%s: %w (%d bytes)", u, ErrPayloadTooLarge, c.maxBytes)
	}
	c.logger.Debug("catalog request", "url", u, "status", resp.StatusCode, "bytes", len(body))
	return body, resp.StatusCode, nil
}

// CKAN action API response types.

type envelope struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Error   *apiError       `json:"error"`
}

type apiError struct {
	Type    string `json:"__type"`
	Message string `json:"message"`
}

func classify(status int, e apiError) error {
	switch {
	case status == http.StatusNotFound || e.Type == "Not Found Error":
		return ErrDatasetNotFound
	case status == http.StatusForbidden || status == http.StatusUnauthorized || e.Type == "Authorization Error":
		return ErrNotAuthorized
	default:
		return &APIError{Status: status, Type: e.Type, Message: e.Message}
	}
}

func truncate(body []byte) string {
	const limit = 512
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
