package ckan

import (
	"errors"
	"fmt"
)

var (
	// ErrDatasetNotFound means the catalog has no package with the requested id.
	ErrDatasetNotFound = errors.New("dataset not found")
	// ErrNotAuthorized means the catalog refused access to the package.
	ErrNotAuthorized = errors.New("access to dataset denied")
	// ErrNoGeoJSONResource means the package lists no resource in GeoJSON format.
	ErrNoGeoJSONResource = errors.New("dataset has no geojson resource")
	// ErrPayloadTooLarge means a response body exceeded the download limit.
	ErrPayloadTooLarge = errors.New("payload exceeds size limit")
)

// APIError is any other non-success answer from the catalog or the resource host.
type APIError struct {
	Status  int
	Type    string
	Message string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("catalog API error: status %d: %s: %s", e.Status, e.Type, e.Message)
	}
	return fmt.Sprintf("catalog API error: status %d: %s", e.Status, e.Message)
}
