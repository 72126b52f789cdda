package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samber/lo"
)

// ErrNoData is returned when there is no payload to normalize. Callers treat
// it as "no data available" and stop before any partial processing.
var ErrNoData = errors.New("no data available")

// NormalizeStats counts values that were replaced by a default during
// normalization. Nothing here is an error; the counters only make the silent
// substitutions visible.
type NormalizeStats struct {
	Rows                 int `json:"rows"`
	AreaInvalid          int `json:"area_invalid"`
	CapacityInvalid      int `json:"capacity_invalid"`
	AccessibilityUnknown int `json:"accessibility_unknown"`
	AccessibilityInvalid int `json:"accessibility_invalid"`
	MalformedGeometry    int `json:"malformed_geometry"`
}

// ParseFeatureCollection decodes a fetched GeoJSON payload.
func ParseFeatureCollection(payload []byte) (FeatureCollection, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return FeatureCollection{}, ErrNoData
	}
	var fc FeatureCollection
	if err := json.Unmarshal(payload, &fc); err != nil {
		return FeatureCollection{}, fmt.Errorf("parse feature collection: %w", err)
	}
	// A JSON null body or a document without a features member carries no
	// data; an explicit empty array is a valid empty register.
	if fc.Features == nil {
		return FeatureCollection{}, ErrNoData
	}
	return fc, nil
}

// Normalize parses a payload and runs the full record normalizer over it.
func Normalize(payload []byte) ([]Shelter, NormalizeStats, error) {
	fc, err := ParseFeatureCollection(payload)
	if err != nil {
		return nil, NormalizeStats{}, err
	}
	shelters, stats := NormalizeShelters(fc.Features)
	return shelters, stats, nil
}

// NormalizeShelters cleans every feature column by column and reassembles the
// canonical records. It returns exactly one Shelter per feature, in input
// order, whatever the state of its fields. The register number is not carried
// over.
func NormalizeShelters(features []RawFeature) ([]Shelter, NormalizeStats) {
	stats := NormalizeStats{Rows: len(features)}
	if len(features) == 0 {
		return []Shelter{}, stats
	}

	text := func(pick func(RawProperties) RawValue) []string {
		return lo.Map(features, func(f RawFeature, _ int) string {
			return pick(f.Properties).Text()
		})
	}

	names := Column(text(func(p RawProperties) RawValue { return p.Name }), CleanShelterName)
	communities := Column(text(func(p RawProperties) RawValue { return p.OTG }), CleanCommunity)
	settlements := Column(text(func(p RawProperties) RawValue { return p.City }), CleanSettlement)
	districts := Column(text(func(p RawProperties) RawValue { return p.Rajon }), CleanCategory)
	addresses := Column(text(func(p RawProperties) RawValue { return p.Adress }), CleanAddress)
	shelterTypes := Column(text(func(p RawProperties) RawValue { return p.Type }), CleanCategory)
	buildingKinds := Column(text(func(p RawProperties) RawValue { return p.TypeZs }), CleanCategory)

	areas, areaInvalid := numericColumn(lo.Map(features, func(f RawFeature, _ int) RawValue {
		return f.Properties.Area
	}))
	capacities, capacityInvalid := numericColumn(lo.Map(features, func(f RawFeature, _ int) RawValue {
		return f.Properties.People
	}))
	stats.AreaInvalid = areaInvalid
	stats.CapacityInvalid = capacityInvalid

	shelters := make([]Shelter, len(features))
	for i, f := range features {
		accessible, known := CleanAccessibility(f.Properties.Bezbar)
		if !known {
			stats.AccessibilityUnknown++
		} else if _, ok := ParseBoolean(StrictClean(f.Properties.Bezbar.Text())); !ok {
			stats.AccessibilityInvalid++
		}

		lon, lat, ok := ExtractCoordinates(f.Geometry)
		if !ok {
			stats.MalformedGeometry++
		}

		shelters[i] = Shelter{
			Name:            names[i],
			Community:       communities[i],
			Settlement:      settlements[i],
			District:        districts[i],
			Area:            areas[i],
			Capacity:        capacities[i],
			BuildingKind:    buildingKinds[i],
			ShelterType:     shelterTypes[i],
			Accessible:      accessible,
			AccessibleKnown: known,
			Address:         addresses[i],
			Longitude:       lon,
			Latitude:        lat,
		}
	}
	return shelters, stats
}

// numericColumn coerces a column and counts values that were present but
// could not be read as numbers. Missing values are null without counting.
func numericColumn(values []RawValue) ([]*float64, int) {
	invalid := 0
	out := lo.Map(values, func(v RawValue, _ int) *float64 {
		f := numericOrNil(v)
		if f == nil && !v.IsNull() {
			invalid++
		}
		return f
	})
	return out, invalid
}
