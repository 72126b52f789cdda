package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
)

// RawValue holds one property exactly as it appeared in the payload. Fields in
// the register switch between strings, numbers, booleans and null from row to
// row, so decoding is deferred to the field cleaners.
type RawValue []byte

// UnmarshalJSON keeps a copy of the raw token.
func (v *RawValue) UnmarshalJSON(b []byte) error {
	*v = append((*v)[:0], b...)
	return nil
}

// MarshalJSON writes the raw token back, or null when absent.
func (v RawValue) MarshalJSON() ([]byte, error) {
	if len(v) == 0 {
		return []byte("null"), nil
	}
	return v, nil
}

// IsNull reports whether the value was absent or JSON null.
func (v RawValue) IsNull() bool {
	t := bytes.TrimSpace(v)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// IsNumber reports whether the token is a JSON number literal.
func (v RawValue) IsNumber() bool {
	t := bytes.TrimSpace(v)
	return len(t) > 0 && (t[0] == '-' || (t[0] >= '0' && t[0] <= '9'))
}

// Number returns the value when the token is a JSON number that fits a
// float64.
func (v RawValue) Number() (float64, bool) {
	if !v.IsNumber() {
		return 0, false
	}
	t := bytes.TrimSpace(v)
	f, err := strconv.ParseFloat(string(t), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Text renders the value as a string: strings are unquoted, numbers and
// booleans keep their literal spelling, null becomes "".
func (v RawValue) Text() string {
	if v.IsNull() {
		return ""
	}
	t := bytes.TrimSpace(v)
	if t[0] == '"' {
		var s string
		if err := json.Unmarshal(t, &s); err == nil {
			return s
		}
	}
	return string(t)
}

// RawProperties is the property bag of one feature, keyed by the source
// column names. "Number" is an internal register number and is discarded.
type RawProperties struct {
	Name   RawValue `json:"Name"`
	OTG    RawValue `json:"OTG"`
	City   RawValue `json:"City"`
	Rajon  RawValue `json:"Rajon"`
	Area   RawValue `json:"Area"`
	Adress RawValue `json:"Adress"`
	Type   RawValue `json:"Type"`
	TypeZs RawValue `json:"TypeZs"`
	People RawValue `json:"People"`
	Bezbar RawValue `json:"Bezbar"`
	Number RawValue `json:"Number,omitempty"`
}

// RawGeometry is the feature geometry. Coordinates stay raw because malformed
// rows must not fail decoding of the whole collection.
type RawGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// RawFeature is one shelter as published by the portal.
type RawFeature struct {
	Type       string        `json:"type"`
	Properties RawProperties `json:"properties"`
	Geometry   *RawGeometry  `json:"geometry"`
}

// FeatureCollection is the GeoJSON document served by the portal.
type FeatureCollection struct {
	Type     string       `json:"type"`
	Features []RawFeature `json:"features"`
}

// RawPayload is a fetched dataset body plus where it came from.
type RawPayload struct {
	Body      []byte
	URL       string
	FromCache bool
	FetchedAt time.Time
}

// Shelter is the canonical, type-correct record for one shelter.
type Shelter struct {
	Name            string   `json:"name"`
	Community       string   `json:"community"`
	Settlement      string   `json:"settlement"`
	District        string   `json:"district"`
	Area            *float64 `json:"area"`
	Capacity        *float64 `json:"capacity"`
	BuildingKind    string   `json:"building_kind"`
	ShelterType     string   `json:"shelter_type"`
	Accessible      bool     `json:"accessible"`
	AccessibleKnown bool     `json:"accessible_known"`
	Address         string   `json:"address"`
	Longitude       *float64 `json:"longitude"`
	Latitude        *float64 `json:"latitude"`
}

// HasLocation reports whether the shelter can be placed on a map.
func (s Shelter) HasLocation() bool {
	return s.Longitude != nil && s.Latitude != nil
}

// CapacityOrZero returns the capacity, counting unknown as zero for sums.
func (s Shelter) CapacityOrZero() float64 {
	if s.Capacity == nil {
		return 0
	}
	return *s.Capacity
}

// Snapshot is one complete, immutable result of a data refresh.
type Snapshot struct {
	Shelters    []Shelter
	Display     []DisplayShelter
	Stats       NormalizeStats
	PayloadHash string
	SourceURL   string
	BuiltAt     time.Time
}

var builtAtClock clockwork.Clock = clockwork.NewRealClock()

// SetClock replaces the clock behind Snapshot.BuiltAt; nil restores wall time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	builtAtClock = c
}

// NewSnapshot stamps a normalized table with the build time.
func NewSnapshot(shelters []Shelter, stats NormalizeStats, payloadHash, sourceURL string) Snapshot {
	return Snapshot{
		Shelters:    shelters,
		Display:     BuildDisplay(shelters),
		Stats:       stats,
		PayloadHash: payloadHash,
		SourceURL:   sourceURL,
		BuiltAt:     builtAtClock.Now().UTC(),
	}
}
