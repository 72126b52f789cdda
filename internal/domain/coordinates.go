package domain

import "encoding/json"

// ExtractCoordinates splits a [lon, lat] geometry into two coerced values.
// Both are nil and ok is false when the geometry is missing, is not a
// two-element array, or either element is not numeric.
func ExtractCoordinates(g *RawGeometry) (lon, lat *float64, ok bool) {
	if g == nil || len(g.Coordinates) == 0 {
		return nil, nil, false
	}
	var pair []RawValue
	if err := json.Unmarshal(g.Coordinates, &pair); err != nil || len(pair) != 2 {
		return nil, nil, false
	}
	lon, lat = numericOrNil(pair[0]), numericOrNil(pair[1])
	if lon == nil || lat == nil {
		return nil, nil, false
	}
	return lon, lat, true
}
