package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePayload = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {
        "Number": 1,
        "Name": "укриття «Школа №1».",
        "OTG": "Велико - Березнянська ТГ",
        "City": "смт. В.Березний",
        "Rajon": "Ужгородський",
        "Area": "120,5 м²",
        "Adress": "вул Шевченка12",
        "Type": "Сховище",
        "TypeZs": "Підвал",
        "People": "1 200",
        "Bezbar": true
      },
      "geometry": {"type": "Point", "coordinates": [22.45, 48.89]}
    },
    {
      "type": "Feature",
      "properties": {
        "Number": 2,
        "Name": "ПРУ",
        "OTG": "Батьовська ОТГ",
        "City": "с. Батьово",
        "Rajon": "Берегівський",
        "Area": null,
        "Adress": "15",
        "Type": "ПРУ",
        "TypeZs": "Окрема будівля",
        "People": "н/д",
        "Bezbar": "false"
      },
      "geometry": {"type": "Point", "coordinates": ["22.6", "48.2"]}
    },
    {
      "type": "Feature",
      "properties": {
        "Number": 3,
        "Name": "Найпростіше укриття",
        "OTG": "Мукачівська ТГ",
        "City": "м.Мукачеве",
        "Rajon": "Мукачівський",
        "Adress": "м. Мукачево, вул. Миру,5",
        "Type": "Найпростіше укриття",
        "TypeZs": "Підвал",
        "People": 30
      },
      "geometry": null
    }
  ]
}`

func TestNormalize(t *testing.T) {
	shelters, stats, err := Normalize([]byte(samplePayload))
	require.NoError(t, err)
	require.Len(t, shelters, 3)

	t.Run("first row fully cleaned", func(t *testing.T) {
		s := shelters[0]
		assert.Equal(t, `Укриття "Школа №1"`, s.Name)
		assert.Equal(t, "Великоберезнянська", s.Community)
		assert.Equal(t, "Великий Березний", s.Settlement)
		assert.Equal(t, "Ужгородський", s.District)
		require.NotNil(t, s.Area)
		assert.Equal(t, 120.5, *s.Area)
		require.NotNil(t, s.Capacity)
		assert.Equal(t, 1200.0, *s.Capacity)
		assert.Equal(t, "вул. Шевченка, 12", s.Address)
		assert.Equal(t, "Сховище", s.ShelterType)
		assert.Equal(t, "Підвал", s.BuildingKind)
		assert.True(t, s.Accessible)
		assert.True(t, s.AccessibleKnown)
		require.True(t, s.HasLocation())
		assert.Equal(t, 22.45, *s.Longitude)
		assert.Equal(t, 48.89, *s.Latitude)
	})

	t.Run("null and unparseable numerics", func(t *testing.T) {
		s := shelters[1]
		assert.Equal(t, "Батівська", s.Community)
		assert.Equal(t, "Батьово", s.Settlement)
		assert.Nil(t, s.Area)
		assert.Nil(t, s.Capacity)
		assert.Equal(t, AddressAbsent, s.Address)
		assert.False(t, s.Accessible)
		assert.True(t, s.AccessibleKnown)
		require.True(t, s.HasLocation(), "string coordinates are coerced")
		assert.Equal(t, 22.6, *s.Longitude)
		assert.Equal(t, 48.2, *s.Latitude)
	})

	t.Run("missing geometry and flag keep the row", func(t *testing.T) {
		s := shelters[2]
		assert.Equal(t, "Мукачево", s.Settlement)
		assert.Equal(t, "вул. Миру,5", s.Address)
		assert.Equal(t, 30.0, s.CapacityOrZero())
		assert.False(t, s.Accessible)
		assert.False(t, s.AccessibleKnown)
		assert.False(t, s.HasLocation())
		assert.Nil(t, s.Longitude)
		assert.Nil(t, s.Latitude)
	})

	assert.Equal(t, NormalizeStats{
		Rows:                 3,
		CapacityInvalid:      1,
		AccessibilityUnknown: 1,
		MalformedGeometry:    1,
	}, stats)
}

func TestNormalize_Deterministic(t *testing.T) {
	first, _, err := Normalize([]byte(samplePayload))
	require.NoError(t, err)
	second, _, err := Normalize([]byte(samplePayload))
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestNormalize_NoData(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"nil", nil},
		{"empty", []byte("")},
		{"whitespace", []byte("  \n")},
		{"json null", []byte("null")},
		{"json null padded", []byte(" null\n")},
		{"no features member", []byte(`{"type":"FeatureCollection"}`)},
		{"null features", []byte(`{"type":"FeatureCollection","features":null}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shelters, _, err := Normalize(tt.payload)
			assert.ErrorIs(t, err, ErrNoData)
			assert.Nil(t, shelters)
		})
	}
}

func TestNormalize_EmptyFeatureArray(t *testing.T) {
	shelters, stats, err := Normalize([]byte(`{"type":"FeatureCollection","features":[]}`))
	require.NoError(t, err)
	assert.Empty(t, shelters)
	assert.Equal(t, 0, stats.Rows)
}

func TestNormalize_InvalidJSON(t *testing.T) {
	_, _, err := Normalize([]byte("{not json"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoData)
}

func TestNormalizeShelters_Empty(t *testing.T) {
	shelters, stats := NormalizeShelters(nil)
	assert.Empty(t, shelters)
	assert.NotNil(t, shelters)
	assert.Equal(t, 0, stats.Rows)
}

func TestNormalizeShelters_InvalidAccessibilityCounted(t *testing.T) {
	features := []RawFeature{
		{Properties: RawProperties{Bezbar: RawValue(`"так"`)}},
		{Properties: RawProperties{Bezbar: RawValue(`true`)}},
	}
	shelters, stats := NormalizeShelters(features)
	require.Len(t, shelters, 2)
	assert.Equal(t, 1, stats.AccessibilityInvalid)
	assert.Equal(t, 0, stats.AccessibilityUnknown)
	assert.Equal(t, 2, stats.MalformedGeometry)
}

func TestExtractCoordinates(t *testing.T) {
	tests := []struct {
		name   string
		geom   *RawGeometry
		wantOK bool
		lon    float64
		lat    float64
	}{
		{"numbers", &RawGeometry{Coordinates: json.RawMessage(`[22.3, 48.6]`)}, true, 22.3, 48.6},
		{"noisy strings", &RawGeometry{Coordinates: json.RawMessage(`["22,3 ", " 48,6"]`)}, true, 22.3, 48.6},
		{"nil geometry", nil, false, 0, 0},
		{"null coordinates", &RawGeometry{Coordinates: json.RawMessage(`null`)}, false, 0, 0},
		{"one element", &RawGeometry{Coordinates: json.RawMessage(`[22.3]`)}, false, 0, 0},
		{"three elements", &RawGeometry{Coordinates: json.RawMessage(`[22.3, 48.6, 100]`)}, false, 0, 0},
		{"not an array", &RawGeometry{Coordinates: json.RawMessage(`"22.3,48.6"`)}, false, 0, 0},
		{"nested polygon", &RawGeometry{Coordinates: json.RawMessage(`[[22.3, 48.6], [22.4, 48.7]]`)}, false, 0, 0},
		{"non-numeric element", &RawGeometry{Coordinates: json.RawMessage(`[22.3, "н/д"]`)}, false, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lon, lat, ok := ExtractCoordinates(tt.geom)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Nil(t, lon)
				assert.Nil(t, lat)
				return
			}
			require.NotNil(t, lon)
			require.NotNil(t, lat)
			assert.InDelta(t, tt.lon, *lon, 1e-9)
			assert.InDelta(t, tt.lat, *lat, 1e-9)
		})
	}
}
