package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestMapLink(t *testing.T) {
	assert.Equal(t, "https://www.google.com/maps?q=48.89,22.45", MapLink(ptr(22.45), ptr(48.89)))
	assert.Equal(t, "https://www.google.com/maps?q=48,22", MapLink(ptr(22), ptr(48)))
	assert.Empty(t, MapLink(nil, ptr(48.89)))
	assert.Empty(t, MapLink(ptr(22.45), nil))
}

func TestAccessibilityLabel(t *testing.T) {
	assert.Equal(t, LabelYes, AccessibilityLabel(Shelter{Accessible: true, AccessibleKnown: true}))
	assert.Equal(t, LabelNo, AccessibilityLabel(Shelter{Accessible: false, AccessibleKnown: true}))
	assert.Equal(t, LabelUnknown, AccessibilityLabel(Shelter{}))
}

func TestBuildDisplay(t *testing.T) {
	shelters := []Shelter{
		{
			Name: "ПРУ", Community: "Батівська", Settlement: "Батьово", District: "Берегівський",
			Capacity: ptr(50), ShelterType: "ПРУ", BuildingKind: "Підвал",
			Accessible: true, AccessibleKnown: true, Address: "вул. Миру, 1",
			Longitude: ptr(22.6), Latitude: ptr(48.2),
		},
		{Name: "Укриття"},
	}
	before := append([]Shelter(nil), shelters...)

	rows := BuildDisplay(shelters)
	require.Len(t, rows, 2)
	assert.Equal(t, before, shelters, "canonical rows are untouched")

	assert.Equal(t, "Батьово", rows[0].Settlement)
	assert.Equal(t, LabelYes, rows[0].Accessibility)
	assert.Equal(t, "https://www.google.com/maps?q=48.2,22.6", rows[0].MapLink)
	assert.True(t, rows[0].HasLocation())

	assert.Equal(t, LabelUnknown, rows[1].Accessibility)
	assert.Empty(t, rows[1].MapLink)
	assert.False(t, rows[1].HasLocation())
	assert.Equal(t, 0.0, rows[1].CapacityOrZero())
}

func TestDisplayShelter_JSONLabels(t *testing.T) {
	row := ToDisplay(Shelter{Name: "ПРУ", Settlement: "Батьово", Capacity: ptr(50), AccessibleKnown: true})
	data, err := json.Marshal(row)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	for _, col := range DisplayColumns {
		assert.Contains(t, decoded, col)
	}
	assert.Equal(t, "Батьово", decoded["Населений пункт"])
	assert.Equal(t, LabelNo, decoded["Інклюзивність"])
	assert.Equal(t, 50.0, decoded["Місткість"])
	assert.Nil(t, decoded["Площа"])
}

func TestDisplayShelter_Row(t *testing.T) {
	row := ToDisplay(Shelter{Name: "ПРУ", Area: ptr(12.5), Longitude: ptr(22.6), Latitude: ptr(48.2)})
	cells := row.Row()
	require.Len(t, cells, len(DisplayColumns))
	assert.Equal(t, "ПРУ", cells[0])
	assert.Equal(t, "12.5", cells[4])
	assert.Equal(t, "", cells[8])
	assert.Equal(t, LabelUnknown, cells[9])
	assert.Equal(t, "https://www.google.com/maps?q=48.2,22.6", cells[10])
}

func TestNewSnapshot(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { SetClock(nil) })

	shelters := []Shelter{{Name: "ПРУ", Accessible: true, AccessibleKnown: true}}
	snap := NewSnapshot(shelters, NormalizeStats{Rows: 1}, "abc", "https://example.org/shelters.geojson")

	assert.Equal(t, fixed, snap.BuiltAt)
	assert.Equal(t, "abc", snap.PayloadHash)
	require.Len(t, snap.Display, 1)
	assert.Equal(t, LabelYes, snap.Display[0].Accessibility)
	assert.Equal(t, 1, snap.Stats.Rows)
}
