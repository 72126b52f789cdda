package pipeline_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/couchcryptid/shelter-data-etl-service/internal/domain"
	"github.com/couchcryptid/shelter-data-etl-service/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShelterTransformer_WithSampleData(t *testing.T) {
	transformer := pipeline.NewTransformer(nil, slog.Default())
	payload := domain.RawPayload{Body: samplePayload(t), URL: "https://example.org/shelters.geojson"}

	snap, err := transformer.Transform(context.Background(), payload)
	require.NoError(t, err)
	require.Len(t, snap.Shelters, 8)

	assert.Equal(t, domain.NormalizeStats{
		Rows:                 8,
		AreaInvalid:          1,
		CapacityInvalid:      1,
		AccessibilityUnknown: 1,
		AccessibilityInvalid: 1,
		MalformedGeometry:    2,
	}, snap.Stats)

	settlements := lo.Map(snap.Shelters, func(s domain.Shelter, _ int) string { return s.Settlement })
	assert.Equal(t, []string{
		"Ужгород", "Ужгород", "Великий Березний", "Мукачево",
		"Батьово", "Великий Бичків", "Тячів", "Мукачево",
	}, settlements)

	communities := lo.Map(snap.Shelters, func(s domain.Shelter, _ int) string { return s.Community })
	assert.Equal(t, []string{
		"Ужгородська міська", "Ужгородська міська", "Великоберезнянська", "Мукачівська",
		"Батівська", "Великобичківська", "Тячівська", "Мукачівська",
	}, communities)

	addresses := lo.Map(snap.Shelters, func(s domain.Shelter, _ int) string { return s.Address })
	assert.Equal(t, []string{
		"вул. Корзо,5",
		"вул. Минайська, буд. 16",
		"вул. Шевченка, 12",
		"пл. Миру 3",
		domain.AddressAbsent,
		"пр. Свободи, 10",
		"вул. Незалежності, буд. 7",
		domain.AddressAbsent,
	}, addresses)

	assert.Equal(t, `Укриття "ЗОШ №1"`, snap.Shelters[0].Name)
	assert.Equal(t, "Сховище школи", snap.Shelters[6].Name)

	require.NotNil(t, snap.Shelters[0].Capacity)
	assert.InDelta(t, 1200, *snap.Shelters[0].Capacity, 1e-9)
	require.NotNil(t, snap.Shelters[2].Area)
	assert.InDelta(t, 120, *snap.Shelters[2].Area, 1e-9)
	require.NotNil(t, snap.Shelters[2].Longitude)
	assert.InDelta(t, 22.4591, *snap.Shelters[2].Longitude, 1e-9)
	assert.Nil(t, snap.Shelters[3].Area)
	assert.Nil(t, snap.Shelters[4].Capacity)
	assert.Nil(t, snap.Shelters[4].Area)
	assert.False(t, snap.Shelters[4].HasLocation())
	assert.False(t, snap.Shelters[5].HasLocation())

	labels := lo.Map(snap.Display, func(d domain.DisplayShelter, _ int) string { return d.Accessibility })
	assert.Equal(t, []string{
		domain.LabelYes, domain.LabelNo, domain.LabelUnknown, domain.LabelYes,
		domain.LabelNo, domain.LabelNo, domain.LabelYes, domain.LabelNo,
	}, labels)
}

func TestShelterTransformer_Deterministic(t *testing.T) {
	transformer := pipeline.NewTransformer(nil, slog.Default())
	payload := domain.RawPayload{Body: samplePayload(t)}

	first, err := transformer.Transform(context.Background(), payload)
	require.NoError(t, err)
	second, err := transformer.Transform(context.Background(), payload)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second, cmpopts.IgnoreFields(domain.Snapshot{}, "BuiltAt")); diff != "" {
		t.Errorf("snapshots differ (-first +second):\n%s", diff)
	}
}

func TestShelterTransformer_RejectsNonGeoJSON(t *testing.T) {
	transformer := pipeline.NewTransformer(newTestMetrics(), discardLogger())

	_, err := transformer.Transform(context.Background(), domain.RawPayload{Body: []byte("not json")})
	require.Error(t, err)

	_, err = transformer.Transform(context.Background(), domain.RawPayload{Body: []byte("  ")})
	require.ErrorIs(t, err, domain.ErrNoData)
}
