package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceNumericString(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1 234грн", 1234},
		{"12,5", 12.5},
		{"«45»", 45},
		{"100?", 100},
		{"120 м²", 120},
		{" 36.6 ", 36.6},
		{"150 осіб", 150},
		{"0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := CoerceNumericString(tt.in)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCoerceNumericString_NotNumeric(t *testing.T) {
	for _, in := range []string{"", "   ", "грн", "н/д", "-"} {
		t.Run(in, func(t *testing.T) {
			_, err := CoerceNumericString(in)
			assert.ErrorIs(t, err, ErrNotNumeric)
		})
	}
}

func TestCoerceNumeric_RawValue(t *testing.T) {
	t.Run("json number passes through", func(t *testing.T) {
		got, err := CoerceNumeric(RawValue(`42.25`))
		require.NoError(t, err)
		assert.Equal(t, 42.25, got)
	})

	t.Run("numeric string", func(t *testing.T) {
		got, err := CoerceNumeric(RawValue(`"42,5"`))
		require.NoError(t, err)
		assert.Equal(t, 42.5, got)
	})

	t.Run("null", func(t *testing.T) {
		_, err := CoerceNumeric(RawValue(`null`))
		assert.ErrorIs(t, err, ErrNotNumeric)
	})

	t.Run("absent", func(t *testing.T) {
		_, err := CoerceNumeric(nil)
		assert.ErrorIs(t, err, ErrNotNumeric)
	})

	t.Run("json number out of range", func(t *testing.T) {
		for _, tok := range []string{`1e999`, `-1e999`} {
			got, err := CoerceNumeric(RawValue(tok))
			assert.ErrorIs(t, err, ErrNotNumeric, tok)
			assert.Zero(t, got, tok)
		}
	})

	t.Run("out of range value nulls the field", func(t *testing.T) {
		assert.Nil(t, numericOrNil(RawValue(`1e999`)))
	})
}

func TestCoerceBoolean(t *testing.T) {
	assert.True(t, CoerceBoolean("TRUE "))
	assert.True(t, CoerceBoolean("true"))
	assert.True(t, CoerceBoolean(TranslateHomoglyphs("True")), "homoglyph-translated literal")
	assert.False(t, CoerceBoolean("false"))
	assert.False(t, CoerceBoolean("yes"))
	assert.False(t, CoerceBoolean("так"))
	assert.False(t, CoerceBoolean(""))
}

func TestParseBoolean(t *testing.T) {
	tests := []struct {
		in     string
		want   bool
		wantOK bool
	}{
		{"true", true, true},
		{" False", false, true},
		{"FALSE", false, true},
		{"yes", false, false},
		{"", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseBoolean(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestRawValue(t *testing.T) {
	assert.True(t, RawValue(nil).IsNull())
	assert.True(t, RawValue(`null`).IsNull())
	assert.False(t, RawValue(`""`).IsNull())

	assert.Equal(t, "Ужгород", RawValue(`"Ужгород"`).Text())
	assert.Equal(t, "true", RawValue(`true`).Text())
	assert.Equal(t, "12", RawValue(`12`).Text())
	assert.Equal(t, "", RawValue(`null`).Text())

	_, ok := RawValue(`"12"`).Number()
	assert.False(t, ok, "quoted numbers are text")
	f, ok := RawValue(`-3.5`).Number()
	assert.True(t, ok)
	assert.Equal(t, -3.5, f)
}
