package query

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTerm(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		ok       bool
		wantCode string
		wantText string
	}{
		{name: "simple code", raw: "loww", ok: true, wantCode: "LOWW", wantText: "loww"},
		{name: "padded", raw: "  Vienna  ", ok: true, wantCode: "VIENNA", wantText: "Vienna"},
		{name: "mixed case preserved in text", raw: "SaLzBuRg", ok: true, wantCode: "SALZBURG", wantText: "SaLzBuRg"},
		{name: "two chars is enough", raw: "lo", ok: true, wantCode: "LO", wantText: "lo"},
		{name: "one char rejected", raw: "l", ok: false},
		{name: "empty rejected", raw: "", ok: false},
		{name: "whitespace only rejected", raw: "   ", ok: false},
		{name: "single rune not single byte", raw: "ö", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term, ok := NormalizeTerm(tt.raw)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.wantCode, term.Code)
				assert.Equal(t, tt.wantText, term.Text)
			}
		})
	}
}

func TestValidateCoordinates(t *testing.T) {
	// --- Valid ---
	assert.NoError(t, ValidateCoordinates(0, 0))
	assert.NoError(t, ValidateCoordinates(90, 180))
	assert.NoError(t, ValidateCoordinates(-90, -180))
	assert.NoError(t, ValidateCoordinates(48.11, 16.57))

	// --- Out of range ---
	assert.Error(t, ValidateCoordinates(90.001, 0))
	assert.Error(t, ValidateCoordinates(-91, 0))
	assert.Error(t, ValidateCoordinates(0, 180.5))
	assert.Error(t, ValidateCoordinates(0, -181))

	// --- Non-finite ---
	assert.Error(t, ValidateCoordinates(math.NaN(), 0))
	assert.Error(t, ValidateCoordinates(0, math.Inf(1)))
	assert.Error(t, ValidateCoordinates(math.Inf(-1), math.NaN()))

	// Out-of-range input is rejected, never clamped into range.
	err := ValidateCoordinates(91, 0)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 12, ClampLimit(0, 12, 1, 20))
	assert.Equal(t, 12, ClampLimit(-5, 12, 1, 20))
	assert.Equal(t, 1, ClampLimit(1, 12, 1, 20))
	assert.Equal(t, 7, ClampLimit(7, 12, 1, 20))
	assert.Equal(t, 20, ClampLimit(20, 12, 1, 20))
	assert.Equal(t, 20, ClampLimit(100, 12, 1, 20))
}
