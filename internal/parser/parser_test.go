package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2026, time.August, 30, 14, 0, 0, 0, time.UTC)
}

func TestParse_Valid(t *testing.T) {
	p := NewWithClock(fixedClock)

	rec, err := p.Parse("19,20 café lifestyle")
	require.NoError(t, err)
	assert.Equal(t, "19.20", rec.Price.StringFixed(2))
	assert.Equal(t, "café", rec.Product)
	assert.Equal(t, "lifestyle", rec.Category)
	assert.Equal(t, "30/08/2026", rec.Date)
	assert.False(t, rec.Split)
}

func TestParse_ProductWithSpaces(t *testing.T) {
	p := NewWithClock(fixedClock)

	rec, err := p.Parse("50 almoço de domingo comida")
	require.NoError(t, err)
	assert.Equal(t, "50", rec.Price.String())
	assert.Equal(t, "almoço de domingo", rec.Product)
	assert.Equal(t, "comida", rec.Category)
}

func TestParse_Split(t *testing.T) {
	p := NewWithClock(fixedClock)

	rec, err := p.Parse("19,20 café lifestyle (dividir)")
	require.NoError(t, err)
	assert.Equal(t, "9.60", rec.Price.StringFixed(2))
	assert.Equal(t, "café", rec.Product)
	assert.Equal(t, "lifestyle", rec.Category)
	assert.True(t, rec.Split)
}

func TestParse_SplitCaseInsensitive(t *testing.T) {
	p := NewWithClock(fixedClock)

	rec, err := p.Parse("10 pizza comida (DIVIDIR)")
	require.NoError(t, err)
	assert.Equal(t, "5", rec.Price.String())
	assert.True(t, rec.Split)
}

func TestParse_TrimsSurroundingWhitespace(t *testing.T) {
	p := NewWithClock(fixedClock)

	rec, err := p.Parse("  12 uber transporte  ")
	require.NoError(t, err)
	assert.Equal(t, "uber", rec.Product)
	assert.Equal(t, "transporte", rec.Category)
}

func TestParse_Rejections(t *testing.T) {
	p := NewWithClock(fixedClock)

	cases := []struct {
		name string
		in   string
	}{
		{"no amount", "café lifestyle"},
		{"amount only", "19,20"},
		{"missing category", "19,20 café"},
		{"zero amount", "0 café lifestyle"},
		{"zero with decimals", "0,00 café lifestyle"},
		{"negative-looking amount", "-5 café lifestyle"},
		{"dot separator", "19.20 café lifestyle"},
		{"two commas", "19,2,0 café lifestyle"},
		{"empty", ""},
		{"split without space", "19,20 café lifestyle(dividir)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.Parse(tc.in)
			assert.ErrorIs(t, err, ErrInvalidFormat)
		})
	}
}
