package ta

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrendSlope(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want func(t *testing.T, got float64)
	}{
		{"increasing", []float64{1, 2, 4, 7, 11}, func(t *testing.T, got float64) { assert.Greater(t, got, 0.0) }},
		{"decreasing", []float64{10, 9, 7, 4, 0}, func(t *testing.T, got float64) { assert.Less(t, got, 0.0) }},
		{"constant", []float64{5, 5, 5, 5}, func(t *testing.T, got float64) { assert.Equal(t, 0.0, got) }},
		{"linear", []float64{0, 2, 4, 6, 8}, func(t *testing.T, got float64) { assert.InDelta(t, 2.0, got, 1e-9) }},
		{"skips missing", []float64{1, math.NaN(), 2, 3}, func(t *testing.T, got float64) { assert.InDelta(t, 1.0, got, 1e-9) }},
		{"too short", []float64{1, 2}, func(t *testing.T, got float64) { assert.True(t, math.IsNaN(got)) }},
		{"too short after missing", []float64{1, math.NaN(), 2}, func(t *testing.T, got float64) { assert.True(t, math.IsNaN(got)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want(t, TrendSlope(tt.in))
		})
	}
}

func TestMaxDrawdown(t *testing.T) {
	assert.Equal(t, 0.0, MaxDrawdown([]float64{1, 2, 3, 4, 5}, 252))
	assert.InDelta(t, -0.5, MaxDrawdown([]float64{10, 20, 15, 10, 12}, 252), 1e-12)
	assert.True(t, math.IsNaN(MaxDrawdown([]float64{1}, 252)))

	// The window drops the early peak.
	assert.Equal(t, 0.0, MaxDrawdown([]float64{100, 10, 11, 12}, 3))
}

func TestSupportResistance(t *testing.T) {
	closes := []float64{12, 9, 15, 11, 14, 10, 13, 16, 8, 12}
	support, resistance, ok := SupportResistance(closes, 5)
	require.True(t, ok)
	assert.Equal(t, 8.0, support)
	assert.Equal(t, 16.0, resistance)
	for _, c := range closes[len(closes)-5:] {
		assert.LessOrEqual(t, support, c)
		assert.GreaterOrEqual(t, resistance, c)
	}

	// Shorter than lookback shrinks to max(5, len) which covers everything here.
	support, resistance, ok = SupportResistance(closes, 20)
	require.True(t, ok)
	assert.Equal(t, 8.0, support)
	assert.Equal(t, 16.0, resistance)

	support, resistance, ok = SupportResistance([]float64{3, 1, 2}, 20)
	require.True(t, ok)
	assert.Equal(t, 1.0, support)
	assert.Equal(t, 3.0, resistance)

	_, _, ok = SupportResistance(nil, 20)
	assert.False(t, ok)
}

func TestATRSeries(t *testing.T) {
	highs := []float64{11, 12, 13, 12}
	lows := []float64{9, 10, 11, 8}
	closes := []float64{10, 11, 12, 9}

	tr := TrueRange(highs, lows, closes)
	assert.Equal(t, []float64{2, 2, 2, 4}, tr)

	atr := ATRSeries(highs, lows, closes, 2)
	require.Len(t, atr, 4)
	assert.True(t, math.IsNaN(atr[0]))
	assert.InDelta(t, 2.0, atr[1], 1e-12)
	assert.InDelta(t, 3.0, atr[3], 1e-12)
	assert.InDelta(t, 3.0, ATR(highs, lows, closes, 2), 1e-12)

	assert.Nil(t, ATRSeries(highs, lows[:2], closes, 2))
}

func TestRSI(t *testing.T) {
	up := make([]float64, 20)
	for i := range up {
		up[i] = float64(i)
	}
	assert.Equal(t, 100.0, RSI(up, 14))

	mixed := []float64{10, 11, 10, 11, 10, 11, 10, 11, 10, 11, 10, 11, 10, 11, 10}
	assert.InDelta(t, 50.0, RSI(mixed, 14), 1e-9)

	assert.True(t, math.IsNaN(RSI(up[:5], 14)))
}

func TestPivot(t *testing.T) {
	p, r1, s1 := Pivot(110, 90, 100)
	assert.InDelta(t, 100.0, p, 1e-12)
	assert.InDelta(t, 110.0, r1, 1e-12)
	assert.InDelta(t, 90.0, s1, 1e-12)
}
