package evidence

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asset-guardian/internal/types"
)

// shortBars builds n flat bars with a true range of 1 and volume 1000. The
// second-to-last bar gets priorRange and priorVolume.
func shortBars(n int, priorRange, priorVolume float64) types.PriceSeries {
	s := closesToSeries(constant(n, 100))
	p := &s[n-2]
	p.High = 100 + priorRange/2
	p.Low = 100 - priorRange/2
	p.Volume = priorVolume
	return s
}

func TestShortDirectionalMove(t *testing.T) {
	// ATR(prior) = (13*1 + 5.2)/14 = 1.3 against a 5-day ATR mean of 1.0.
	snap := &types.TickerSnapshot{Symbol: "AAPL", Prices: shortBars(25, 5.2, 1800)}

	res := AnalyzeShort(snap)
	require.Empty(t, res.Error)
	ev := res.Evidence

	assert.InDelta(t, 1.3, *ev.Volatility.ATRPrior, 1e-9)
	assert.InDelta(t, 1.0, *ev.Volatility.ATRAvg5, 1e-9)
	assert.InDelta(t, 0.3, *ev.Volatility.Change, 1e-9)
	assert.Equal(t, types.VolatilityExpanding, ev.Volatility.State)

	assert.InDelta(t, 1.8, *ev.Flow.VolumeMultiple, 1e-12)
	assert.Equal(t, types.FlowInflow, ev.Flow.State)
	assert.Equal(t, 0.0, *ev.Flow.Gap)
	assert.Equal(t, 0.0, *ev.Flow.Body)

	assert.Equal(t, types.OutlookDirectional, res.Outlook)

	assert.Equal(t, day0.AddDate(0, 0, 23), ev.PriorDate)
	assert.InDelta(t, 102.6, ev.Scenarios.Breakout.Price, 1e-9)
	assert.Equal(t, 1.5, *ev.Scenarios.Breakout.MinVolumeMultiple)
	assert.InDelta(t, 97.4, ev.Scenarios.Breakdown.Price, 1e-9)
	assert.Equal(t, 1.2, *ev.Scenarios.Breakdown.MinVolumeMultiple)
	assert.Equal(t, 0.8, *ev.Scenarios.RangeBound.MaxVolumeMultiple)

	assert.InDelta(t, 100.0, ev.Pivots.Pivot, 1e-9)
	assert.InDelta(t, 102.6, ev.Pivots.R1, 1e-9)
	assert.InDelta(t, 97.4, ev.Pivots.S1, 1e-9)
}

func TestShortTooFewBars(t *testing.T) {
	res := AnalyzeShort(&types.TickerSnapshot{Symbol: "AAPL", Prices: closesToSeries(constant(9, 100))})
	assert.Contains(t, res.Error, "insufficient data for short horizon")
	assert.Nil(t, res.Evidence)
}

func TestShortUndefinedATRWithTenBars(t *testing.T) {
	res := AnalyzeShort(&types.TickerSnapshot{Symbol: "AAPL", Prices: shortBars(10, 1, 1000)})
	require.Empty(t, res.Error)
	assert.Equal(t, types.VerdictInsufficient, res.Evidence.Volatility.State)
	assert.Nil(t, res.Evidence.Volatility.ATRPrior)
	assert.Equal(t, types.FlowNormal, res.Evidence.Flow.State)
	assert.Equal(t, types.OutlookCheckTriggers, res.Outlook)
}

func TestShortMissingVolume(t *testing.T) {
	s := shortBars(25, 1, 1000)
	for i := range s {
		s[i].Volume = math.NaN()
	}
	res := AnalyzeShort(&types.TickerSnapshot{Symbol: "AAPL", Prices: s})
	require.Empty(t, res.Error)
	assert.Equal(t, types.VerdictInsufficient, res.Evidence.Flow.State)
	assert.Nil(t, res.Evidence.Flow.VolumeMultiple)
}

func TestShortClassifiers(t *testing.T) {
	vol := []struct {
		change float64
		want   types.Verdict
	}{
		{0.30, types.VolatilityExpanding},
		{0.20, types.VolatilityNeutral},
		{-0.20, types.VolatilityNeutral},
		{-0.25, types.VolatilityContracting},
	}
	for _, tt := range vol {
		assert.Equal(t, tt.want, classifyVolatility(types.VolatilityAnomaly{}, tt.change).State, "%v", tt.change)
	}

	flow := []struct {
		mult float64
		want types.Verdict
	}{
		{1.8, types.FlowInflow},
		{1.5, types.FlowInflow},
		{1.0, types.FlowNormal},
		{0.7, types.FlowOutflow},
	}
	for _, tt := range flow {
		assert.Equal(t, tt.want, classifyFlow(types.FlowAnomaly{}, tt.mult).State, "%v", tt.mult)
	}
}

func TestShortOutlookTable(t *testing.T) {
	assert.Equal(t, types.OutlookDirectional, shortOutlook(types.VolatilityExpanding, types.FlowInflow))
	assert.Equal(t, types.OutlookRangeBound, shortOutlook(types.VolatilityContracting, types.FlowNormal))
	assert.Equal(t, types.OutlookRangeBound, shortOutlook(types.VolatilityContracting, types.FlowOutflow))
	assert.Equal(t, types.OutlookCheckTriggers, shortOutlook(types.VolatilityContracting, types.FlowInflow))
	assert.Equal(t, types.OutlookCheckTriggers, shortOutlook(types.VolatilityExpanding, types.FlowNormal))
	assert.Equal(t, types.OutlookCheckTriggers, shortOutlook(types.VerdictInsufficient, types.VerdictInsufficient))
}
