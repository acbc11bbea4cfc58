package evidence

import (
	"asset-guardian/internal/ta"
	"asset-guardian/internal/types"
)

const (
	minShortBars       = 10
	priorWindow        = 5
	volExpansion       = 0.20
	inflowMultiple     = 1.5
	outflowMultiple    = 0.7
	breakoutMultiple   = 1.5
	breakdownMultiple  = 1.2
	rangeBoundMultiple = 0.8
	rsiPeriod          = 14
)

// AnalyzeShort reads the last completed session. The newest bar may be an
// unfinished session, so the prior day is the second-to-last bar.
func AnalyzeShort(snap *types.TickerSnapshot) types.ShortResult {
	if snap == nil {
		return types.ShortResult{Error: insufficient("short", "no recent price history").Error()}
	}
	px := snap.Prices.Tail(types.Window2M)
	if len(px) < minShortBars {
		return types.ShortResult{Error: insufficient("short", "%d recent bars, need %d", len(px), minShortBars).Error()}
	}

	n := len(px)
	d1, d2 := px[n-2], px[n-3]
	last5 := px[n-2-priorWindow : n-2]

	vol := volatilityAnomaly(px)
	flow := flowAnomaly(d1, d2, last5)

	pivot, r1, s1 := ta.Pivot(d1.High, d1.Low, d1.Close)
	ev := &types.ShortEvidence{
		PriorDate:  d1.Date,
		PriorHigh:  d1.High,
		PriorLow:   d1.Low,
		PriorClose: d1.Close,
		Volatility: vol,
		Flow:       flow,
		Scenarios:  scenarios(d1),
		Pivots:     types.PivotLevels{Pivot: pivot, R1: r1, S1: s1},
		RSI14:      types.OptFloat(ta.RSI(px.Closes(), rsiPeriod)),
	}
	return types.ShortResult{Evidence: ev, Outlook: shortOutlook(vol.State, flow.State)}
}

// volatilityAnomaly compares the prior day's ATR with the mean of the five
// defined ATR values before it.
func volatilityAnomaly(px types.PriceSeries) types.VolatilityAnomaly {
	atr := make([]float64, 0, len(px))
	for _, v := range ta.ATRSeries(px.Highs(), px.Lows(), px.Closes(), atrPeriod) {
		if types.OptFloat(v) != nil {
			atr = append(atr, v)
		}
	}
	va := types.VolatilityAnomaly{State: types.VerdictInsufficient}
	n := len(atr)
	if n >= 2 {
		va.ATRPrior = types.OptFloat(atr[n-2])
	}
	if n >= 2+priorWindow {
		va.ATRAvg5 = types.OptFloat(ta.Mean(atr[n-2-priorWindow : n-2]))
	}
	if va.ATRPrior == nil || va.ATRAvg5 == nil || *va.ATRAvg5 == 0 {
		return va
	}

	change := (*va.ATRPrior - *va.ATRAvg5) / *va.ATRAvg5
	va.Change = types.OptFloat(change)
	return classifyVolatility(va, change)
}

func classifyVolatility(va types.VolatilityAnomaly, change float64) types.VolatilityAnomaly {
	switch {
	case change > volExpansion:
		va.State = types.VolatilityExpanding
	case change < -volExpansion:
		va.State = types.VolatilityContracting
	default:
		va.State = types.VolatilityNeutral
	}
	return va
}

func flowAnomaly(d1, d2 types.Bar, last5 types.PriceSeries) types.FlowAnomaly {
	fa := types.FlowAnomaly{State: types.VerdictInsufficient}
	if d2.Close != 0 {
		fa.Gap = types.OptFloat(d1.Open/d2.Close - 1)
	}
	if d1.Open != 0 {
		fa.Body = types.OptFloat(d1.Close/d1.Open - 1)
	}
	if d1.Low != 0 {
		fa.Range = types.OptFloat(d1.High/d1.Low - 1)
	}

	fa.VolumePrior = types.OptFloat(d1.Volume)
	fa.VolumeAvg5 = types.OptFloat(ta.Mean(last5.Volumes()))
	if fa.VolumePrior == nil || fa.VolumeAvg5 == nil || *fa.VolumeAvg5 == 0 {
		return fa
	}
	mult := *fa.VolumePrior / *fa.VolumeAvg5
	fa.VolumeMultiple = types.OptFloat(mult)
	return classifyFlow(fa, mult)
}

func classifyFlow(fa types.FlowAnomaly, mult float64) types.FlowAnomaly {
	switch {
	case mult >= inflowMultiple:
		fa.State = types.FlowInflow
	case mult <= outflowMultiple:
		fa.State = types.FlowOutflow
	default:
		fa.State = types.FlowNormal
	}
	return fa
}

func scenarios(d1 types.Bar) types.Scenarios {
	return types.Scenarios{
		Breakout: types.Trigger{
			Price:             d1.High,
			MinVolumeMultiple: types.OptFloat(breakoutMultiple),
			Description:       "price breaks above the prior high on rising volume: short-term trend may accelerate",
		},
		Breakdown: types.Trigger{
			Price:             d1.Low,
			MinVolumeMultiple: types.OptFloat(breakdownMultiple),
			Description:       "price breaks below the prior low on volume: short-term downside risk widens",
		},
		RangeBound: types.Trigger{
			Low:               d1.Low,
			High:              d1.High,
			MaxVolumeMultiple: types.OptFloat(rangeBoundMultiple),
			Description:       "price holds inside the prior range on fading volume: waiting is favored",
		},
	}
}

func shortOutlook(vol, flow types.Verdict) types.Outlook {
	switch {
	case vol == types.VolatilityExpanding && flow == types.FlowInflow:
		return types.OutlookDirectional
	case vol == types.VolatilityContracting && (flow == types.FlowNormal || flow == types.FlowOutflow):
		return types.OutlookRangeBound
	default:
		return types.OutlookCheckTriggers
	}
}
