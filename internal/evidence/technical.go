package evidence

import (
	"asset-guardian/internal/ta"
	"asset-guardian/internal/types"
)

const (
	bandLookback = 20
	atrPeriod    = 14
	rrEpsilon    = 1e-12
)

// TechnicalRiskReward measures distance to the 20-bar resistance over distance to support.
func TechnicalRiskReward(s types.PriceSeries) types.TechnicalBand {
	closes := s.Closes()
	tb := types.TechnicalBand{Verdict: types.VerdictInsufficient}
	support, resistance, ok := ta.SupportResistance(closes, bandLookback)
	if !ok {
		return tb
	}
	last := closes[len(closes)-1]
	tb.LastClose, tb.Support, tb.Resistance = last, support, resistance
	tb.ATR14 = types.OptFloat(ta.ATR(s.Highs(), s.Lows(), closes, atrPeriod))

	if !(support < last && last < resistance) {
		return tb
	}
	rr := (resistance - last) / (last - support + rrEpsilon)
	tb.RiskReward = types.OptFloat(rr)
	switch {
	case rr >= 2:
		tb.Verdict = types.TechUpsideFavored
	case rr >= 1:
		tb.Verdict = types.TechNeutral
	default:
		tb.Verdict = types.TechDownsideRisk
	}
	return tb
}
