package evidence

import (
	"sort"
	"time"

	"asset-guardian/internal/types"
)

const (
	forwardBars     = 21
	maxEventSamples = 30
)

// volatilityCrossings returns the dates where the index closes above the
// threshold after closing at or below it the bar before.
func volatilityCrossings(vix types.PriceSeries, threshold float64) []time.Time {
	var out []time.Time
	for i := 1; i < len(vix); i++ {
		if vix[i].Close > threshold && vix[i-1].Close <= threshold {
			out = append(out, vix[i].Date)
		}
	}
	return out
}

// forwardReturn anchors on the bar at d, or the last bar strictly before it,
// and returns the change over the next forward bars.
func forwardReturn(s types.PriceSeries, d time.Time, forward int) (float64, bool) {
	if len(s) < forward+2 {
		return 0, false
	}
	i := sort.Search(len(s), func(i int) bool { return !s[i].Date.Before(d) })
	idx := i
	if i >= len(s) || !s[i].Date.Equal(d) {
		idx = i - 1
	}
	if idx < 0 || idx+forward >= len(s) {
		return 0, false
	}
	r := s[idx+forward].Close/s[idx].Close - 1
	if types.OptFloat(r) == nil {
		return 0, false
	}
	return r, true
}

// StudyVolatilitySpikes measures the security's excess return over the
// benchmark in the month after each upward volatility crossing.
func StudyVolatilitySpikes(security, benchmark, vix types.PriceSeries) types.EventStudy {
	es := types.EventStudy{
		Trigger: "volatility index crosses above 25",
		Forward: forwardBars,
		Samples: []types.EventRecord{},
	}

	var events []types.EventRecord
	if len(vix) >= 2 && !benchmark.Empty() {
		for _, d := range volatilityCrossings(vix, volatilityStress) {
			rs, ok := forwardReturn(security, d, forwardBars)
			if !ok {
				continue
			}
			rb, ok := forwardReturn(benchmark, d, forwardBars)
			if !ok {
				continue
			}
			events = append(events, types.EventRecord{Date: d, SecurityReturn: rs, BenchmarkReturn: rb, Excess: rs - rb})
		}
	}

	es.Count = len(events)
	if es.Count == 0 {
		es.Verdict = types.VerdictInsufficient
		return es
	}

	wins, sum := 0, 0.0
	for _, e := range events {
		if e.Excess > 0 {
			wins++
		}
		sum += e.Excess
	}
	winRate := float64(wins) / float64(es.Count)
	es.WinRate = types.OptFloat(winRate)
	es.AvgExcess = types.OptFloat(sum / float64(es.Count))
	switch {
	case winRate >= 0.60:
		es.Verdict = types.EventStrong
	case winRate >= 0.40:
		es.Verdict = types.EventMixed
	default:
		es.Verdict = types.EventWeak
	}

	if len(events) > maxEventSamples {
		events = events[:maxEventSamples]
	}
	es.Samples = events
	return es
}
