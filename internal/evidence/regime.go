package evidence

import (
	"asset-guardian/internal/types"
)

const (
	volatilityStress  = 25.0
	currencyStress    = 0.05
	benchmarkStress   = -0.10
	threeMonthBars    = 63
	oneMonthBars      = 21
	stressedMinSignal = 3
)

// MarketSymbols names the instruments behind the regime reading.
type MarketSymbols struct {
	DomesticBenchmark string
	GlobalBenchmark   string
	Volatility        string
	Dollar            string
	DomesticFX        string
}

var DefaultMarketSymbols = MarketSymbols{
	DomesticBenchmark: "^KS11",
	GlobalBenchmark:   "^GSPC",
	Volatility:        "^VIX",
	Dollar:            "DX-Y.NYB",
	DomesticFX:        "KRW=X",
}

// Benchmark picks the equity index a symbol is measured against.
func (m MarketSymbols) Benchmark(symbol string) string {
	if types.IsDomestic(symbol) {
		return m.DomesticBenchmark
	}
	return m.GlobalBenchmark
}

// MarketSeries holds the auxiliary closes for one mid-horizon run.
// FX is empty for non-domestic symbols.
type MarketSeries struct {
	BenchmarkSymbol string
	Benchmark       types.PriceSeries
	Volatility      types.PriceSeries
	Dollar          types.PriceSeries
	FX              types.PriceSeries
}

func lastClose(s types.PriceSeries) *float64 {
	b, ok := s.Last()
	if !ok {
		return nil
	}
	return types.OptFloat(b.Close)
}

// change3M is last / close 63 bars back - 1, counting the last bar as one of the 63.
func change3M(s types.PriceSeries) *float64 {
	c := s.Closes()
	if len(c) < threeMonthBars {
		return nil
	}
	return types.OptFloat(c[len(c)-1]/c[len(c)-threeMonthBars] - 1)
}

// drawdown1M is last / max of the last 21 closes - 1.
func drawdown1M(s types.PriceSeries) *float64 {
	c := s.Closes()
	if len(c) < oneMonthBars {
		return nil
	}
	peak := c[len(c)-oneMonthBars]
	for _, v := range c[len(c)-oneMonthBars:] {
		if v > peak {
			peak = v
		}
	}
	return types.OptFloat(c[len(c)-1]/peak - 1)
}

// ScoreRegime counts breached stress rules. Unavailable inputs never breach.
func ScoreRegime(ms MarketSeries) types.RegimeReading {
	r := types.RegimeReading{
		Benchmark:         ms.BenchmarkSymbol,
		VolatilityIndex:   lastClose(ms.Volatility),
		DollarChange3M:    change3M(ms.Dollar),
		FXChange3M:        change3M(ms.FX),
		BenchmarkDrawdown: drawdown1M(ms.Benchmark),
		Signals:           []string{},
	}
	if r.VolatilityIndex != nil && *r.VolatilityIndex > volatilityStress {
		r.Signals = append(r.Signals, "volatility index above 25")
	}
	if r.DollarChange3M != nil && *r.DollarChange3M > currencyStress {
		r.Signals = append(r.Signals, "dollar index up more than 5% over 3 months")
	}
	if r.FXChange3M != nil && *r.FXChange3M > currencyStress {
		r.Signals = append(r.Signals, "local currency down more than 5% over 3 months")
	}
	if r.BenchmarkDrawdown != nil && *r.BenchmarkDrawdown <= benchmarkStress {
		r.Signals = append(r.Signals, "benchmark 1-month drawdown of 10% or more")
	}

	r.Score = len(r.Signals)
	switch {
	case r.Score >= stressedMinSignal:
		r.Label = types.RegimeStressed
	case r.Score >= 1:
		r.Label = types.RegimeNeutral
	default:
		r.Label = types.RegimeCalm
	}
	return r
}
