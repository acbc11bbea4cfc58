package ta

import "math"

// slopeEpsilon keeps the variance denominator away from zero.
const slopeEpsilon = 1e-12

func SMA(closes []float64, n int) float64 {
	if len(closes) < n || n <= 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := len(closes) - n; i < len(closes); i++ {
		sum += closes[i]
	}
	return sum / float64(n)
}

// SMASeries is the trailing n-period mean at every index; NaN until n values
// are available or when the window holds a NaN.
func SMASeries(vals []float64, n int) []float64 {
	out := make([]float64, len(vals))
	for i := range out {
		out[i] = math.NaN()
	}
	if n <= 0 {
		return out
	}
	for i := n - 1; i < len(vals); i++ {
		out[i] = SMA(vals[:i+1], n)
	}
	return out
}

func RSI(closes []float64, period int) float64 {
	if len(closes) < period+1 || period <= 0 {
		return math.NaN()
	}
	gain, loss := 0.0, 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	if loss == 0 {
		return 100.0
	}
	rs := (gain / float64(period)) / (loss / float64(period))
	return 100.0 - (100.0 / (1.0 + rs))
}

// TrendSlope is the OLS slope of the non-missing values against 0..n-1,
// using population covariance and variance. NaN with fewer than 3 points.
func TrendSlope(vals []float64) float64 {
	y := dropNaN(vals)
	n := len(y)
	if n < 3 {
		return math.NaN()
	}
	meanX := float64(n-1) / 2
	meanY := 0.0
	for _, v := range y {
		meanY += v
	}
	meanY /= float64(n)

	cov, varX := 0.0, 0.0
	for i, v := range y {
		dx := float64(i) - meanX
		cov += dx * (v - meanY)
		varX += dx * dx
	}
	cov /= float64(n)
	varX /= float64(n)
	return cov / (varX + slopeEpsilon)
}

// MaxDrawdown is the deepest price/running-max - 1 over the trailing window
// (or the whole series when shorter). NaN with fewer than 2 points.
func MaxDrawdown(closes []float64, window int) float64 {
	c := dropNaN(closes)
	if len(c) < 2 {
		return math.NaN()
	}
	if window > 0 && len(c) > window {
		c = c[len(c)-window:]
	}
	peak := c[0]
	worst := 0.0
	for _, v := range c {
		if v > peak {
			peak = v
		}
		if dd := v/peak - 1.0; dd < worst {
			worst = dd
		}
	}
	return worst
}

// TrueRange per bar. The first bar has no previous close and uses high-low.
func TrueRange(highs, lows, closes []float64) []float64 {
	if len(highs) != len(lows) || len(lows) != len(closes) {
		return nil
	}
	out := make([]float64, len(closes))
	for i := range closes {
		tr := math.Abs(highs[i] - lows[i])
		if i > 0 {
			tr = math.Max(tr, math.Abs(highs[i]-closes[i-1]))
			tr = math.Max(tr, math.Abs(lows[i]-closes[i-1]))
		}
		out[i] = tr
	}
	return out
}

// ATRSeries is the simple moving average of true range; NaN for the first period-1 bars.
func ATRSeries(highs, lows, closes []float64, period int) []float64 {
	tr := TrueRange(highs, lows, closes)
	if tr == nil {
		return nil
	}
	return SMASeries(tr, period)
}

func ATR(highs, lows, closes []float64, period int) float64 {
	s := ATRSeries(highs, lows, closes, period)
	if len(s) == 0 {
		return math.NaN()
	}
	return s[len(s)-1]
}

// SupportResistance returns the min and max of the last lookback closes.
// With fewer closes the window shrinks to max(5, available).
func SupportResistance(closes []float64, lookback int) (support, resistance float64, ok bool) {
	c := dropNaN(closes)
	if len(c) == 0 {
		return math.NaN(), math.NaN(), false
	}
	if len(c) < lookback {
		lookback = max(5, len(c))
	}
	if lookback > len(c) {
		lookback = len(c)
	}
	window := c[len(c)-lookback:]
	support, resistance = window[0], window[0]
	for _, v := range window[1:] {
		support = math.Min(support, v)
		resistance = math.Max(resistance, v)
	}
	return support, resistance, true
}

// Pivot computes classic floor-trader levels from one session's high, low and close.
func Pivot(high, low, close float64) (pivot, r1, s1 float64) {
	pivot = (high + low + close) / 3
	r1 = 2*pivot - low
	s1 = 2*pivot - high
	return
}

// Mean of the non-missing values; NaN when none.
func Mean(vals []float64) float64 {
	v := dropNaN(vals)
	if len(v) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

func dropNaN(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	return out
}
