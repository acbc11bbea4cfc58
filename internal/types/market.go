package types

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Window is a look-back period understood by the market-data feed.
type Window string

const (
	Window10Y Window = "10y"
	Window2Y  Window = "2y"
	Window3M  Window = "3mo"
	Window2M  Window = "2mo"
)

// Start returns the first date covered by a window ending at end.
func (w Window) Start(end time.Time) time.Time {
	switch w {
	case Window10Y:
		return end.AddDate(-10, 0, 0)
	case Window2Y:
		return end.AddDate(-2, 0, 0)
	case Window3M:
		return end.AddDate(0, -3, 0)
	case Window2M:
		return end.AddDate(0, -2, 0)
	default:
		return end.AddDate(-1, 0, 0)
	}
}

// Bar is one daily OHLCV row. Date is the exchange-local calendar day at midnight UTC.
// Volume is NaN when the feed did not report it.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries is ordered ascending by date with unique dates.
type PriceSeries []Bar

// NewPriceSeries sorts bars, drops rows without a close and keeps the last row per date.
func NewPriceSeries(bars []Bar) PriceSeries {
	clean := make([]Bar, 0, len(bars))
	for _, b := range bars {
		if math.IsNaN(b.Close) || math.IsInf(b.Close, 0) {
			continue
		}
		clean = append(clean, b)
	}
	sort.SliceStable(clean, func(i, j int) bool { return clean[i].Date.Before(clean[j].Date) })

	out := make(PriceSeries, 0, len(clean))
	for _, b := range clean {
		if n := len(out); n > 0 && out[n-1].Date.Equal(b.Date) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

func (p PriceSeries) Empty() bool { return len(p) == 0 }

func (p PriceSeries) Closes() []float64 {
	out := make([]float64, len(p))
	for i, b := range p {
		out[i] = b.Close
	}
	return out
}

func (p PriceSeries) Highs() []float64 {
	out := make([]float64, len(p))
	for i, b := range p {
		out[i] = b.High
	}
	return out
}

func (p PriceSeries) Lows() []float64 {
	out := make([]float64, len(p))
	for i, b := range p {
		out[i] = b.Low
	}
	return out
}

func (p PriceSeries) Volumes() []float64 {
	out := make([]float64, len(p))
	for i, b := range p {
		out[i] = b.Volume
	}
	return out
}

func (p PriceSeries) Last() (Bar, bool) {
	if len(p) == 0 {
		return Bar{}, false
	}
	return p[len(p)-1], true
}

// Since returns the tail of the series dated on or after t.
func (p PriceSeries) Since(t time.Time) PriceSeries {
	i := sort.Search(len(p), func(i int) bool { return !p[i].Date.Before(t) })
	return p[i:]
}

// Tail returns the trailing span of the series measured back from its own last date.
func (p PriceSeries) Tail(w Window) PriceSeries {
	last, ok := p.Last()
	if !ok {
		return p
	}
	return p.Since(w.Start(last.Date))
}

// DatedPoint is one observation of a quarterly line item. NaN marks a missing quarter.
type DatedPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// DatedSeries is ordered ascending by date.
type DatedSeries []DatedPoint

// NewDatedSeries sorts points by date and keeps the last value per date.
func NewDatedSeries(points []DatedPoint) DatedSeries {
	cp := append([]DatedPoint(nil), points...)
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].Date.Before(cp[j].Date) })
	out := make(DatedSeries, 0, len(cp))
	for _, pt := range cp {
		if n := len(out); n > 0 && out[n-1].Date.Equal(pt.Date) {
			out[n-1] = pt
			continue
		}
		out = append(out, pt)
	}
	return out
}

// Valid returns the non-missing, finite observations.
func (s DatedSeries) Valid() DatedSeries {
	out := make(DatedSeries, 0, len(s))
	for _, pt := range s {
		if math.IsNaN(pt.Value) || math.IsInf(pt.Value, 0) {
			continue
		}
		out = append(out, pt)
	}
	return out
}

func (s DatedSeries) Values() []float64 {
	out := make([]float64, len(s))
	for i, pt := range s {
		out[i] = pt.Value
	}
	return out
}

// Combine aligns two series on the union of their dates and applies fn.
// A date present in only one series yields NaN. Infinite results become NaN.
func Combine(a, b DatedSeries, fn func(x, y float64) float64) DatedSeries {
	type pair struct{ x, y float64 }
	byDate := make(map[time.Time]*pair, len(a)+len(b))
	get := func(d time.Time) *pair {
		p, ok := byDate[d]
		if !ok {
			p = &pair{x: math.NaN(), y: math.NaN()}
			byDate[d] = p
		}
		return p
	}
	for _, pt := range a {
		get(pt.Date).x = pt.Value
	}
	for _, pt := range b {
		get(pt.Date).y = pt.Value
	}

	points := make([]DatedPoint, 0, len(byDate))
	for d, p := range byDate {
		r := math.NaN()
		if !math.IsNaN(p.x) && !math.IsNaN(p.y) {
			r = fn(p.x, p.y)
		}
		if math.IsInf(r, 0) {
			r = math.NaN()
		}
		points = append(points, DatedPoint{Date: d, Value: r})
	}
	return NewDatedSeries(points)
}

// StatementKind identifies a quarterly financial statement table.
type StatementKind string

const (
	IncomeStatement   StatementKind = "income"
	CashFlowStatement StatementKind = "cashflow"
	BalanceSheet      StatementKind = "balance"
)

// Statement maps line-item labels to their quarterly series.
type Statement struct {
	Kind StatementKind          `json:"kind"`
	Rows map[string]DatedSeries `json:"rows"`
}

// Row resolves the first label present in priority order.
// A nil statement has no rows.
func (s *Statement) Row(labels ...string) (DatedSeries, bool) {
	if s == nil {
		return nil, false
	}
	for _, l := range labels {
		if row, ok := s.Rows[l]; ok {
			return row, true
		}
	}
	return nil, false
}

// IssuerInfo is a sparse key/value map of issuer metadata. Any key may be absent.
type IssuerInfo map[string]any

// Text returns the value as text, false when absent or empty.
func (i IssuerInfo) Text(key string) (string, bool) {
	v, ok := i[key]
	if !ok || v == nil {
		return "", false
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	if s == "" {
		return "", false
	}
	return s, true
}

// Float returns a numeric value, nil when absent or not a finite number.
func (i IssuerInfo) Float(key string) *float64 {
	v, ok := i[key]
	if !ok || v == nil {
		return nil
	}
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	default:
		return nil
	}
	return OptFloat(f)
}

// First returns the first present numeric value among keys.
func (i IssuerInfo) First(keys ...string) *float64 {
	for _, k := range keys {
		if f := i.Float(k); f != nil {
			return f
		}
	}
	return nil
}

// OptFloat returns nil for NaN or infinite values so "absent" never reads as a number.
func OptFloat(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// TickerSnapshot is assembled once per analysis run and never mutated afterwards.
// Statement tables are nil when the feed had none.
type TickerSnapshot struct {
	Symbol   string      `json:"symbol"`
	Prices   PriceSeries `json:"-"`
	Info     IssuerInfo  `json:"info"`
	Income   *Statement  `json:"-"`
	CashFlow *Statement  `json:"-"`
	Balance  *Statement  `json:"-"`
}

// IsDomestic reports whether the symbol trades on the Korea exchange or KOSDAQ.
func IsDomestic(symbol string) bool {
	return strings.HasSuffix(symbol, ".KS") || strings.HasSuffix(symbol, ".KQ")
}
