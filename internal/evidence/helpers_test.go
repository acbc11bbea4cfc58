package evidence

import (
	"time"

	"asset-guardian/internal/types"
)

var day0 = time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

// closesToSeries builds consecutive daily bars with a one-unit high/low band.
func closesToSeries(closes []float64) types.PriceSeries {
	bars := make([]types.Bar, len(closes))
	for i, c := range closes {
		bars[i] = types.Bar{
			Date:   day0.AddDate(0, 0, i),
			Open:   c,
			High:   c + 0.5,
			Low:    c - 0.5,
			Close:  c,
			Volume: 1000,
		}
	}
	return types.NewPriceSeries(bars)
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func quarterly(vals ...float64) types.DatedSeries {
	pts := make([]types.DatedPoint, len(vals))
	for i, v := range vals {
		pts[i] = types.DatedPoint{Date: time.Date(2022, time.Month(1+3*i), 1, 0, 0, 0, 0, time.UTC), Value: v}
	}
	return types.NewDatedSeries(pts)
}

func linear(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

func mul(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] * b[i]
	}
	return out
}

// improvingStatements: revenue +100/quarter, both margins +0.01/quarter,
// rising free cash flow and debt/equity -0.02/quarter.
func improvingStatements() (income, cashflow, balance *types.Statement) {
	const q = 8
	rev := linear(q, 1000, 100)
	income = &types.Statement{Kind: types.IncomeStatement, Rows: map[string]types.DatedSeries{
		"Total Revenue":    quarterly(rev...),
		"Operating Income": quarterly(mul(rev, linear(q, 0.10, 0.01))...),
		"Net Income":       quarterly(mul(rev, linear(q, 0.05, 0.01))...),
	}}
	cashflow = &types.Statement{Kind: types.CashFlowStatement, Rows: map[string]types.DatedSeries{
		"Operating Cash Flow":  quarterly(linear(q, 200, 10)...),
		"Capital Expenditures": quarterly(constant(q, -50)...),
	}}
	balance = &types.Statement{Kind: types.BalanceSheet, Rows: map[string]types.DatedSeries{
		"Total Debt":               quarterly(linear(q, 800, -20)...),
		"Total Stockholder Equity": quarterly(constant(q, 1000)...),
	}}
	return income, cashflow, balance
}
