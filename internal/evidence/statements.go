package evidence

import (
	"math"

	"asset-guardian/internal/ta"
	"asset-guardian/internal/types"
)

// Line-item synonyms, tried in order. Statement feeds disagree on spacing.
var (
	revenueLabels         = []string{"Total Revenue", "TotalRevenue", "Revenue"}
	operatingIncomeLabels = []string{"Operating Income", "OperatingIncome"}
	netIncomeLabels       = []string{"Net Income", "NetIncome"}
	operatingCashLabels   = []string{"Total Cash From Operating Activities", "Operating Cash Flow", "OperatingCashFlow"}
	capexLabels           = []string{"Capital Expenditures", "CapitalExpenditures", "Capital Expenditure", "CapitalExpenditure"}
	debtLabels            = []string{"Total Debt", "TotalDebt", "Long Term Debt", "LongTermDebt"}
	equityLabels          = []string{"Total Stockholder Equity", "TotalStockholderEquity", "Stockholders Equity", "StockholdersEquity"}
)

// recentDiffs is how many quarter-over-quarter changes feed the improvement ratio.
const recentDiffs = 8

func row(st *types.Statement, labels []string) types.DatedSeries {
	s, _ := st.Row(labels...)
	return s
}

func ratio(num, den types.DatedSeries) types.DatedSeries {
	if num == nil || den == nil {
		return nil
	}
	return types.Combine(num, den, func(x, y float64) float64 { return x / y })
}

// freeCashFlow is operating cash flow plus (negatively signed) capex,
// or operating cash flow alone when there is no capex row.
func freeCashFlow(cf *types.Statement) types.DatedSeries {
	ocf := row(cf, operatingCashLabels)
	if ocf == nil {
		return nil
	}
	capex := row(cf, capexLabels)
	if capex == nil {
		return ocf
	}
	return types.Combine(ocf, capex, func(x, y float64) float64 { return x + y })
}

// trendMetric needs three observed quarters. lowerIsBetter flips the direction label.
func trendMetric(s types.DatedSeries, lowerIsBetter bool) types.TrendMetric {
	vals := s.Valid().Values()
	n := len(vals)
	if n < 3 {
		return types.TrendMetric{Available: false, Quarters: n, Direction: types.VerdictInsufficient}
	}

	slope := ta.TrendSlope(vals)
	m := types.TrendMetric{
		Available: true,
		Latest:    types.OptFloat(vals[n-1]),
		Slope:     types.OptFloat(slope),
		Quarters:  n,
	}

	// diffs[0] has no predecessor and never counts as an improvement.
	diffs := make([]float64, n)
	diffs[0] = math.NaN()
	for i := 1; i < n; i++ {
		diffs[i] = vals[i] - vals[i-1]
	}
	recent := diffs
	if n >= recentDiffs {
		recent = diffs[n-recentDiffs:]
	}
	up := 0
	for _, d := range recent {
		if d > 0 {
			up++
		}
	}
	m.RecentImprovementRatio = types.OptFloat(float64(up) / float64(len(recent)))

	switch {
	case m.Slope == nil:
		m.Direction = types.VerdictInsufficient
	case *m.Slope == 0:
		m.Direction = types.VerdictFlat
	case (*m.Slope > 0) != lowerIsBetter:
		m.Direction = types.VerdictImproving
	default:
		m.Direction = types.VerdictWorsening
	}
	return m
}

// FundamentalTrends classifies the five quarterly metrics. Absent statements
// leave the affected metrics unavailable.
func FundamentalTrends(income, cashflow, balance *types.Statement) types.FundamentalTrend {
	revenue := row(income, revenueLabels)
	ft := types.FundamentalTrend{
		Revenue:         trendMetric(revenue, false),
		OperatingMargin: trendMetric(ratio(row(income, operatingIncomeLabels), revenue), false),
		NetMargin:       trendMetric(ratio(row(income, netIncomeLabels), revenue), false),
		FreeCashFlow:    trendMetric(freeCashFlow(cashflow), false),
		DebtToEquity:    trendMetric(ratio(row(balance, debtLabels), row(balance, equityLabels)), true),
	}

	for _, m := range []types.TrendMetric{ft.Revenue, ft.OperatingMargin, ft.NetMargin, ft.FreeCashFlow, ft.DebtToEquity} {
		switch m.Direction {
		case types.VerdictImproving:
			ft.Improving++
		case types.VerdictWorsening:
			ft.Worsening++
		}
	}

	switch {
	case ft.Improving >= 3:
		ft.Verdict = types.VerdictImproved
	case ft.Worsening >= 3:
		ft.Verdict = types.VerdictWorsened
	default:
		ft.Verdict = types.VerdictMixed
	}
	return ft
}
