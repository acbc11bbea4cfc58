package evidence

import (
	"asset-guardian/internal/ta"
	"asset-guardian/internal/types"
)

const (
	maShort        = 200
	maLong         = 300
	maSlopeWindow  = 250
	maSlopeMinimum = 20
	drawdownWindow = 252 * 5
)

// AnalyzeLong combines fundamental trends with the long-window price trend.
func AnalyzeLong(snap *types.TickerSnapshot) types.LongResult {
	if snap == nil || snap.Prices.Empty() {
		return types.LongResult{Error: insufficient("long", "no price history").Error()}
	}

	pt := priceTrend(snap.Prices.Closes())
	ft := FundamentalTrends(snap.Income, snap.CashFlow, snap.Balance)

	return types.LongResult{
		Evidence: &types.LongEvidence{
			Fundamentals: ft,
			PriceTrend:   pt,
			Valuation:    valuation(snap.Info),
		},
		Outlook: longOutlook(ft.Verdict, pt.TrendOK),
	}
}

func longOutlook(v types.Verdict, trendOK bool) types.Outlook {
	switch {
	case v == types.VerdictImproved && trendOK:
		return types.OutlookFavorable
	case v == types.VerdictWorsened && !trendOK:
		return types.OutlookUnfavorable
	default:
		return types.OutlookMixed
	}
}

func priceTrend(closes []float64) types.PriceTrend {
	price := closes[len(closes)-1]
	ma200 := ta.SMASeries(closes, maShort)
	ma300 := ta.SMASeries(closes, maLong)

	pt := types.PriceTrend{
		Price:       price,
		MA200:       types.OptFloat(ma200[len(ma200)-1]),
		MA300:       types.OptFloat(ma300[len(ma300)-1]),
		MA200Slope:  maSlope(ma200),
		MA300Slope:  maSlope(ma300),
		MaxDrawdown: types.OptFloat(ta.MaxDrawdown(closes, drawdownWindow)),
	}
	pt.TrendOK = pt.MA200 != nil && price > *pt.MA200 && (pt.MA200Slope == nil || *pt.MA200Slope >= 0)
	return pt
}

// maSlope is the trend slope of the most recent defined moving-average values.
func maSlope(ma []float64) *float64 {
	defined := make([]float64, 0, len(ma))
	for _, v := range ma {
		if types.OptFloat(v) != nil {
			defined = append(defined, v)
		}
	}
	if len(defined) > maSlopeWindow {
		defined = defined[len(defined)-maSlopeWindow:]
	}
	if len(defined) < maSlopeMinimum {
		return nil
	}
	return types.OptFloat(ta.TrendSlope(defined))
}

func valuation(info types.IssuerInfo) types.Valuation {
	return types.Valuation{
		TrailingPE:         info.Float("trailingPE"),
		ForwardPE:          info.Float("forwardPE"),
		PriceToBook:        info.Float("priceToBook"),
		EnterpriseToEbitda: info.Float("enterpriseToEbitda"),
		PEG:                info.First("trailingPegRatio", "trailingPEG", "pegRatio"),
		MarketCap:          info.Float("marketCap"),
	}
}
