package report

import (
	"fmt"
	"math"

	"asset-guardian/internal/types"
)

// BuildPayload flattens an analysis result into the document handed to a
// report generator. Raw numbers are kept and most get a sibling "<key>_display"
// string; absent values are omitted rather than sent as null.
func BuildPayload(res *types.AnalysisResult, currency string) map[string]any {
	return map[string]any{
		"symbol":   res.Symbol,
		"run_id":   res.RunID,
		"as_of":    res.AsOf.Format(types.ReportDateLayout),
		"currency": currency,
		"summary": map[string]any{
			"long":  string(res.Summary.LongOutlook),
			"mid":   string(res.Summary.MidOutlook),
			"short": string(res.Summary.ShortOutlook),
		},
		"long":  longPayload(res.Long, currency),
		"mid":   midPayload(res.Mid, currency),
		"short": shortPayload(res.Short, currency),
	}
}

func putNum(m map[string]any, key string, v *float64, display func(float64) string) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return
	}
	m[key] = *v
	if display != nil {
		m[key+"_display"] = display(*v)
	}
}

func longPayload(r types.LongResult, cur string) map[string]any {
	if r.Error != "" {
		return map[string]any{"error": r.Error}
	}
	ev := r.Evidence
	amount := func(v float64) string { return FormatAmount(v, cur) }
	price := func(v float64) string { return FormatPrice(v, cur) }

	ft := ev.Fundamentals
	fundamentals := map[string]any{
		"revenue":          moneyMetric(ft.Revenue, cur),
		"operating_margin": marginMetric(ft.OperatingMargin),
		"net_margin":       marginMetric(ft.NetMargin),
		"free_cash_flow":   moneyMetric(ft.FreeCashFlow, cur),
		"debt_to_equity":   leverageMetric(ft.DebtToEquity),
		"improving_count":  ft.Improving,
		"worsening_count":  ft.Worsening,
		"verdict":          string(ft.Verdict),
	}

	pt := ev.PriceTrend
	trend := map[string]any{"trend_ok": pt.TrendOK}
	putNum(trend, "price", &pt.Price, price)
	putNum(trend, "ma200", pt.MA200, price)
	putNum(trend, "ma300", pt.MA300, price)
	putNum(trend, "ma200_slope", pt.MA200Slope, FormatTrend)
	putNum(trend, "ma300_slope", pt.MA300Slope, FormatTrend)
	putNum(trend, "max_drawdown_5y", pt.MaxDrawdown, FormatPercent)

	v := ev.Valuation
	valuation := map[string]any{}
	putNum(valuation, "trailing_pe", v.TrailingPE, FormatRatio)
	putNum(valuation, "forward_pe", v.ForwardPE, FormatRatio)
	putNum(valuation, "price_to_book", v.PriceToBook, FormatRatio)
	putNum(valuation, "enterprise_to_ebitda", v.EnterpriseToEbitda, FormatRatio)
	putNum(valuation, "peg", v.PEG, FormatRatio)
	putNum(valuation, "market_cap", v.MarketCap, amount)

	return map[string]any{
		"outlook":      string(r.Outlook),
		"fundamentals": fundamentals,
		"price_trend":  trend,
		"valuation":    valuation,
	}
}

func trendBase(m types.TrendMetric) map[string]any {
	out := map[string]any{"available": m.Available}
	if !m.Available {
		return out
	}
	out["quarters"] = m.Quarters
	out["direction"] = string(m.Direction)
	putNum(out, "recent_improvement_ratio", m.RecentImprovementRatio, FormatPercent)
	return out
}

func moneyMetric(m types.TrendMetric, cur string) map[string]any {
	out := trendBase(m)
	putNum(out, "latest", m.Latest, func(v float64) string { return FormatAmount(v, cur) })
	putNum(out, "slope", m.Slope, func(v float64) string { return FormatAmountSlope(v, cur) })
	return out
}

func marginMetric(m types.TrendMetric) map[string]any {
	out := trendBase(m)
	putNum(out, "latest", m.Latest, FormatPercent)
	putNum(out, "slope", m.Slope, FormatRatioSlope)
	return out
}

func leverageMetric(m types.TrendMetric) map[string]any {
	out := trendBase(m)
	putNum(out, "latest", m.Latest, FormatRatio)
	putNum(out, "slope", m.Slope, func(v float64) string { return fmt.Sprintf("%s%.3fx per quarter", sign(v), v) })
	return out
}

func midPayload(r types.MidResult, cur string) map[string]any {
	if r.Error != "" {
		return map[string]any{"error": r.Error}
	}
	ev := r.Evidence
	price := func(v float64) string { return FormatPrice(v, cur) }

	reg := ev.Regime
	regime := map[string]any{
		"benchmark": reg.Benchmark,
		"signals":   reg.Signals,
		"score":     reg.Score,
		"label":     string(reg.Label),
	}
	putNum(regime, "volatility_index", reg.VolatilityIndex, func(v float64) string { return fmt.Sprintf("%.1f", v) })
	putNum(regime, "dollar_change_3m", reg.DollarChange3M, FormatPercent)
	putNum(regime, "fx_change_3m", reg.FXChange3M, FormatPercent)
	putNum(regime, "benchmark_drawdown_1m", reg.BenchmarkDrawdown, FormatPercent)

	es := ev.EventStudy
	events := map[string]any{
		"trigger":      es.Trigger,
		"forward_bars": es.Forward,
		"count":        es.Count,
		"verdict":      string(es.Verdict),
		"samples":      es.Samples,
	}
	putNum(events, "win_rate", es.WinRate, FormatPercent)
	putNum(events, "avg_excess", es.AvgExcess, FormatPercent)

	rel := ev.Peer.Relative
	relative := map[string]any{"available": rel.Available}
	if rel.Available {
		relative["instrument"] = rel.Instrument
		relative["aligned_observations"] = rel.Aligned
		relative["6m"] = periodPayload(rel.SixMonth)
		relative["12m"] = periodPayload(rel.OneYear)
		relative["24m"] = periodPayload(rel.TwoYear)
	} else if rel.Reason != "" {
		relative["reason"] = rel.Reason
	}

	tb := ev.Technical
	technical := map[string]any{"verdict": string(tb.Verdict)}
	if tb.Resistance > 0 {
		putNum(technical, "last_close", &tb.LastClose, price)
		putNum(technical, "support", &tb.Support, price)
		putNum(technical, "resistance", &tb.Resistance, price)
	}
	putNum(technical, "risk_reward", tb.RiskReward, FormatRatio)
	putNum(technical, "atr14", tb.ATR14, price)

	return map[string]any{
		"outlook":     string(r.Outlook),
		"score":       ev.Score,
		"regime":      regime,
		"event_study": events,
		"peer": map[string]any{
			"proxy":    ev.Peer.Proxy,
			"relative": relative,
		},
		"technical": technical,
	}
}

func periodPayload(p types.PeriodReturn) map[string]any {
	out := map[string]any{}
	putNum(out, "security", p.Security, FormatPercent)
	putNum(out, "peer", p.Peer, FormatPercent)
	putNum(out, "excess", p.Excess, FormatPercent)
	return out
}

func shortPayload(r types.ShortResult, cur string) map[string]any {
	if r.Error != "" {
		return map[string]any{"error": r.Error}
	}
	ev := r.Evidence
	price := func(v float64) string { return FormatPrice(v, cur) }

	vol := map[string]any{"state": string(ev.Volatility.State)}
	putNum(vol, "atr14_prior", ev.Volatility.ATRPrior, price)
	putNum(vol, "atr14_avg5", ev.Volatility.ATRAvg5, price)
	putNum(vol, "change", ev.Volatility.Change, FormatPercent)

	flow := map[string]any{"state": string(ev.Flow.State)}
	putNum(flow, "volume_prior", ev.Flow.VolumePrior, nil)
	putNum(flow, "volume_avg5", ev.Flow.VolumeAvg5, nil)
	putNum(flow, "volume_multiple", ev.Flow.VolumeMultiple, FormatRatio)
	putNum(flow, "gap", ev.Flow.Gap, FormatPercent)
	putNum(flow, "body", ev.Flow.Body, FormatPercent)
	putNum(flow, "range", ev.Flow.Range, FormatPercent)

	pivots := map[string]any{}
	putNum(pivots, "pivot", &ev.Pivots.Pivot, price)
	putNum(pivots, "r1", &ev.Pivots.R1, price)
	putNum(pivots, "s1", &ev.Pivots.S1, price)

	out := map[string]any{
		"outlook":    string(r.Outlook),
		"prior_date": ev.PriorDate.Format(types.ReportDateLayout),
		"volatility": vol,
		"flow":       flow,
		"scenarios":  ev.Scenarios,
		"pivots":     pivots,
	}
	putNum(out, "prior_high", &ev.PriorHigh, price)
	putNum(out, "prior_low", &ev.PriorLow, price)
	putNum(out, "prior_close", &ev.PriorClose, price)
	putNum(out, "rsi14", ev.RSI14, func(v float64) string { return fmt.Sprintf("%.1f", v) })
	return out
}
