package types

import "time"

// Horizon names one of the three analysis windows.
type Horizon string

const (
	HorizonLong  Horizon = "long"
	HorizonMid   Horizon = "mid"
	HorizonShort Horizon = "short"
)

// Outlook is the synthesized conclusion of a horizon.
type Outlook string

const (
	OutlookFavorable   Outlook = "favorable"
	OutlookUnfavorable Outlook = "unfavorable"
	OutlookMixed       Outlook = "mixed/neutral"

	OutlookDirectional   Outlook = "directional move likely"
	OutlookRangeBound    Outlook = "range-bound likely"
	OutlookCheckTriggers Outlook = "mixed: check triggers"
)

// Verdict is the categorical classification of one sub-signal.
type Verdict string

const (
	VerdictInsufficient Verdict = "insufficient data"

	// fundamental trend
	VerdictImproved  Verdict = "improved"
	VerdictWorsened  Verdict = "worsened"
	VerdictMixed     Verdict = "mixed"
	VerdictImproving Verdict = "improving"
	VerdictWorsening Verdict = "worsening"
	VerdictFlat      Verdict = "flat"

	// regime
	RegimeCalm     Verdict = "calm"
	RegimeNeutral  Verdict = "neutral"
	RegimeStressed Verdict = "stressed"

	// event study
	EventStrong Verdict = "strong"
	EventMixed  Verdict = "mixed"
	EventWeak   Verdict = "weak"

	// technical risk/reward
	TechUpsideFavored Verdict = "upside-favored"
	TechNeutral       Verdict = "neutral"
	TechDownsideRisk  Verdict = "downside-risk"

	// short horizon
	VolatilityExpanding   Verdict = "expanding"
	VolatilityContracting Verdict = "contracting"
	VolatilityNeutral     Verdict = "neutral"
	FlowInflow            Verdict = "inflow"
	FlowOutflow           Verdict = "outflow"
	FlowNormal            Verdict = "normal"
)

// TrendMetric summarizes one quarterly line item.
type TrendMetric struct {
	Available              bool     `json:"available"`
	Latest                 *float64 `json:"latest,omitempty"`
	Slope                  *float64 `json:"slope,omitempty"`
	RecentImprovementRatio *float64 `json:"recent_improvement_ratio,omitempty"`
	Quarters               int      `json:"quarters,omitempty"`
	Direction              Verdict  `json:"direction,omitempty"`
}

type FundamentalTrend struct {
	Revenue         TrendMetric `json:"revenue"`
	OperatingMargin TrendMetric `json:"operating_margin"`
	NetMargin       TrendMetric `json:"net_margin"`
	FreeCashFlow    TrendMetric `json:"free_cash_flow"`
	DebtToEquity    TrendMetric `json:"debt_to_equity"`
	Improving       int         `json:"improving_count"`
	Worsening       int         `json:"worsening_count"`
	Verdict         Verdict     `json:"verdict"`
}

type PriceTrend struct {
	Price       float64  `json:"price"`
	MA200       *float64 `json:"ma200,omitempty"`
	MA300       *float64 `json:"ma300,omitempty"`
	MA200Slope  *float64 `json:"ma200_slope,omitempty"`
	MA300Slope  *float64 `json:"ma300_slope,omitempty"`
	MaxDrawdown *float64 `json:"max_drawdown_5y,omitempty"`
	TrendOK     bool     `json:"trend_ok"`
}

type Valuation struct {
	TrailingPE         *float64 `json:"trailing_pe,omitempty"`
	ForwardPE          *float64 `json:"forward_pe,omitempty"`
	PriceToBook        *float64 `json:"price_to_book,omitempty"`
	EnterpriseToEbitda *float64 `json:"enterprise_to_ebitda,omitempty"`
	PEG                *float64 `json:"peg,omitempty"`
	MarketCap          *float64 `json:"market_cap,omitempty"`
}

type LongEvidence struct {
	Fundamentals FundamentalTrend `json:"fundamentals"`
	PriceTrend   PriceTrend       `json:"price_trend"`
	Valuation    Valuation        `json:"valuation"`
}

// LongResult carries either Error or Evidence and Outlook, never both.
type LongResult struct {
	Error    string        `json:"error,omitempty"`
	Evidence *LongEvidence `json:"evidence,omitempty"`
	Outlook  Outlook       `json:"outlook,omitempty"`
}

// RegimeReading is the macro-stress classification. Score counts Signals.
type RegimeReading struct {
	Benchmark         string   `json:"benchmark"`
	VolatilityIndex   *float64 `json:"volatility_index,omitempty"`
	DollarChange3M    *float64 `json:"dollar_change_3m,omitempty"`
	FXChange3M        *float64 `json:"fx_change_3m,omitempty"`
	BenchmarkDrawdown *float64 `json:"benchmark_drawdown_1m,omitempty"`
	Signals           []string `json:"signals"`
	Score             int      `json:"score"`
	Label             Verdict  `json:"label"`
}

// EventRecord is one historical analog. Returns are over the forward window.
type EventRecord struct {
	Date            time.Time `json:"date"`
	SecurityReturn  float64   `json:"security_return"`
	BenchmarkReturn float64   `json:"benchmark_return"`
	Excess          float64   `json:"excess"`
}

type EventStudy struct {
	Trigger   string        `json:"trigger"`
	Forward   int           `json:"forward_bars"`
	Count     int           `json:"count"`
	WinRate   *float64      `json:"win_rate,omitempty"`
	AvgExcess *float64      `json:"avg_excess,omitempty"`
	Verdict   Verdict       `json:"verdict"`
	Samples   []EventRecord `json:"samples"`
}

// PeerProxy is the representative instrument picked for sector comparison.
type PeerProxy struct {
	Label       string   `json:"label"`
	Instrument  string   `json:"instrument"`
	Candidates  []string `json:"candidates"`
	AvgVolume3M float64  `json:"avg_volume_3m"`
}

type PeriodReturn struct {
	Security *float64 `json:"security"`
	Peer     *float64 `json:"peer"`
	Excess   *float64 `json:"excess"`
}

type RelativePerformance struct {
	Available  bool         `json:"available"`
	Reason     string       `json:"reason,omitempty"`
	Instrument string       `json:"instrument,omitempty"`
	Aligned    int          `json:"aligned_observations,omitempty"`
	SixMonth   PeriodReturn `json:"6m"`
	OneYear    PeriodReturn `json:"12m"`
	TwoYear    PeriodReturn `json:"24m"`
}

type PeerComparison struct {
	Proxy    PeerProxy           `json:"proxy"`
	Relative RelativePerformance `json:"relative"`
}

type TechnicalBand struct {
	LastClose  float64  `json:"last_close"`
	Support    float64  `json:"support"`
	Resistance float64  `json:"resistance"`
	RiskReward *float64 `json:"risk_reward,omitempty"`
	ATR14      *float64 `json:"atr14,omitempty"`
	Verdict    Verdict  `json:"verdict"`
}

type MidEvidence struct {
	Regime     RegimeReading  `json:"regime"`
	EventStudy EventStudy     `json:"event_study"`
	Peer       PeerComparison `json:"peer"`
	Technical  TechnicalBand  `json:"technical"`
	Score      int            `json:"score"`
}

type MidResult struct {
	Error    string       `json:"error,omitempty"`
	Evidence *MidEvidence `json:"evidence,omitempty"`
	Outlook  Outlook      `json:"outlook,omitempty"`
}

type VolatilityAnomaly struct {
	ATRPrior *float64 `json:"atr14_prior"`
	ATRAvg5  *float64 `json:"atr14_avg5"`
	Change   *float64 `json:"change"`
	State    Verdict  `json:"state"`
}

type FlowAnomaly struct {
	VolumePrior    *float64 `json:"volume_prior"`
	VolumeAvg5     *float64 `json:"volume_avg5"`
	VolumeMultiple *float64 `json:"volume_multiple"`
	Gap            *float64 `json:"gap"`
	Body           *float64 `json:"body"`
	Range          *float64 `json:"range"`
	State          Verdict  `json:"state"`
}

// Trigger is a descriptive same-day condition. It is never evaluated live.
type Trigger struct {
	Price             float64  `json:"price,omitempty"`
	Low               float64  `json:"low,omitempty"`
	High              float64  `json:"high,omitempty"`
	MinVolumeMultiple *float64 `json:"min_volume_multiple,omitempty"`
	MaxVolumeMultiple *float64 `json:"max_volume_multiple,omitempty"`
	Description       string   `json:"description"`
}

type Scenarios struct {
	Breakout   Trigger `json:"breakout"`
	Breakdown  Trigger `json:"breakdown"`
	RangeBound Trigger `json:"range_bound"`
}

type PivotLevels struct {
	Pivot float64 `json:"pivot"`
	R1    float64 `json:"r1"`
	S1    float64 `json:"s1"`
}

type ShortEvidence struct {
	PriorDate  time.Time         `json:"prior_date"`
	PriorHigh  float64           `json:"prior_high"`
	PriorLow   float64           `json:"prior_low"`
	PriorClose float64           `json:"prior_close"`
	Volatility VolatilityAnomaly `json:"volatility"`
	Flow       FlowAnomaly       `json:"flow"`
	Scenarios  Scenarios         `json:"scenarios"`
	Pivots     PivotLevels       `json:"pivots"`
	RSI14      *float64          `json:"rsi14,omitempty"`
}

type ShortResult struct {
	Error    string         `json:"error,omitempty"`
	Evidence *ShortEvidence `json:"evidence,omitempty"`
	Outlook  Outlook        `json:"outlook,omitempty"`
}

type Summary struct {
	LongOutlook  Outlook `json:"long_outlook,omitempty"`
	MidOutlook   Outlook `json:"mid_outlook,omitempty"`
	ShortOutlook Outlook `json:"short_outlook,omitempty"`
}

// AnalysisResult groups the three horizon results of one run.
type AnalysisResult struct {
	RunID    string      `json:"run_id"`
	Symbol   string      `json:"symbol"`
	AsOf     time.Time   `json:"as_of"`
	Currency string      `json:"currency,omitempty"`
	Long     LongResult  `json:"long"`
	Mid      MidResult   `json:"mid"`
	Short    ShortResult `json:"short"`
	Summary  Summary     `json:"summary"`
}

// Errors lists the horizon-level errors keyed by horizon.
func (r *AnalysisResult) Errors() map[Horizon]string {
	out := make(map[Horizon]string)
	if r.Long.Error != "" {
		out[HorizonLong] = r.Long.Error
	}
	if r.Mid.Error != "" {
		out[HorizonMid] = r.Mid.Error
	}
	if r.Short.Error != "" {
		out[HorizonShort] = r.Short.Error
	}
	return out
}
