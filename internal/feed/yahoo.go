package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"asset-guardian/internal/api"
	"asset-guardian/internal/interfaces"
	"asset-guardian/internal/logger"
	"asset-guardian/internal/types"
)

// quoteSummaryModules are flattened into one IssuerInfo map; earlier modules win on key clashes.
var quoteSummaryModules = []string{
	"price", "summaryDetail", "defaultKeyStatistics", "financialData", "assetProfile",
}

// statementTypes lists the quarterly timeseries requested per statement.
// Row labels are the type names without the "quarterly" prefix.
var statementTypes = map[types.StatementKind][]string{
	types.IncomeStatement:   {"TotalRevenue", "OperatingIncome", "NetIncome"},
	types.CashFlowStatement: {"OperatingCashFlow", "CapitalExpenditure", "FreeCashFlow"},
	types.BalanceSheet:      {"TotalDebt", "LongTermDebt", "StockholdersEquity"},
}

// statementLookback bounds the quarterly timeseries request.
const statementLookback = 5 * 365 * 24 * time.Hour

type YahooOptions struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	MaxRetries        int
	Crumb             string
	Cache             *Cache
}

// Yahoo reads the public Yahoo Finance chart, quoteSummary and
// fundamentals-timeseries endpoints.
type Yahoo struct {
	client *api.Client
	retry  *api.RetryConfig
	crumb  string
	cache  *Cache
	now    func() time.Time
}

var _ interfaces.MarketDataFeed = (*Yahoo)(nil)

func NewYahoo(opts YahooOptions) *Yahoo {
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 4
	}
	clientOpts := []api.ClientOption{
		api.WithBaseURL(strings.TrimRight(opts.BaseURL, "/")),
		api.WithRateLimit(rps, opts.Burst),
		api.WithLogging(logger.IsDebugEnabled()),
	}
	if opts.Timeout > 0 {
		clientOpts = append(clientOpts, api.WithTimeout(opts.Timeout))
	}
	for k, v := range api.YahooFinanceHeaders() {
		clientOpts = append(clientOpts, api.WithHeader(k, v))
	}

	retry := api.DefaultRetryConfig()
	if opts.MaxRetries > 0 {
		retry.MaxAttempts = opts.MaxRetries
	}

	return &Yahoo{
		client: api.NewClient(clientOpts...),
		retry:  retry,
		crumb:  opts.Crumb,
		cache:  opts.Cache,
		now:    time.Now,
	}
}

// get fetches path through the client's limiter and retry policy and the optional file cache.
// cacheKey identifies the logical request independent of the request time.
func (y *Yahoo) get(ctx context.Context, path, cacheKey string) ([]byte, error) {
	fetch := func() ([]byte, error) {
		resp, err := y.client.DoWithRetry(api.NewRequest(http.MethodGet, path).WithContext(ctx), y.retry)
		if err != nil {
			return nil, err
		}
		return resp.Body, nil
	}
	if y.cache == nil {
		return fetch()
	}
	return y.cache.GetOrFetch(cacheKey, fetch)
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency   string `json:"currency"`
				GMTOffset  int64  `json:"gmtoffset"`
				Symbol     string `json:"symbol"`
				ExchangeTZ string `json:"exchangeTimezoneName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *yahooError) Error() string { return e.Code + ": " + e.Description }

func (y *Yahoo) PriceHistory(ctx context.Context, symbol string, window types.Window) (types.PriceSeries, error) {
	end := y.now()
	q := url.Values{
		"period1":  {strconv.FormatInt(window.Start(end).Unix(), 10)},
		"period2":  {strconv.FormatInt(end.Unix(), 10)},
		"interval": {"1d"},
		"events":   {"div,split"},
	}
	body, err := y.get(ctx, api.WithQuery("/v8/finance/chart/"+url.PathEscape(symbol), q), MakeKey("chart", symbol, string(window)))
	if err != nil {
		if api.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("chart %s: %w", symbol, err)
	}
	return parseChart(body)
}

func parseChart(body []byte) (types.PriceSeries, error) {
	var cr chartResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, fmt.Errorf("decode chart: %w", err)
	}
	if cr.Chart.Error != nil {
		if cr.Chart.Error.Code == "Not Found" {
			return nil, nil
		}
		return nil, cr.Chart.Error
	}
	if len(cr.Chart.Result) == 0 || len(cr.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}
	res := cr.Chart.Result[0]
	quote := res.Indicators.Quote[0]

	bars := make([]types.Bar, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		local := time.Unix(ts+res.Meta.GMTOffset, 0).UTC()
		bars = append(bars, types.Bar{
			Date:   time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC),
			Open:   at(quote.Open, i),
			High:   at(quote.High, i),
			Low:    at(quote.Low, i),
			Close:  at(quote.Close, i),
			Volume: at(quote.Volume, i),
		})
	}
	return types.NewPriceSeries(bars), nil
}

func at(vals []*float64, i int) float64 {
	if i >= len(vals) || vals[i] == nil {
		return math.NaN()
	}
	return *vals[i]
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []map[string]map[string]json.RawMessage `json:"result"`
		Error  *yahooError                             `json:"error"`
	} `json:"quoteSummary"`
}

func (y *Yahoo) IssuerInfo(ctx context.Context, symbol string) (types.IssuerInfo, error) {
	q := url.Values{"modules": {strings.Join(quoteSummaryModules, ",")}}
	if y.crumb != "" {
		q.Set("crumb", y.crumb)
	}
	body, err := y.get(ctx, api.WithQuery("/v10/finance/quoteSummary/"+url.PathEscape(symbol), q), MakeKey("info", symbol))
	if err != nil {
		if api.IsNotFound(err) {
			return types.IssuerInfo{}, nil
		}
		return nil, fmt.Errorf("quoteSummary %s: %w", symbol, err)
	}
	return parseQuoteSummary(body)
}

// parseQuoteSummary flattens the requested modules into one map. Yahoo wraps
// numbers as {"raw": x, "fmt": "..."}; only raw is kept.
func parseQuoteSummary(body []byte) (types.IssuerInfo, error) {
	var qs quoteSummaryResponse
	if err := json.Unmarshal(body, &qs); err != nil {
		return nil, fmt.Errorf("decode quoteSummary: %w", err)
	}
	if qs.QuoteSummary.Error != nil {
		return nil, qs.QuoteSummary.Error
	}
	info := types.IssuerInfo{}
	if len(qs.QuoteSummary.Result) == 0 {
		return info, nil
	}
	res := qs.QuoteSummary.Result[0]
	for _, module := range quoteSummaryModules {
		for key, raw := range res[module] {
			if _, seen := info[key]; seen {
				continue
			}
			if v, ok := flatten(raw); ok {
				info[key] = v
			}
		}
	}
	return info, nil
}

func flatten(raw json.RawMessage) (any, bool) {
	var wrapped struct {
		Raw *float64 `json:"raw"`
	}
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &wrapped); err != nil || wrapped.Raw == nil {
			return nil, false
		}
		return *wrapped.Raw, true
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil || v == nil {
		return nil, false
	}
	switch v.(type) {
	case string, float64, bool:
		return v, true
	}
	return nil, false
}

type timeseriesResponse struct {
	Timeseries struct {
		Result []map[string]json.RawMessage `json:"result"`
		Error  *yahooError                  `json:"error"`
	} `json:"timeseries"`
}

type timeseriesPoint struct {
	AsOfDate      string `json:"asOfDate"`
	ReportedValue struct {
		Raw *float64 `json:"raw"`
	} `json:"reportedValue"`
}

func (y *Yahoo) QuarterlyStatement(ctx context.Context, symbol string, kind types.StatementKind) (*types.Statement, error) {
	names, ok := statementTypes[kind]
	if !ok {
		return nil, fmt.Errorf("unknown statement kind %q", kind)
	}
	prefixed := make([]string, len(names))
	for i, n := range names {
		prefixed[i] = "quarterly" + n
	}
	end := y.now()
	q := url.Values{
		"symbol":  {symbol},
		"type":    {strings.Join(prefixed, ",")},
		"period1": {strconv.FormatInt(end.Add(-statementLookback).Unix(), 10)},
		"period2": {strconv.FormatInt(end.Unix(), 10)},
	}
	body, err := y.get(ctx, api.WithQuery("/ws/fundamentals-timeseries/v1/finance/timeseries/"+url.PathEscape(symbol), q), MakeKey("statement", symbol, string(kind)))
	if err != nil {
		if api.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("timeseries %s %s: %w", symbol, kind, err)
	}
	return parseTimeseries(body, kind)
}

// parseTimeseries returns nil when no requested line item carried a value.
func parseTimeseries(body []byte, kind types.StatementKind) (*types.Statement, error) {
	var tr timeseriesResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("decode timeseries: %w", err)
	}
	if tr.Timeseries.Error != nil {
		return nil, tr.Timeseries.Error
	}

	st := &types.Statement{Kind: kind, Rows: map[string]types.DatedSeries{}}
	for _, res := range tr.Timeseries.Result {
		var meta struct {
			Type []string `json:"type"`
		}
		if err := json.Unmarshal(res["meta"], &meta); err != nil || len(meta.Type) == 0 {
			continue
		}
		key := meta.Type[0]
		raw, ok := res[key]
		if !ok {
			continue
		}
		var pts []*timeseriesPoint
		if err := json.Unmarshal(raw, &pts); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
		points := make([]types.DatedPoint, 0, len(pts))
		for _, p := range pts {
			if p == nil || p.ReportedValue.Raw == nil {
				continue
			}
			d, err := time.Parse(types.ReportDateLayout, p.AsOfDate)
			if err != nil {
				continue
			}
			points = append(points, types.DatedPoint{Date: d, Value: *p.ReportedValue.Raw})
		}
		if len(points) > 0 {
			st.Rows[strings.TrimPrefix(key, "quarterly")] = types.NewDatedSeries(points)
		}
	}
	if len(st.Rows) == 0 {
		return nil, nil
	}
	return st, nil
}
