package feed

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asset-guardian/internal/types"
)

const chartFixture = `{"chart":{"result":[{"meta":{"currency":"KRW","symbol":"005930.KS","gmtoffset":32400,"exchangeTimezoneName":"Asia/Seoul"},
"timestamp":[1704153600,1704240000,1704326400],
"indicators":{"quote":[{"open":[100,101,null],"high":[102,103,104],"low":[99,100,101],"close":[101,null,103],"volume":[1000,null,1200]}]}}],"error":null}}`

const quoteSummaryFixture = `{"quoteSummary":{"result":[{
"price":{"longName":"Samsung Electronics","currency":"KRW","marketCap":{"raw":4.2e14,"fmt":"420T"}},
"summaryDetail":{"trailingPE":{"raw":14.2,"fmt":"14.20"},"forwardPE":{},"marketCap":{"raw":1,"fmt":"1"}},
"defaultKeyStatistics":{"priceToBook":{"raw":1.3},"enterpriseToEbitda":{"raw":5.1}},
"assetProfile":{"sector":"Technology","sectorKey":"technology"}}],"error":null}}`

const timeseriesFixture = `{"timeseries":{"result":[
{"meta":{"symbol":["AAPL"],"type":["quarterlyTotalRevenue"]},"timestamp":[1],
 "quarterlyTotalRevenue":[{"asOfDate":"2024-03-31","reportedValue":{"raw":90.0}},null,{"asOfDate":"2023-12-31","reportedValue":{"raw":119.0}}]},
{"meta":{"symbol":["AAPL"],"type":["quarterlyNetIncome"]}},
{"meta":{"symbol":["AAPL"],"type":["quarterlyOperatingIncome"]},"timestamp":[1],
 "quarterlyOperatingIncome":[{"asOfDate":"2024-03-31","reportedValue":{"raw":27.0}}]}],"error":null}}`

func newTestYahoo(t *testing.T, handler http.HandlerFunc) *Yahoo {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	y := NewYahoo(YahooOptions{BaseURL: srv.URL, RequestsPerSecond: 100, Burst: 10, MaxRetries: 1})
	y.now = func() time.Time { return time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC) }
	return y
}

func TestYahooPriceHistory(t *testing.T) {
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.URL.Path, "/v8/finance/chart/005930.KS"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.NotEmpty(t, r.URL.Query().Get("period1"))
		_, _ = w.Write([]byte(chartFixture))
	})

	series, err := y.PriceHistory(context.Background(), "005930.KS", types.Window2Y)
	require.NoError(t, err)

	// The bar with a null close is dropped.
	require.Len(t, series, 2)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), series[0].Date)
	assert.Equal(t, 101.0, series[0].Close)
	assert.Equal(t, 103.0, series[1].Close)
	assert.True(t, math.IsNaN(series[1].Open))
	assert.Equal(t, 1200.0, series[1].Volume)
}

func TestYahooPriceHistoryNotFoundIsEmpty(t *testing.T) {
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	})

	series, err := y.PriceHistory(context.Background(), "NOPE", types.Window10Y)
	require.NoError(t, err)
	assert.True(t, series.Empty())
}

func TestYahooIssuerInfoFlattensModules(t *testing.T) {
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("modules"), "assetProfile")
		_, _ = w.Write([]byte(quoteSummaryFixture))
	})

	info, err := y.IssuerInfo(context.Background(), "005930.KS")
	require.NoError(t, err)

	name, ok := info.Text("longName")
	require.True(t, ok)
	assert.Equal(t, "Samsung Electronics", name)
	assert.Equal(t, 14.2, *info.Float("trailingPE"))
	// price is read before summaryDetail.
	assert.Equal(t, 4.2e14, *info.Float("marketCap"))
	// {} without raw is treated as absent.
	assert.Nil(t, info.Float("forwardPE"))
	sector, _ := info.Text("sector")
	assert.Equal(t, "Technology", sector)
}

func TestYahooQuarterlyStatement(t *testing.T) {
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("type"), "quarterlyTotalRevenue")
		_, _ = w.Write([]byte(timeseriesFixture))
	})

	st, err := y.QuarterlyStatement(context.Background(), "AAPL", types.IncomeStatement)
	require.NoError(t, err)
	require.NotNil(t, st)

	rev, ok := st.Row("Total Revenue", "TotalRevenue")
	require.True(t, ok)
	require.Len(t, rev, 2)
	assert.Equal(t, 119.0, rev[0].Value, "sorted ascending by date")
	assert.Equal(t, 90.0, rev[1].Value)

	_, ok = st.Row("NetIncome")
	assert.False(t, ok, "series without points are omitted")
}

func TestYahooQuarterlyStatementEmpty(t *testing.T) {
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"timeseries":{"result":[],"error":null}}`))
	})

	st, err := y.QuarterlyStatement(context.Background(), "AAPL", types.BalanceSheet)
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestYahooServerErrorSurfaces(t *testing.T) {
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := y.IssuerInfo(context.Background(), "AAPL")
	assert.Error(t, err)
}

func TestYahooUsesFileCache(t *testing.T) {
	calls := 0
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(quoteSummaryFixture))
	})
	cache, err := NewCache(t.TempDir(), time.Hour)
	require.NoError(t, err)
	y.cache = cache

	for i := 0; i < 3; i++ {
		_, err := y.IssuerInfo(context.Background(), "005930.KS")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, calls)
}
