package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.RecordFeedCall("PriceHistory", "ok", 120*time.Millisecond)
	r.RecordFeedCall("PriceHistory", "ok", 80*time.Millisecond)
	r.RecordFeedCall("IssuerInfo", "error", time.Second)
	r.RecordHorizon("long", "favorable")
	r.RecordReportCache("hit")
	r.RecordReportCache("miss")
	r.RecordReportCache("miss")
	r.RecordAnalysis(3 * time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.feedCalls.WithLabelValues("PriceHistory", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.feedCalls.WithLabelValues("IssuerInfo", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.horizonOutcomes.WithLabelValues("long", "favorable")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.reportCache.WithLabelValues("miss")))
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	r.RecordFeedCall("PriceHistory", "ok", time.Second)
	r.RecordHorizon("mid", "error")
	r.RecordAnalysis(time.Second)
	r.RecordReportCache("hit")
}

func TestHandlerExposesRegistry(t *testing.T) {
	r := New(prometheus.NewRegistry())
	r.RecordHorizon("short", "range-bound likely")

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "guardian_horizon_outcomes_total"))
}
