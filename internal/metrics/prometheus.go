package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder records engine metrics on a Prometheus registry.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	gatherer prometheus.Gatherer

	feedCalls       *prometheus.CounterVec
	feedLatency     *prometheus.HistogramVec
	horizonOutcomes *prometheus.CounterVec
	analysisLatency prometheus.Histogram
	reportCache     *prometheus.CounterVec
}

// New registers the collectors on reg. Use a fresh prometheus.NewRegistry() per process or test.
func New(reg *prometheus.Registry) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		gatherer: reg,
		feedCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guardian_feed_calls_total",
				Help: "Market-data feed calls by method and outcome",
			},
			[]string{"method", "outcome"},
		),
		feedLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "guardian_feed_call_duration_seconds",
				Help:    "Duration of market-data feed calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		horizonOutcomes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guardian_horizon_outcomes_total",
				Help: "Horizon results by horizon and outlook (error when the horizon failed)",
			},
			[]string{"horizon", "outlook"},
		),
		analysisLatency: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "guardian_analysis_duration_seconds",
				Help:    "Duration of full three-horizon analyses in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
			},
		),
		reportCache: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guardian_report_cache_total",
				Help: "Report cache lookups by result (hit, miss, error)",
			},
			[]string{"result"},
		),
	}
}

// RecordFeedCall records one feed call. outcome is "ok", "empty" or "error".
func (r *Recorder) RecordFeedCall(method, outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.feedCalls.WithLabelValues(method, outcome).Inc()
	r.feedLatency.WithLabelValues(method).Observe(d.Seconds())
}

func (r *Recorder) RecordHorizon(horizon, outlook string) {
	if r == nil {
		return
	}
	r.horizonOutcomes.WithLabelValues(horizon, outlook).Inc()
}

func (r *Recorder) RecordAnalysis(d time.Duration) {
	if r == nil {
		return
	}
	r.analysisLatency.Observe(d.Seconds())
}

func (r *Recorder) RecordReportCache(result string) {
	if r == nil {
		return
	}
	r.reportCache.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
