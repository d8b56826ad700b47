package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Analysis outcome labels.
const (
	StatusOK       = "ok"
	StatusFiltered = "filtered"
	StatusError    = "error"
)

// Metrics holds the Prometheus collectors of the screener. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram
	FetchDuration    *prometheus.HistogramVec
	CacheHits        prometheus.Counter
	ScreenRuns       prometheus.Counter
	LastRunPassed    prometheus.Gauge

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// uses a fresh private registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "twscreener_analyses_total",
			Help: "Per-symbol analyses by outcome",
		}, []string{"status"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "twscreener_analysis_duration_seconds",
			Help:    "Indicator and signal computation time per symbol",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
		}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "twscreener_fetch_duration_seconds",
			Help:    "Price history fetch latency by data source",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "twscreener_cache_hits_total",
			Help: "Price history requests served from cache",
		}),
		ScreenRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "twscreener_screen_runs_total",
			Help: "Completed screening runs",
		}),
		LastRunPassed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "twscreener_last_run_passed",
			Help: "Candidates that passed every filter in the last run",
		}),
		gatherer: reg,
	}
	reg.MustRegister(
		m.AnalysesTotal,
		m.AnalysisDuration,
		m.FetchDuration,
		m.CacheHits,
		m.ScreenRuns,
		m.LastRunPassed,
	)
	return m
}

// ObserveAnalysis records one per-symbol analysis.
func (m *Metrics) ObserveAnalysis(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.AnalysesTotal.WithLabelValues(status).Inc()
	if status != StatusError {
		m.AnalysisDuration.Observe(d.Seconds())
	}
}

// ObserveFetch records one fetch against source.
func (m *Metrics) ObserveFetch(source string, d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.WithLabelValues(source).Observe(d.Seconds())
}

// CacheHit counts a cache hit.
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

// ObserveRun records a finished screening run.
func (m *Metrics) ObserveRun(passed int) {
	if m == nil {
		return
	}
	m.ScreenRuns.Inc()
	m.LastRunPassed.Set(float64(passed))
}

// Handler serves the registered metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
