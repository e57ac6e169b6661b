package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 查询相关的 Prometheus 指标，使用独立的 registry
type Metrics struct {
	registry *prometheus.Registry

	FetchTotal    *prometheus.CounterVec
	FetchDuration prometheus.Histogram
	CacheHits     prometheus.Counter
	RenderStates  *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.FetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cvesummary_fetch_total",
			Help: "Total number of upstream CVE record fetches by outcome",
		},
		[]string{"outcome"},
	)

	m.FetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cvesummary_fetch_duration_seconds",
			Help:    "Duration of upstream CVE record fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	m.CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cvesummary_cache_hits_total",
			Help: "Total number of lookups served from the local record cache",
		},
	)

	m.RenderStates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cvesummary_render_state_total",
			Help: "Total number of derived summary states by kind",
		},
		[]string{"state"},
	)

	m.registry.MustRegister(m.FetchTotal, m.FetchDuration, m.CacheHits, m.RenderStates)
	return m
}

// ObserveFetch records one upstream fetch. A nil receiver is a no-op.
func (m *Metrics) ObserveFetch(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	if outcome == "" {
		outcome = "ok"
	}
	m.FetchTotal.WithLabelValues(outcome).Inc()
	m.FetchDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveCacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

func (m *Metrics) ObserveState(state string) {
	if m == nil {
		return
	}
	m.RenderStates.WithLabelValues(state).Inc()
}

// Registry exposes the underlying registry for tests and custom handlers.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an http.Handler serving the registry in text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
