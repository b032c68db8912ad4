package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the history cache and HTTP API.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter
	CacheEntries   prometheus.Gauge
	FetchesTotal   *prometheus.CounterVec // labels: outcome=ok|upstream|transport
	FetchDur       prometheus.Histogram
	SharedWaiters  prometheus.Counter
	Invalidations  prometheus.Counter
	RequestsTotal  *prometheus.CounterVec // labels: route, code
	IndicatorDur   *prometheus.HistogramVec
	SchedulerRuns  *prometheus.CounterVec // labels: outcome=ok|error
	WatchlistItems prometheus.Gauge
}

// NewMetrics creates the collectors on a private registry that also carries the Go runtime collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "argochart_cache_hits_total",
			Help: "History requests served from the cache",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "argochart_cache_misses_total",
			Help: "History requests that required a provider fetch",
		}),
		CacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "argochart_cache_entries",
			Help: "Resolved entries currently held by the cache",
		}),
		FetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "argochart_fetches_total",
			Help: "Provider fetches by outcome",
		}, []string{"outcome"}),
		FetchDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "argochart_fetch_duration_seconds",
			Help:    "Provider fetch latency",
			Buckets: prometheus.DefBuckets,
		}),
		SharedWaiters: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "argochart_fetch_shared_total",
			Help: "Callers that joined a fetch already in flight",
		}),
		Invalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "argochart_cache_invalidations_total",
			Help: "Entries dropped by explicit invalidation",
		}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "argochart_http_requests_total",
			Help: "HTTP API requests by route and status code",
		}, []string{"route", "code"}),
		IndicatorDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "argochart_indicator_compute_duration_seconds",
			Help:    "Indicator compute latency per request",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}, []string{"indicator"}),
		SchedulerRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "argochart_scheduler_refreshes_total",
			Help: "Scheduled watchlist refreshes by outcome",
		}, []string{"outcome"}),
		WatchlistItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "argochart_watchlist_items",
			Help: "Symbols on the watchlist",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.CacheHits,
		m.CacheMisses,
		m.CacheEntries,
		m.FetchesTotal,
		m.FetchDur,
		m.SharedWaiters,
		m.Invalidations,
		m.RequestsTotal,
		m.IndicatorDur,
		m.SchedulerRuns,
		m.WatchlistItems,
	)

	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}

	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHit() {
	if m == nil {
		return
	}

	m.CacheHits.Inc()
}

func (m *Metrics) ObserveMiss() {
	if m == nil {
		return
	}

	m.CacheMisses.Inc()
}

func (m *Metrics) ObserveShared() {
	if m == nil {
		return
	}

	m.SharedWaiters.Inc()
}

// ObserveFetch records one provider round trip.
func (m *Metrics) ObserveFetch(outcome string, seconds float64) {
	if m == nil {
		return
	}

	m.FetchesTotal.WithLabelValues(outcome).Inc()
	m.FetchDur.Observe(seconds)
}

func (m *Metrics) SetEntries(n int) {
	if m == nil {
		return
	}

	m.CacheEntries.Set(float64(n))
}

func (m *Metrics) ObserveInvalidations(n int) {
	if m == nil || n <= 0 {
		return
	}

	m.Invalidations.Add(float64(n))
}

func (m *Metrics) ObserveRequest(route string, code string) {
	if m == nil {
		return
	}

	m.RequestsTotal.WithLabelValues(route, code).Inc()
}

func (m *Metrics) ObserveIndicator(name string, seconds float64) {
	if m == nil {
		return
	}

	m.IndicatorDur.WithLabelValues(name).Observe(seconds)
}

func (m *Metrics) ObserveSchedulerRun(outcome string) {
	if m == nil {
		return
	}

	m.SchedulerRuns.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetWatchlistItems(n int) {
	if m == nil {
		return
	}

	m.WatchlistItems.Set(float64(n))
}
