// Package metrics exposes Prometheus counters for ledger edits, refreshes,
// commits, sync runs, cache lookups and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is safe to use as a nil pointer; every recorder is then a no-op.
type Metrics struct {
	gatherer prometheus.Gatherer

	edits           *prometheus.CounterVec
	refreshes       *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	cacheLookups    *prometheus.CounterVec
	commits         *prometheus.CounterVec
	syncs           *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New registers every collector on reg. Pass a fresh prometheus.NewRegistry
// in tests; production code uses Default.
func New(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		gatherer: gatherer,
		edits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fincharts_ledger_edits_total",
				Help: "Total number of ledger cell edits applied",
			},
			[]string{"target", "coerced"},
		),
		refreshes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fincharts_chart_refreshes_total",
				Help: "Total number of chart refreshes",
			},
			[]string{"status"},
		),
		refreshDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fincharts_chart_refresh_duration_milliseconds",
				Help:    "Chart refresh duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
			},
		),
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fincharts_ledger_cache_lookups_total",
				Help: "Ledger cache lookups by result",
			},
			[]string{"result"},
		),
		commits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fincharts_ledger_commits_total",
				Help: "Total number of ledger commits to the data backend",
			},
			[]string{"status"},
		),
		syncs: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fincharts_sheet_syncs_total",
				Help: "Total number of ledger years mirrored to Google Sheets",
			},
			[]string{"status"},
		),
		httpRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fincharts_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "code"},
		),
		httpDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fincharts_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}
}

// Default registers on the process-wide Prometheus registry.
func Default() *Metrics {
	return New(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

func (m *Metrics) RecordEdit(target string, coerced bool) {
	if m == nil {
		return
	}
	m.edits.WithLabelValues(target, strconv.FormatBool(coerced)).Inc()
}

func (m *Metrics) RecordRefresh(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(status(err == nil)).Inc()
	m.refreshDuration.Observe(float64(d.Microseconds()) / 1000)
}

func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordCommit(err error) {
	if m == nil {
		return
	}
	m.commits.WithLabelValues(status(err == nil)).Inc()
}

func (m *Metrics) RecordSync(ok bool) {
	if m == nil {
		return
	}
	m.syncs.WithLabelValues(status(ok)).Inc()
}

func (m *Metrics) RecordHTTPRequest(method, route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func status(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}
