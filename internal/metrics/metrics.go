// Package metrics exposes Prometheus collectors for the dashboard server and
// the importer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Registry *prometheus.Registry

	// ViewDuration tracks DeriveView latency on cache misses.
	ViewDuration prometheus.Histogram
	// ViewCache counts memoized view lookups by result ("hit" or "miss").
	ViewCache *prometheus.CounterVec
	// InvalidFilters counts requests rejected for an invalid filter cascade.
	InvalidFilters prometheus.Counter

	DatasetRecords   prometheus.Gauge
	DatasetDivisions prometheus.Gauge
	DatasetLoaded    prometheus.Gauge

	// Imports counts importer runs by source and result.
	Imports *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New registers every collector on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		ViewDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "canestats_view_duration_seconds",
			Help:    "Time spent deriving a dashboard view",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~800ms
		}),
		ViewCache: f.NewCounterVec(prometheus.CounterOpts{
			Name: "canestats_view_cache_total",
			Help: "Memoized view lookups by result",
		}, []string{"result"}),
		InvalidFilters: f.NewCounter(prometheus.CounterOpts{
			Name: "canestats_invalid_filters_total",
			Help: "Requests rejected for an invalid filter combination",
		}),
		DatasetRecords: f.NewGauge(prometheus.GaugeOpts{
			Name: "canestats_dataset_records",
			Help: "Taluka records in the current dataset",
		}),
		DatasetDivisions: f.NewGauge(prometheus.GaugeOpts{
			Name: "canestats_dataset_divisions",
			Help: "Divisions in the current dataset",
		}),
		DatasetLoaded: f.NewGauge(prometheus.GaugeOpts{
			Name: "canestats_dataset_loaded_timestamp_seconds",
			Help: "Unix time the current dataset became active",
		}),
		Imports: f.NewCounterVec(prometheus.CounterOpts{
			Name: "canestats_imports_total",
			Help: "Dataset import runs by source and result",
		}, []string{"source", "result"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "canestats_http_requests_total",
			Help: "HTTP requests by route, method and status code",
		}, []string{"route", "method", "code"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "canestats_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}
