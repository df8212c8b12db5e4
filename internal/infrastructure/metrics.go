package infrastructure

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments the service exposes.
type Metrics struct {
	registry *prometheus.Registry

	HTTPDuration *prometheus.HistogramVec
	DatasetLoads prometheus.Counter
	DatasetRows  prometheus.Gauge
	Comparisons  prometheus.Counter
}

// NewMetrics creates and registers the service metrics on a fresh
// registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pushpulse",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		DatasetLoads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pushpulse",
			Name:      "dataset_loads_total",
			Help:      "Number of delivery reports loaded.",
		}),
		DatasetRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pushpulse",
			Name:      "dataset_rows",
			Help:      "Row count of the currently loaded report.",
		}),
		Comparisons: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pushpulse",
			Name:      "comparisons_total",
			Help:      "Number of variant comparison runs.",
		}),
	}
	registry.MustRegister(m.HTTPDuration, m.DatasetLoads, m.DatasetRows, m.Comparisons)
	return m
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
