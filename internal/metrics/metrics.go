// Package metrics exposes Prometheus counters for HTTP traffic and menu
// activity.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erazemk/jedilnik/internal/events"
)

// Metrics owns a registry and the collectors registered on it.
type Metrics struct {
	Registry    *prometheus.Registry
	Requests    *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
	MenuViews   prometheus.Counter
	DataChanged *prometheus.CounterVec
}

// New creates a registry with the process and Go collectors plus the
// jedilnik metrics.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jedilnik_http_requests_total",
			Help: "HTTP requests by method and status code.",
		}, []string{"method", "code"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jedilnik_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		MenuViews: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jedilnik_menu_views_total",
			Help: "Filtered menu views served.",
		}),
		DataChanged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jedilnik_data_changed_total",
			Help: "Data-changed events by kind.",
		}, []string{"kind"}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Requests, m.Duration, m.MenuViews, m.DataChanged,
	)
	return m
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method string, code int, d time.Duration) {
	m.Requests.WithLabelValues(method, strconv.Itoa(code)).Inc()
	m.Duration.WithLabelValues(method).Observe(d.Seconds())
}

// ObserveEvent counts a data-changed event. It is meant to be passed to
// events.Bus.Subscribe.
func (m *Metrics) ObserveEvent(e events.Event) {
	m.DataChanged.WithLabelValues(string(e.Kind)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
