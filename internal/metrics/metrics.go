package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry  *prometheus.Registry
	exports   *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	fallbacks *prometheus.CounterVec
	requests  *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shopdesk_exports_total",
			Help: "Rendered exports by kind, format and outcome.",
		}, []string{"kind", "format", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shopdesk_export_duration_seconds",
			Help:    "Time spent rendering an export.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		}, []string{"kind", "format"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shopdesk_export_fallbacks_total",
			Help: "PDF exports served as HTML after the PDF pass failed.",
		}, []string{"kind"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shopdesk_http_requests_total",
			Help: "HTTP requests by method and status code.",
		}, []string{"method", "code"}),
	}
	reg.MustRegister(
		m.exports, m.duration, m.fallbacks, m.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveExport(kind, format, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(kind, format, outcome).Inc()
	m.duration.WithLabelValues(kind, format).Observe(elapsed.Seconds())
}

func (m *Metrics) Fallback(kind string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(kind).Inc()
}

// Instrument counts every request passing through next.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return promhttp.InstrumentHandlerCounter(m.requests, next)
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
