// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Write outcome label values.
const (
	resultOK    = "ok"
	resultError = "error"
)

// Metrics holds every collector the service exports.
//
// A nil *Metrics is valid and records nothing, so components can be built
// without metrics in tests.
type Metrics struct {
	registry *prometheus.Registry

	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	pointsWritten  *prometheus.CounterVec
	generatorTicks prometheus.Counter
}

// New creates the collectors on a fresh registry together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		pointsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "envsense_points_written_total",
			Help: "Points sent to the time-series backend, by measurement and result.",
		}, []string{"measurement", "result"}),
		generatorTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "envsense_generator_ticks_total",
			Help: "Completed synthetic generator ticks.",
		}),
	}

	reg.MustRegister(
		m.requests,
		m.duration,
		m.pointsWritten,
		m.generatorTicks,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveWrite records the outcome of one point write.
func (m *Metrics) ObserveWrite(measurement string, err error) {
	if m == nil {
		return
	}
	result := resultOK
	if err != nil {
		result = resultError
	}
	m.pointsWritten.WithLabelValues(measurement, result).Inc()
}

// ObserveTick records one completed generator tick.
func (m *Metrics) ObserveTick() {
	if m == nil {
		return
	}
	m.generatorTicks.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
