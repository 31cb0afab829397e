// Package metrics owns the Prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "parking",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "parking",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "parking",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "parking",
			Subsystem: "domain",
			Name:      "operations_total",
			Help:      "Booking, release and wallet operations by outcome.",
		},
		[]string{"operation", "result"},
	)

	statsRollups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "parking",
			Subsystem: "stats",
			Name:      "rollups_total",
			Help:      "Daily statistics rollups by outcome.",
		},
		[]string{"result"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpInFlight,
		httpRequests,
		httpDuration,
		operations,
		statsRollups,
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InFlight adjusts the in-flight request gauge by delta.
func InFlight(delta float64) { httpInFlight.Add(delta) }

// RecordHTTPRequest records one finished request.  path is the route
// template, never the raw URL, to keep label cardinality bounded.
func RecordHTTPRequest(method, path string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// RecordOperation counts a domain operation; result is "ok" for a nil
// error and the supplied outcome label otherwise.
func RecordOperation(operation, result string) {
	operations.WithLabelValues(operation, result).Inc()
}

// RecordRollup counts a stats rollup run.
func RecordRollup(err error) {
	if err != nil {
		statsRollups.WithLabelValues("error").Inc()
		return
	}
	statsRollups.WithLabelValues("ok").Inc()
}
