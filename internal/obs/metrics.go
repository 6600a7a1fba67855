// Package obs exposes Prometheus metrics for the HTTP server and the
// reporting workflow.
package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "refoundly",
		Name:      "http_in_flight_requests",
		Help:      "In-flight HTTP requests.",
	})

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "refoundly",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "refoundly",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latencies in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// LoginAttempts counts login attempts by kind (user, admin, otp) and outcome.
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "refoundly",
			Name:      "login_attempts_total",
			Help:      "Login attempts by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	// ReportsSubmitted counts new reports by report type.
	ReportsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "refoundly",
			Name:      "reports_submitted_total",
			Help:      "Reports submitted by report type.",
		},
		[]string{"report_type"},
	)

	// StatusChanges counts admin status updates by target status.
	StatusChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "refoundly",
			Name:      "status_changes_total",
			Help:      "Item status updates by target status.",
		},
		[]string{"status"},
	)

	// AuditWriteFailures counts audit entries that could not be persisted.
	AuditWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "refoundly",
		Name:      "audit_write_failures_total",
		Help:      "Audit entries dropped because the write failed.",
	})
)

// Handler serves the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument records in-flight requests, request counts and latency. The
// route label uses the matched ServeMux pattern to keep cardinality bounded.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(sw.code)
		httpRequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
