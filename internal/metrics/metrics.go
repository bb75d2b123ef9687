// Package metrics exposes Prometheus counters for the relay.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	submissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_submissions_total",
			Help: "Contact form submissions by outcome.",
		},
		[]string{"outcome"},
	)
	verificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_verifications_total",
			Help: "Challenge verification calls by result.",
		},
		[]string{"result"},
	)
	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_notifications_total",
			Help: "Outbound notifications by kind and result.",
		},
		[]string{"kind", "result"},
	)
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_http_requests_total",
			Help: "Total number of HTTP requests received.",
		},
		[]string{"method", "code"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contact_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

func init() {
	prometheus.MustRegister(
		submissionsTotal,
		verificationsTotal,
		notificationsTotal,
		httpRequestsTotal,
		httpRequestDuration,
	)
}

// RecordSubmission counts a finished submission. outcome is a reason name
// such as "ok", "honeypot" or "verification_failed".
func RecordSubmission(outcome string) {
	submissionsTotal.WithLabelValues(outcome).Inc()
}

// RecordVerification counts one verification result.
func RecordVerification(passed bool) {
	result := "failed"
	if passed {
		result = "passed"
	}
	verificationsTotal.WithLabelValues(result).Inc()
}

// RecordNotification counts one notification send attempt.
func RecordNotification(kind string, err error) {
	result := "sent"
	if err != nil {
		result = "failed"
	}
	notificationsTotal.WithLabelValues(kind, result).Inc()
}

// Handler serves the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and latency.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		httpRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}
