package httphandler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics.
var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vk_http_requests_total",
			Help: "Total HTTP requests handled",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vk_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Business metrics, updated from the handlers and seeded at startup.
var (
	// EntriesTotal is the current number of vault entries.
	EntriesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vk_entries_total",
			Help: "Current number of vault entries",
		},
	)

	// BackupsTotal counts snapshot files written, per triggering operation.
	BackupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vk_backups_total",
			Help: "Snapshot files written, by triggering operation",
		},
		[]string{"operation"},
	)
)

// metricsMiddleware records request counts and durations. The path label uses
// the chi route pattern (e.g. /api/vault/{id}) so ids do not explode metric
// cardinality.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		path := chi.RouteContext(r.Context()).RoutePattern()
		if path == "" {
			path = "unmatched"
		}

		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(sw.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
