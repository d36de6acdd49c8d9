package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trivia_http_requests_total",
		Help: "HTTP requests handled, by route pattern, method and status.",
	}, []string{"pattern", "method", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "trivia_http_request_duration_seconds",
		Help:    "HTTP request latency, by route pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"pattern"})
)

// Metrics records request counts and latency. Labels use the matched route
// pattern, not the raw path, to keep cardinality bounded.
func Metrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(recorder, r)

			pattern := r.Pattern
			if pattern == "" {
				pattern = "unmatched"
			}
			requestsTotal.WithLabelValues(pattern, r.Method, strconv.Itoa(recorder.status)).Inc()
			requestDuration.WithLabelValues(pattern).Observe(time.Since(start).Seconds())
		})
	}
}
