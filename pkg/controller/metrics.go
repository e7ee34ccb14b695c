package controller

import (
	"net/http"
	"strconv"
	"time"

	"wastepolicy/pkg/metrics"
)

// WithMetrics returns a middleware that counts requests by method and status
// code and observes their latency.
func WithMetrics(m *metrics.Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := record(w)

		next.ServeHTTP(rec, r)

		m.HTTPRequests.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
		m.HTTPLatency.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}
