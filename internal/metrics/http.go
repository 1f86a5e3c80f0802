// SPDX-License-Identifier: MIT

// Package metrics exposes the Prometheus instrumentation for the daemon:
// HTTP request metrics, crack-job outcomes and durations, cache
// effectiveness and factorization attempts.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks request latencies by route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kryptos_http_request_duration_seconds",
		Help:    "HTTP request latencies in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	// HTTPRequestsInFlight tracks the number of requests currently being served.
	HTTPRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kryptos_http_requests_in_flight",
		Help: "Current number of HTTP requests being served",
	})

	// HTTPResponseSize tracks response body sizes.
	HTTPResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kryptos_http_response_size_bytes",
		Help:    "HTTP response sizes in bytes",
		Buckets: prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path", "status"})
)

// ObserveHTTPRequest records one served request.
func ObserveHTTPRequest(method, path string, status int, seconds float64, responseBytes int) {
	code := strconv.Itoa(status)
	HTTPRequestDuration.WithLabelValues(method, path, code).Observe(seconds)
	if responseBytes > 0 {
		HTTPResponseSize.WithLabelValues(method, path, code).Observe(float64(responseBytes))
	}
}
