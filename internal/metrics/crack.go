// SPDX-License-Identifier: MIT

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CrackTotal tracks crack attempts by cipher and outcome.
	CrackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kryptos_crack_total",
		Help: "Total crack attempts by cipher and outcome",
	}, []string{"cipher", "outcome"})

	// CrackDuration tracks how long breakers run. Exhaustive attacks sit in
	// the low buckets, hill climbs in the upper ones.
	CrackDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kryptos_crack_duration_seconds",
		Help:    "Breaker run time in seconds",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"cipher"})

	// JobsActive tracks crack jobs currently queued or running.
	JobsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kryptos_jobs_active",
		Help: "Crack jobs currently queued or running",
	})

	// CacheTotal tracks result-cache lookups by result.
	CacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kryptos_cache_lookups_total",
		Help: "Result cache lookups by result",
	}, []string{"result"})

	// FactorTotal tracks factorization attempts by method and outcome.
	FactorTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kryptos_factor_total",
		Help: "Factorization attempts by method and outcome",
	}, []string{"method", "outcome"})
)

// IncCrack records a finished crack attempt.
func IncCrack(cipher string, success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	CrackTotal.WithLabelValues(cipher, outcome).Inc()
}

// ObserveCrackDuration records a breaker's run time.
func ObserveCrackDuration(cipher string, d time.Duration) {
	CrackDuration.WithLabelValues(cipher).Observe(d.Seconds())
}

// IncCacheLookup records a cache hit or miss.
func IncCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheTotal.WithLabelValues(result).Inc()
}

// IncFactor records a factorization attempt outcome.
func IncFactor(method string, success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	FactorTotal.WithLabelValues(method, outcome).Inc()
}
