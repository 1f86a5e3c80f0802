// SPDX-License-Identifier: MIT

// Package api implements the HTTP surface of the kryptos daemon: synchronous
// cipher and analysis endpoints, the asynchronous crack-job API, the toy RSA
// endpoints and the usual health and metrics plumbing.
package api

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/kryptoslab/kryptos/internal/api/middleware"
	"github.com/kryptoslab/kryptos/internal/config"
	"github.com/kryptoslab/kryptos/internal/jobs"
	"github.com/kryptoslab/kryptos/internal/log"
	"github.com/kryptoslab/kryptos/internal/ratelimit"
)

// Server wires the HTTP handlers to the daemon's domain services.
type Server struct {
	cfg     config.Config
	jobs    *jobs.Manager
	limiter *ratelimit.Limiter
	logger  zerolog.Logger
	ready   atomic.Bool
}

// New constructs a Server. The job manager must already be backed by a store
// and cache; mgr may only be nil in tests that never touch the job routes.
func New(cfg config.Config, mgr *jobs.Manager) *Server {
	s := &Server{
		cfg:    cfg,
		jobs:   mgr,
		logger: log.WithComponent("api"),
	}
	if cfg.RateLimit.Enabled {
		s.limiter = ratelimit.New(ratelimit.Config{
			GlobalRate:      rate.Limit(cfg.RateLimit.RequestsPerSecond),
			GlobalBurst:     cfg.RateLimit.Burst,
			PerIPRate:       rate.Limit(cfg.RateLimit.PerIPRequestsPerSecond),
			PerIPBurst:      cfg.RateLimit.PerIPBurst,
			CleanupInterval: 5 * time.Minute,
		})
	}
	return s
}

// SetReady flips the readiness probe. The daemon calls it once the job
// manager is running and again on shutdown.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// ApplyConfig reapplies the settings that can change at runtime. Only the
// crack limiter rates are swappable; the listen address and middleware
// stack need a restart, and rate limiting cannot be toggled on or off.
func (s *Server) ApplyConfig(cfg config.Config) {
	if s.limiter == nil || !cfg.RateLimit.Enabled {
		return
	}
	s.limiter.SetConfig(ratelimit.Config{
		GlobalRate:      rate.Limit(cfg.RateLimit.RequestsPerSecond),
		GlobalBurst:     cfg.RateLimit.Burst,
		PerIPRate:       rate.Limit(cfg.RateLimit.PerIPRequestsPerSecond),
		PerIPBurst:      cfg.RateLimit.PerIPBurst,
		CleanupInterval: 5 * time.Minute,
	})
	s.logger.Info().
		Float64("global_rps", cfg.RateLimit.RequestsPerSecond).
		Float64("per_ip_rps", cfg.RateLimit.PerIPRequestsPerSecond).
		Msg("rate limits reapplied")
}

// Handler builds the full route tree with the canonical middleware stack.
func (s *Server) Handler() http.Handler {
	r := middleware.NewRouter(middleware.StackConfig{
		EnableCORS:            true,
		EnableSecurityHeaders: true,
		EnableMetrics:         true,
		TracingService:        serviceName(s.cfg),
		EnableLogging:         true,
		EnableRateLimit:       s.cfg.RateLimit.Enabled,
		RequestsPerMin:        int(s.cfg.RateLimit.RequestsPerSecond * 60),
	})

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/encrypt", s.handleEncrypt)
		r.Post("/decrypt", s.handleDecrypt)
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/ciphers", s.handleCiphers)

		// Cryptanalysis burns CPU; it sits behind the stricter token
		// bucket in addition to the global limiter.
		r.Group(func(r chi.Router) {
			r.Use(middleware.CrackRateLimit(s.limiter))
			r.Post("/crack", s.handleCrack)
			r.Post("/rsa/factor", s.handleRSAFactor)
		})

		r.Post("/rsa/keys", s.handleRSAKeys)

		r.Get("/jobs", s.handleJobList)
		r.Get("/jobs/{id}", s.handleJobGet)
		r.Delete("/jobs/{id}", s.handleJobDelete)
		r.Post("/jobs/{id}/cancel", s.handleJobCancel)
	})

	return r
}

func serviceName(cfg config.Config) string {
	if !cfg.Telemetry.Enabled {
		return ""
	}
	return "kryptosd"
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.cfg.Version,
	})
}

func (s *Server) handleReadyz(w http.ResponseWriter, _ *http.Request) {
	if !s.ready.Load() {
		writeServiceUnavailable(w, "not ready")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
