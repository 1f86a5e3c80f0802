// SPDX-License-Identifier: MIT

package config

import (
	"net"
	"strconv"

	"github.com/kryptoslab/kryptos/internal/validate"
)

// Validate validates a Config using the centralized validation package.
func Validate(cfg Config) error {
	v := validate.New()

	v.NotEmpty("Listen", cfg.Listen)
	if cfg.Listen != "" {
		_, portStr, err := net.SplitHostPort(cfg.Listen)
		if err != nil {
			v.AddError("Listen", "must be a valid host:port address", cfg.Listen)
		} else if port, perr := strconv.Atoi(portStr); perr != nil {
			v.AddError("Listen", "port must be numeric", cfg.Listen)
		} else {
			v.Port("Listen", port)
		}
	}

	if _, err := validate.ParseLogLevel(cfg.LogLevel); err != nil {
		v.AddError("LogLevel", "must be one of: debug, info, warn, error", cfg.LogLevel)
	}

	v.Directory("DataDir", cfg.DataDir, false)
	v.Positive("MaxTextLength", cfg.MaxTextLength)

	v.OneOf("Cache.Backend", cfg.Cache.Backend, []string{"memory", "redis", "none"})
	if cfg.Cache.Backend != "none" && cfg.Cache.TTL <= 0 {
		v.AddError("Cache.TTL", "must be > 0", cfg.Cache.TTL)
	}
	if cfg.Cache.Backend == "redis" {
		v.NotEmpty("Cache.RedisAddr", cfg.Cache.RedisAddr)
		v.NonNegative("Cache.RedisDB", cfg.Cache.RedisDB)
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.RequestsPerSecond <= 0 {
			v.AddError("RateLimit.RequestsPerSecond", "must be > 0", cfg.RateLimit.RequestsPerSecond)
		}
		v.Positive("RateLimit.Burst", cfg.RateLimit.Burst)
		if cfg.RateLimit.PerIPRequestsPerSecond <= 0 {
			v.AddError("RateLimit.PerIPRequestsPerSecond", "must be > 0", cfg.RateLimit.PerIPRequestsPerSecond)
		}
		v.Positive("RateLimit.PerIPBurst", cfg.RateLimit.PerIPBurst)
	}

	v.Range("Jobs.Workers", cfg.Jobs.Workers, 1, 64)
	v.Positive("Jobs.QueueSize", cfg.Jobs.QueueSize)
	if cfg.Jobs.Timeout <= 0 {
		v.AddError("Jobs.Timeout", "must be > 0", cfg.Jobs.Timeout)
	}
	if cfg.Jobs.Retention < 0 {
		v.AddError("Jobs.Retention", "cannot be negative", cfg.Jobs.Retention)
	}
	if cfg.Jobs.ReportDir != "" {
		v.Directory("Jobs.ReportDir", cfg.Jobs.ReportDir, false)
	}

	if cfg.Telemetry.Enabled {
		v.OneOf("Telemetry.Exporter", cfg.Telemetry.Exporter, []string{"grpc", "http", "noop"})
		if cfg.Telemetry.Exporter != "noop" {
			v.NotEmpty("Telemetry.Endpoint", cfg.Telemetry.Endpoint)
		}
	}
	if cfg.Telemetry.SamplingRate < 0 || cfg.Telemetry.SamplingRate > 1 {
		v.AddError("Telemetry.SamplingRate", "must be between 0 and 1", cfg.Telemetry.SamplingRate)
	}

	if !v.IsValid() {
		return v.Err()
	}

	return nil
}
