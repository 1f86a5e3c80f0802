// SPDX-License-Identifier: MIT

// Package config provides configuration loading for the kryptos daemon with
// precedence ENV > file > defaults, plus hot reloading from the config file.
package config

import "time"

// Config is the daemon configuration.
type Config struct {
	// Listen is the HTTP listen address (host:port).
	Listen string `yaml:"listen"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// DataDir is the root directory for persistent state.
	DataDir string `yaml:"data_dir"`

	// DBPath is the SQLite database path. Defaults to <DataDir>/kryptos.db.
	DBPath string `yaml:"db_path"`

	// MaxTextLength caps the ciphertext/plaintext size accepted by the API.
	MaxTextLength int `yaml:"max_text_length"`

	Cache     CacheSettings     `yaml:"cache"`
	RateLimit RateLimitSettings `yaml:"rate_limit"`
	Jobs      JobsSettings      `yaml:"jobs"`
	Telemetry TelemetrySettings `yaml:"telemetry"`

	// Version is set from the binary, never from file or ENV.
	Version string `yaml:"-"`
}

// CacheSettings configures the cryptanalysis result cache.
type CacheSettings struct {
	// Backend is one of memory, redis, none.
	Backend string `yaml:"backend"`

	// TTL is how long cached results stay valid.
	TTL time.Duration `yaml:"ttl"`

	// CleanupInterval is how often the in-memory cache evicts expired entries.
	CleanupInterval time.Duration `yaml:"cleanup_interval"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

// RateLimitSettings configures API rate limiting.
type RateLimitSettings struct {
	Enabled bool `yaml:"enabled"`

	// RequestsPerSecond and Burst apply globally across all clients.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`

	// PerIPRequestsPerSecond and PerIPBurst apply per client IP.
	PerIPRequestsPerSecond float64 `yaml:"per_ip_requests_per_second"`
	PerIPBurst             int     `yaml:"per_ip_burst"`
}

// JobsSettings configures the async cryptanalysis job manager.
type JobsSettings struct {
	// Workers is the number of concurrent crack workers.
	Workers int `yaml:"workers"`

	// QueueSize is the job queue capacity. Submissions beyond it are rejected.
	QueueSize int `yaml:"queue_size"`

	// Timeout bounds a single crack job.
	Timeout time.Duration `yaml:"timeout"`

	// ReportDir is where JSON job reports are exported.
	// Defaults to <DataDir>/reports.
	ReportDir string `yaml:"report_dir"`

	// Retention is how long finished job records are kept before the
	// periodic purge removes them. Zero keeps them forever.
	Retention time.Duration `yaml:"retention"`
}

// TelemetrySettings configures OpenTelemetry tracing.
type TelemetrySettings struct {
	Enabled bool `yaml:"enabled"`

	// Exporter is one of grpc, http, noop.
	Exporter string `yaml:"exporter"`

	Endpoint     string  `yaml:"endpoint"`
	Environment  string  `yaml:"environment"`
	SamplingRate float64 `yaml:"sampling_rate"`
}

// Defaults returns the built-in default configuration.
func Defaults() Config {
	return Config{
		Listen:        ":8080",
		LogLevel:      "info",
		DataDir:       "./data",
		MaxTextLength: 100000,
		Cache: CacheSettings{
			Backend:         "memory",
			TTL:             15 * time.Minute,
			CleanupInterval: 5 * time.Minute,
			RedisAddr:       "localhost:6379",
		},
		RateLimit: RateLimitSettings{
			Enabled:                true,
			RequestsPerSecond:      50,
			Burst:                  100,
			PerIPRequestsPerSecond: 5,
			PerIPBurst:             10,
		},
		Jobs: JobsSettings{
			Workers:   4,
			QueueSize: 64,
			Timeout:   2 * time.Minute,
			Retention: 7 * 24 * time.Hour,
		},
		Telemetry: TelemetrySettings{
			Enabled:      false,
			Exporter:     "noop",
			Endpoint:     "localhost:4317",
			Environment:  "development",
			SamplingRate: 1.0,
		},
	}
}
