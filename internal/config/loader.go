// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading with precedence ENV > File > Defaults.
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a new configuration loader.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

// Load loads configuration with precedence: ENV > File > Defaults.
func (l *Loader) Load() (Config, error) {
	cfg := Defaults()

	// File values overwrite defaults; keys absent from the file keep them.
	if l.configPath != "" {
		if err := l.loadFile(l.configPath, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	l.applyEnv(&cfg)

	if abs, err := filepath.Abs(cfg.DataDir); err == nil {
		cfg.DataDir = abs
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "kryptos.db")
	}
	if cfg.Jobs.ReportDir == "" {
		cfg.Jobs.ReportDir = filepath.Join(cfg.DataDir, "reports")
	}

	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnv overrides cfg fields from KRYPTOS_* environment variables.
// The current value doubles as the default, so unset variables change nothing.
func (l *Loader) applyEnv(cfg *Config) {
	cfg.Listen = l.envString("KRYPTOS_LISTEN", cfg.Listen)
	cfg.LogLevel = l.envString("KRYPTOS_LOG_LEVEL", cfg.LogLevel)
	cfg.DataDir = l.envString("KRYPTOS_DATA_DIR", cfg.DataDir)
	cfg.DBPath = l.envString("KRYPTOS_DB_PATH", cfg.DBPath)
	cfg.MaxTextLength = l.envInt("KRYPTOS_MAX_TEXT_LENGTH", cfg.MaxTextLength)

	cfg.Cache.Backend = l.envString("KRYPTOS_CACHE_BACKEND", cfg.Cache.Backend)
	cfg.Cache.TTL = l.envDuration("KRYPTOS_CACHE_TTL", cfg.Cache.TTL)
	cfg.Cache.CleanupInterval = l.envDuration("KRYPTOS_CACHE_CLEANUP_INTERVAL", cfg.Cache.CleanupInterval)
	cfg.Cache.RedisAddr = l.envString("KRYPTOS_REDIS_ADDR", cfg.Cache.RedisAddr)
	cfg.Cache.RedisPassword = l.envString("KRYPTOS_REDIS_PASSWORD", cfg.Cache.RedisPassword)
	cfg.Cache.RedisDB = l.envInt("KRYPTOS_REDIS_DB", cfg.Cache.RedisDB)

	cfg.RateLimit.Enabled = l.envBool("KRYPTOS_RATELIMIT_ENABLED", cfg.RateLimit.Enabled)
	cfg.RateLimit.RequestsPerSecond = l.envFloat("KRYPTOS_RATELIMIT_RPS", cfg.RateLimit.RequestsPerSecond)
	cfg.RateLimit.Burst = l.envInt("KRYPTOS_RATELIMIT_BURST", cfg.RateLimit.Burst)
	cfg.RateLimit.PerIPRequestsPerSecond = l.envFloat("KRYPTOS_RATELIMIT_PER_IP_RPS", cfg.RateLimit.PerIPRequestsPerSecond)
	cfg.RateLimit.PerIPBurst = l.envInt("KRYPTOS_RATELIMIT_PER_IP_BURST", cfg.RateLimit.PerIPBurst)

	cfg.Jobs.Workers = l.envInt("KRYPTOS_JOBS_WORKERS", cfg.Jobs.Workers)
	cfg.Jobs.QueueSize = l.envInt("KRYPTOS_JOBS_QUEUE_SIZE", cfg.Jobs.QueueSize)
	cfg.Jobs.Timeout = l.envDuration("KRYPTOS_JOBS_TIMEOUT", cfg.Jobs.Timeout)
	cfg.Jobs.ReportDir = l.envString("KRYPTOS_JOBS_REPORT_DIR", cfg.Jobs.ReportDir)
	cfg.Jobs.Retention = l.envDuration("KRYPTOS_JOBS_RETENTION", cfg.Jobs.Retention)

	cfg.Telemetry.Enabled = l.envBool("KRYPTOS_TELEMETRY_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = l.envString("KRYPTOS_TELEMETRY_EXPORTER", cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = l.envString("KRYPTOS_TELEMETRY_ENDPOINT", cfg.Telemetry.Endpoint)
	cfg.Telemetry.Environment = l.envString("KRYPTOS_TELEMETRY_ENVIRONMENT", cfg.Telemetry.Environment)
	cfg.Telemetry.SamplingRate = l.envFloat("KRYPTOS_TELEMETRY_SAMPLING_RATE", cfg.Telemetry.SamplingRate)
}

// loadFile decodes a YAML file into cfg with STRICT parsing.
// Unknown fields cause an error to prevent misconfiguration.
func (l *Loader) loadFile(path string, cfg *Config) error {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // Reject unknown fields

	if err := dec.Decode(cfg); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}

	// Strict: Ensure no multiple documents or trailing content
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("config file contains multiple documents or trailing content")
	}

	return nil
}
