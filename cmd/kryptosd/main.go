// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/kryptoslab/kryptos/internal/api"
	"github.com/kryptoslab/kryptos/internal/cache"
	"github.com/kryptoslab/kryptos/internal/config"
	"github.com/kryptoslab/kryptos/internal/jobs"
	klog "github.com/kryptoslab/kryptos/internal/log"
	"github.com/kryptoslab/kryptos/internal/store"
	"github.com/kryptoslab/kryptos/internal/telemetry"
	"github.com/kryptoslab/kryptos/internal/version"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		os.Exit(0)
	}

	// Configure logger with safe defaults until config is loaded.
	klog.Configure(klog.Config{
		Level:   "info",
		Service: "kryptosd",
		Version: version.Version,
	})

	logger := klog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Determine config path:
	// - Explicit via --config
	// - Otherwise auto-load ${KRYPTOS_DATA_DIR}/kryptos.yaml if it exists
	effectiveConfigPath := strings.TrimSpace(*configPath)
	if effectiveConfigPath == "" {
		dataDir := strings.TrimSpace(config.ParseString("KRYPTOS_DATA_DIR", "./data"))
		autoPath := filepath.Join(dataDir, "kryptos.yaml")
		if _, err := os.Stat(autoPath); err == nil {
			effectiveConfigPath = autoPath
		}
	}

	// Load configuration with precedence: ENV > File > Defaults
	loader := config.NewLoader(effectiveConfigPath, version.Version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", effectiveConfigPath).
			Msg("failed to load configuration")
	}

	// Re-configure with the loaded log level. Configure is once-only, so the
	// global level is adjusted directly.
	klog.SetLevel(cfg.LogLevel)

	if effectiveConfigPath != "" {
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "file").
			Str("path", effectiveConfigPath).
			Msg("loaded configuration from file")
	} else {
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "env+defaults").
			Msg("loaded configuration from environment and defaults")
	}

	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("failed to create data directory")
	}

	logger.Info().
		Str("event", "startup").
		Str("version", version.Version).
		Str("commit", version.Commit).
		Str("build_date", version.Date).
		Str("addr", cfg.Listen).
		Msg("starting kryptosd")

	logger.Info().Msgf("→ Data dir: %s", cfg.DataDir)
	logger.Info().Msgf("→ Database: %s", cfg.DBPath)
	logger.Info().Msgf("→ Cache: %s", cfg.Cache.Backend)
	logger.Info().Msgf("→ Workers: %d (queue %d, timeout %s)", cfg.Jobs.Workers, cfg.Jobs.QueueSize, cfg.Jobs.Timeout)

	// Tracing
	provider, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "kryptosd",
		ServiceVersion: version.Version,
		Environment:    cfg.Telemetry.Environment,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("telemetry shutdown failed")
		}
	}()

	// Persistence
	st, err := store.NewStore(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open job store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn().Err(err).Msg("store close failed")
		}
	}()

	// Result cache
	resultCache := buildCache(cfg, logger)
	defer func() {
		if err := resultCache.Close(); err != nil {
			logger.Warn().Err(err).Msg("cache close failed")
		}
	}()

	// Job manager
	mgr := jobs.NewManager(jobs.Config{
		Workers:   cfg.Jobs.Workers,
		QueueSize: cfg.Jobs.QueueSize,
		Timeout:   cfg.Jobs.Timeout,
		ReportDir: cfg.Jobs.ReportDir,
		CacheTTL:  cfg.Cache.TTL,
		Retention: cfg.Jobs.Retention,
	}, st, resultCache)

	// Hot reload: watch the config file so operators can adjust levels and
	// limits without a restart.
	holder := config.NewHolder(cfg, loader, effectiveConfigPath)
	if err := holder.StartWatcher(ctx); err != nil {
		logger.Warn().Err(err).Msg("config watcher failed to start, hot reload disabled")
	}
	defer holder.Stop()

	reloads := make(chan config.Config, 1)
	holder.RegisterListener(reloads)

	srv := api.New(cfg, mgr)

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return mgr.Run(gctx)
	})

	g.Go(func() error {
		logger.Info().Str("addr", cfg.Listen).Msg("http server listening")
		srv.SetReady(true)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case newCfg := <-reloads:
				klog.SetLevel(newCfg.LogLevel)
				srv.ApplyConfig(newCfg)
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		srv.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("daemon failed")
	}

	logger.Info().Msg("server exiting")
}

// buildCache constructs the result cache named by the config, falling back
// to the in-memory cache when Redis is unreachable.
func buildCache(cfg config.Config, logger zerolog.Logger) cache.Cache {
	switch cfg.Cache.Backend {
	case "redis":
		c, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		}, klog.WithComponent("cache"))
		if err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Cache.RedisAddr).
				Msg("redis unreachable, falling back to in-memory cache")
			return cache.NewMemoryCache(cfg.Cache.CleanupInterval)
		}
		return c
	case "none":
		return cache.NewNoOpCache()
	default:
		return cache.NewMemoryCache(cfg.Cache.CleanupInterval)
	}
}
