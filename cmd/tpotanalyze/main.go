// Package main is the entry point for the honeypot log analysis pipeline.
// It ingests cowrie, sentrypeer, and tanner logs, enriches them with
// GeoIP countries, and writes frequency and time-series reports.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ApexPlayground/Tpot-analysis-project/internal/config"
	"github.com/ApexPlayground/Tpot-analysis-project/internal/geo"
	"github.com/ApexPlayground/Tpot-analysis-project/internal/logging"
	"github.com/ApexPlayground/Tpot-analysis-project/internal/pipeline"
	"github.com/ApexPlayground/Tpot-analysis-project/internal/report"
	"github.com/ApexPlayground/Tpot-analysis-project/internal/server"
)

// Version information (injected at build time via ldflags)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("tpotanalyze %s (commit: %s, built: %s)\n", Version, GitCommit, BuildTime)
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting analysis run",
		zap.String("version", Version),
		zap.String("config", *configPath),
		zap.Int("sources", len(cfg.Sources)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var geoOpts []geo.Option
	if cfg.Redis.Enabled {
		opts := &redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		}
		if cfg.Redis.PasswordEnv != "" {
			opts.Password = os.Getenv(cfg.Redis.PasswordEnv)
		}
		geoOpts = append(geoOpts, geo.WithRedis(redis.NewClient(opts), cfg.Redis.KeyPrefix, time.Duration(cfg.Redis.CacheTTL)))
	}

	enricher := geo.Open(cfg.GeoIP.Database, logger, geoOpts...)
	defer enricher.Close()

	sink, err := report.NewCSVSink(cfg.Output.Dir, logger)
	if err != nil {
		logger.Fatal("report sink", zap.Error(err))
	}

	result, err := pipeline.New(cfg, enricher, sink, logger).Run(ctx)
	if err != nil {
		logger.Fatal("pipeline run failed", zap.Error(err))
	}
	logger.Info("reports written", zap.String("dir", sink.Dir()))

	if !cfg.Server.Enabled {
		return
	}

	// Serve the run's aggregates until interrupted.
	srv := server.New(cfg.Server, result, logger)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		logger.Fatal("report server failed", zap.Error(err))
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}
}

// loadConfig reads the YAML config, falling back to defaults when the
// default path is absent so a bare invocation still works.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, os.ErrNotExist) && path == "configs/config.yaml" {
		cfg = config.DefaultConfig()
		return cfg, cfg.Validate()
	}
	return nil, err
}
