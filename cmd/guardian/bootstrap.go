package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"asset-guardian/internal/analysislog"
	"asset-guardian/internal/evidence"
	"asset-guardian/internal/evidence/evidenceobs"
	"asset-guardian/internal/feed"
	"asset-guardian/internal/feed/feedobs"
	"asset-guardian/internal/interfaces"
	"asset-guardian/internal/llm"
	"asset-guardian/internal/logger"
	"asset-guardian/internal/metrics"
	"asset-guardian/internal/report"
	"asset-guardian/internal/reportcache"
	"asset-guardian/internal/snapshot"
	"asset-guardian/internal/store"
	"asset-guardian/internal/trace"
)

// initializeSystem initializes environment, logger and tracer
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

// loadConfig reads path, falling back to defaults when the file does not exist.
func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn(ctx, "Config file not found - using defaults", "path", path)
		return store.Default(), nil
	}
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// app holds the wired components shared by every command.
type app struct {
	cfg      *store.Config
	metrics  *metrics.Recorder
	analyzer interfaces.EvidenceAnalyzer
	reports  *report.Service
	cache    interfaces.ReportStore
	feeds    *feed.Cache
	runs     *analysislog.Log
	server   *http.Server
}

func buildApp(ctx context.Context, cfg *store.Config, withReports bool) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	a.metrics = metrics.New(prometheus.NewRegistry())
	if cfg.Metrics.Addr != "" {
		a.server = startMetricsServer(ctx, cfg.Metrics.Addr, a.metrics)
	}

	analyzer, feedCache, err := initializeAnalyzer(ctx, cfg, a.metrics)
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("init market data feed: %w", err)
	}
	a.analyzer = analyzer
	a.feeds = feedCache
	a.runs = analysislog.New(cfg.AnalysisLog.Dir, loc)

	if withReports && cfg.Report.Enabled {
		cache, err := reportcache.New(cfg)
		if err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("open report cache: %w", err)
		}
		gen, err := llm.NewGenerator(cfg)
		if err != nil {
			cache.Close()
			a.Close(ctx)
			return nil, fmt.Errorf("init report generator: %w", err)
		}
		a.cache = cache
		a.reports = report.NewService(cache, gen, loc, report.WithMetrics(a.metrics))
		logger.Info(ctx, "Report generation enabled", "provider", gen.Name(), "cache", cfg.Cache.Backend)
	}
	return a, nil
}

// initializeAnalyzer wires feed, fetcher and analyzer, each wrapped for observability.
// A feed that cannot be set up is fatal; synthetic data is only used when configured.
func initializeAnalyzer(ctx context.Context, cfg *store.Config, rec *metrics.Recorder) (interfaces.EvidenceAnalyzer, *feed.Cache, error) {
	base, cache, err := feed.NewFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Feed.Provider == "MOCK" {
		logger.Warn(ctx, "Using MOCK market data - results are synthetic")
	}

	fetcher := snapshot.NewFetcher(feedobs.Wrap(base, rec), cfg.Feed.FetchTimeout)
	analyzer := evidence.NewAnalyzer(fetcher, evidence.WithMetrics(rec))
	return evidenceobs.Wrap(analyzer, rec), cache, nil
}

func startMetricsServer(ctx context.Context, addr string, rec *metrics.Recorder) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rec.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info(ctx, "Serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorWithErr(ctx, "Metrics server stopped", err, "addr", addr)
		}
	}()
	return srv
}

func (a *app) Close(ctx context.Context) {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			logger.Warn(ctx, "Failed to close report cache", "error", err)
		}
	}
	if a.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.server.Shutdown(shutdownCtx)
	}
}
