package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/alvmarrod/news-weaver/internal/aggregate"
	"github.com/alvmarrod/news-weaver/internal/config"
	"github.com/alvmarrod/news-weaver/internal/crawler"
	"github.com/alvmarrod/news-weaver/internal/metrics"
	"github.com/alvmarrod/news-weaver/internal/report"
	"github.com/alvmarrod/news-weaver/internal/storage"
	"github.com/alvmarrod/news-weaver/internal/version"
)

func newCrawlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl",
		Short: "Run a crawl and write the CSV exports and the crawl report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return runCrawl(cmd.Context(), cfg)
		},
	}
}

func runCrawl(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}

	logrus.Infof("News Weaver v%s starting...", version.Version)
	logrus.Infof("Configuration: seed=%s, domain=%s, depth=%d, pages=%d, workers=%d",
		cfg.SeedURL, cfg.TargetDomain, cfg.MaxDepth, cfg.MaxPages, cfg.ConcurrentWorkers)

	metrics.Init()
	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = metrics.Serve(cfg.MetricsAddr)
	}

	tracker := metrics.NewTracker()
	engine, err := crawler.NewEngine(cfg, tracker.Record)
	if err != nil {
		return fmt.Errorf("failed to create crawler: %w", err)
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		// Restore default handling so a second signal exits immediately
		stop()
	}()

	stopProgress := make(chan struct{})
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				logrus.Info(tracker.LogProgress())
			case <-stopProgress:
				return
			}
		}
	}()

	startedAt := time.Now()
	buffers, runErr := engine.Run(ctx)
	endedAt := time.Now()
	close(stopProgress)

	reason := metrics.ReasonFrontierDrained
	switch {
	case errors.Is(runErr, context.Canceled):
		reason = metrics.ReasonSignal
		logrus.Warn("Crawl interrupted, reporting partial telemetry")
	case runErr != nil:
		reason = metrics.ReasonError
		logrus.Errorf("Crawl ended with error: %v", runErr)
	}

	logrus.Info("Step 1/4: Merging worker telemetry...")
	ds := aggregate.Merge(buffers)
	logrus.Infof("Merged %d fetches, %d visits, %d url decisions from %d workers",
		len(ds.Fetches), len(ds.Visits), len(ds.Decisions), len(buffers))

	logrus.Info("Step 2/4: Writing exports and crawl report...")
	gen := report.NewGenerator(report.Options{
		OutputDir:   cfg.OutputDir,
		SiteName:    cfg.SiteName,
		Domain:      cfg.TargetDomain,
		Workers:     cfg.ConcurrentWorkers,
		FetchRowCap: cfg.FetchExportCap(),
	})
	stats, reportErr := gen.Generate(ds)
	logrus.Infof("Fetches: %d attempted, %d succeeded, %d failed | Unique URLs: %d",
		stats.FetchesAttempted, stats.FetchesSucceeded, stats.FetchesFailed, stats.UniqueURLs)

	logrus.Info("Step 3/4: Persisting run...")
	runID, err := persistRun(cfg, storage.Run{
		SiteName:          cfg.SiteName,
		Domain:            cfg.TargetDomain,
		SeedURL:           cfg.SeedURL,
		Workers:           cfg.ConcurrentWorkers,
		StartedAt:         startedAt,
		EndedAt:           endedAt,
		TerminationReason: reason,
	}, ds)
	if err != nil {
		logrus.Errorf("Failed to persist run: %v", err)
	} else {
		tracker.SetRunID(runID)
		logrus.Infof("Run %s stored in %s", runID, cfg.DBPath)
	}

	logrus.Info("Step 4/4: Writing final metrics...")
	logrus.Info("Final stats: " + tracker.LogProgress())
	if err := tracker.WriteToFile(cfg.MetricsPath, reason); err != nil {
		logrus.Errorf("Failed to write metrics: %v", err)
	} else {
		logrus.Infof("Metrics written to %s", cfg.MetricsPath)
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logrus.Warnf("Metrics endpoint shutdown: %v", err)
		}
	}

	if reportErr != nil {
		return fmt.Errorf("crawl report incomplete: %w", reportErr)
	}
	logrus.Info("Crawl complete. Goodbye!")
	return nil
}

// persistRun stores the merged dataset in the run database
func persistRun(cfg *config.Config, run storage.Run, ds aggregate.Dataset) (string, error) {
	if err := ensureParentDir(cfg.DBPath); err != nil {
		return "", err
	}

	store, err := storage.NewStorage(cfg.DBPath)
	if err != nil {
		return "", err
	}
	defer store.Close()

	return store.SaveRun(run, ds)
}
