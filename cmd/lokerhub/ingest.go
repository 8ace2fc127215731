package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/adityawarmanfw/lokerhub/internal/audit"
	"github.com/adityawarmanfw/lokerhub/internal/ingest"
	"github.com/adityawarmanfw/lokerhub/internal/model"
	"github.com/adityawarmanfw/lokerhub/internal/ratelimit"
	"github.com/adityawarmanfw/lokerhub/internal/scheduler"
	"github.com/adityawarmanfw/lokerhub/internal/store"
)

var (
	dryRun bool
	every  time.Duration
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run the ingestion pipeline",
	Long:  "Fetches all enabled sources, enriches the postings, and upserts them into the store. With --every it keeps running on an interval until SIGINT/SIGTERM.",
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&dryRun, "dry-run", false, "run the pipeline without persisting anything")
	ingestCmd.Flags().DurationVar(&every, "every", 0, "re-run the pipeline on this interval (0 = run once)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"sources", len(cfg.Sources),
		"fetch_timeout", cfg.Ingest.FetchTimeout.String(),
		"enrich_delay", cfg.Ingest.EnrichDelay.String(),
		"ai_enabled", cfg.AI.Enabled,
	)

	var jobStore model.JobStore
	if dryRun {
		logger.Info("dry-run mode enabled, nothing will be persisted")
		jobStore = store.NewNopStore()
	} else {
		sqlStore, err := store.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			logger.Error("failed to open store", "error", err)
			os.Exit(1)
		}
		defer sqlStore.Close()
		jobStore = sqlStore
	}

	httpClient := &http.Client{Timeout: cfg.Ingest.FetchTimeout}

	sources := buildSources(cfg, httpClient, logger)
	if len(sources) == 0 {
		logger.Error("no sources to ingest")
		os.Exit(1)
	}

	var artifact *audit.Writer
	if !dryRun {
		artifact = audit.NewWriter(cfg.ArtifactDir)
	}

	pipeline := ingest.NewPipeline(
		sources,
		setupEnricher(cfg, logger),
		jobStore,
		ratelimit.NewKeyedLimiter(cfg.Ingest.EnrichDelay),
		artifact,
		setupNotifier(cfg, httpClient, logger),
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if every > 0 {
		sched := scheduler.New(pipeline, every, logger)
		if err := sched.Run(ctx); err != nil {
			logger.Error("scheduler error", "error", err)
			os.Exit(1)
		}
		logger.Info("goodbye")
		return nil
	}

	if err := pipeline.Run(ctx); err != nil {
		logger.Error("ingestion failed", "error", err)
		os.Exit(1)
	}
	return nil
}
