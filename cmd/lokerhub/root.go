package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/adityawarmanfw/lokerhub/internal/ai"
	"github.com/adityawarmanfw/lokerhub/internal/config"
	"github.com/adityawarmanfw/lokerhub/internal/ingest"
	"github.com/adityawarmanfw/lokerhub/internal/model"
	"github.com/adityawarmanfw/lokerhub/internal/notifier"
	"github.com/adityawarmanfw/lokerhub/internal/source"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "lokerhub",
	Short: "Job aggregator — collect, enrich, and query job postings",
	Long:  "LokerHub ingests job postings from feeds, board APIs, and listing pages, enriches them with AI classification, and serves them over a query API.",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: LOKERHUB_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > LOKERHUB_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("LOKERHUB_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

// setupEnricher wires the Gemini classifier when AI is enabled; otherwise
// the enricher runs classifier-free and every posting gets the fallback.
func setupEnricher(cfg *config.Config, logger *slog.Logger) *ai.Enricher {
	var classifier ai.TextClassifier
	if cfg.AI.Enabled {
		httpClient := &http.Client{Timeout: cfg.AI.Timeout}
		classifier = ai.NewGeminiProvider(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, httpClient)
		logger.Info("ai enrichment enabled", "model", cfg.AI.Model)
	} else {
		logger.Info("ai enrichment disabled, postings get fallback classification")
	}
	return ai.NewEnricher(classifier, logger)
}

func createFetcher(src config.SourceConfig, httpClient *http.Client, logger *slog.Logger) (model.SourceFetcher, bool) {
	switch src.Type {
	case "rss":
		return source.NewFeedSource(src.Name, src.URL, httpClient), true
	case "api":
		return source.NewBoardSource(src.Name, src.URL, httpClient), true
	case "html":
		return source.NewHTMLCardSource(src.Name, src.URL, src.Selectors, httpClient), true
	default:
		logger.Warn("unsupported source type, skipping", "source", src.Name, "type", src.Type)
		return nil, false
	}
}

func buildSources(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) []ingest.Source {
	var sources []ingest.Source
	for _, src := range cfg.Sources {
		if !src.Enabled {
			continue
		}

		fetcher, ok := createFetcher(src, httpClient, logger)
		if !ok {
			continue
		}

		sources = append(sources, ingest.Source{Name: src.Name, Fetcher: fetcher})
		logger.Info("registered source", "name", src.Name, "type", src.Type)
	}
	return sources
}
