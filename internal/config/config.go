package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration shared by the ingest and serve commands.
type Config struct {
	Server       ServerConfig
	DBPath       string
	ArtifactDir  string
	Sources      []SourceConfig
	Ingest       IngestConfig
	Notification NotificationConfig
	AI           AIConfig
}

// ServerConfig controls the HTTP query API.
type ServerConfig struct {
	Addr        string
	CORSOrigins []string // empty = allow all origins
}

// IngestConfig controls the batch pipeline timing.
type IngestConfig struct {
	FetchTimeout time.Duration // per-source HTTP timeout
	EnrichDelay  time.Duration // fixed delay after each classification call
}

// AIConfig controls the optional Gemini enrichment layer.
type AIConfig struct {
	Enabled bool
	BaseURL string        // defaults to the Gemini REST endpoint
	Model   string        // e.g. "gemini-2.0-flash"
	APIKey  string        // expanded from env var by Load
	Timeout time.Duration // per-request timeout
}

// NotificationConfig controls which notifier announces new jobs after a run.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// SourceConfig describes a single source to ingest from.
// Type selects the extraction strategy: "rss", "api", or "html".
type SourceConfig struct {
	Name      string        `yaml:"name"`
	Type      string        `yaml:"type"`
	URL       string        `yaml:"url"`
	Enabled   bool          `yaml:"enabled"`
	Selectors CardSelectors `yaml:"selectors"` // html sources only
}

// CardSelectors are the CSS selectors for an HTML-card source. Empty
// fields fall back to the common job-card markup defaults.
type CardSelectors struct {
	Card        string `yaml:"card"`
	Title       string `yaml:"title"`
	Company     string `yaml:"company"`
	Location    string `yaml:"location"`
	Description string `yaml:"description"`
	Link        string `yaml:"link"`
}

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

const (
	defaultAddr         = ":8080"
	defaultDBPath       = "lokerhub.db"
	defaultArtifactDir  = "runs"
	defaultFetchTimeout = 30 * time.Second
	defaultEnrichDelay  = 1 * time.Second
	defaultAITimeout    = 30 * time.Second
)

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	Server       rawServerConfig    `yaml:"server"`
	DBPath       string             `yaml:"db_path"`
	ArtifactDir  string             `yaml:"artifact_dir"`
	Sources      []SourceConfig     `yaml:"sources"`
	Ingest       rawIngestConfig    `yaml:"ingest"`
	Notification NotificationConfig `yaml:"notification"`
	AI           rawAIConfig        `yaml:"ai"`
}

type rawServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type rawIngestConfig struct {
	FetchTimeout string `yaml:"fetch_timeout"`
	EnrichDelay  string `yaml:"enrich_delay"`
}

type rawAIConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"api_key"`
	Timeout string `yaml:"timeout"`
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables (e.g. api_key: ${GEMINI_API_KEY})
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	fetchTimeout := defaultFetchTimeout
	if raw.Ingest.FetchTimeout != "" {
		fetchTimeout, err = time.ParseDuration(raw.Ingest.FetchTimeout)
		if err != nil {
			return nil, fmt.Errorf("parse ingest.fetch_timeout %q: %w", raw.Ingest.FetchTimeout, err)
		}
	}

	enrichDelay := defaultEnrichDelay
	if raw.Ingest.EnrichDelay != "" {
		enrichDelay, err = time.ParseDuration(raw.Ingest.EnrichDelay)
		if err != nil {
			return nil, fmt.Errorf("parse ingest.enrich_delay %q: %w", raw.Ingest.EnrichDelay, err)
		}
	}

	aiTimeout := defaultAITimeout
	if raw.AI.Timeout != "" {
		aiTimeout, err = time.ParseDuration(raw.AI.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse ai.timeout %q: %w", raw.AI.Timeout, err)
		}
	}

	aiBaseURL := raw.AI.BaseURL
	if aiBaseURL == "" {
		aiBaseURL = defaultGeminiBaseURL
	}

	addr := raw.Server.Addr
	if addr == "" {
		addr = defaultAddr
	}

	dbPath := raw.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}

	artifactDir := raw.ArtifactDir
	if artifactDir == "" {
		artifactDir = defaultArtifactDir
	}

	cfg := &Config{
		Server: ServerConfig{
			Addr:        addr,
			CORSOrigins: raw.Server.CORSOrigins,
		},
		DBPath:      dbPath,
		ArtifactDir: artifactDir,
		Sources:     raw.Sources,
		Ingest: IngestConfig{
			FetchTimeout: fetchTimeout,
			EnrichDelay:  enrichDelay,
		},
		Notification: raw.Notification,
		AI: AIConfig{
			Enabled: raw.AI.Enabled,
			BaseURL: aiBaseURL,
			Model:   raw.AI.Model,
			APIKey:  raw.AI.APIKey,
			Timeout: aiTimeout,
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Ingest.FetchTimeout <= 0 {
		return fmt.Errorf("ingest.fetch_timeout must be positive, got %v", cfg.Ingest.FetchTimeout)
	}
	if cfg.Ingest.EnrichDelay < 0 {
		return fmt.Errorf("ingest.enrich_delay must not be negative, got %v", cfg.Ingest.EnrichDelay)
	}

	enabled := 0
	for i, s := range cfg.Sources {
		switch s.Type {
		case "rss", "api", "html":
		default:
			return fmt.Errorf("sources[%d] (%s): unknown type %q, want rss, api, or html", i, s.Name, s.Type)
		}
		if s.URL == "" {
			return fmt.Errorf("sources[%d] (%s): url is required", i, s.Name)
		}
		if s.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one source must be enabled")
	}

	if cfg.Notification.Type == "slack" {
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, "https://hooks.slack.com/") {
			return fmt.Errorf("notification.webhook_url must start with https://hooks.slack.com/")
		}
	}

	if cfg.AI.Enabled {
		if cfg.AI.APIKey == "" {
			return fmt.Errorf("ai.api_key is required when ai.enabled is true")
		}
		if cfg.AI.Model == "" {
			return fmt.Errorf("ai.model is required when ai.enabled is true")
		}
	}

	return nil
}
