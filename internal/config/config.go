// Package config loads application configuration from environment variables.
package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the full application configuration.
type Config struct {
	DatabaseURL string
	Server      ServerConfig
	Scheduler   SchedulerConfig
	Keys        APIKeys
	Embed       EmbedConfig
	Archive     ArchiveConfig

	// AllowedOrigins is the comma-separated CORS origin list. Empty means "*".
	AllowedOrigins string

	// AnalysisWindowHours bounds how far back reanalysis looks for events.
	AnalysisWindowHours int

	// ArticleRetentionDays is the article expiry horizon applied by cleanup.
	ArticleRetentionDays int
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port string
	Host string
}

// Addr returns the full listen address (host:port).
func (c ServerConfig) Addr() string {
	return c.Host + c.Port
}

// SchedulerConfig holds the cadence settings for the five pipeline tiers.
// Intervals are minutes; peak hours are 06:00-23:00 in Timezone.
type SchedulerConfig struct {
	Enabled             bool
	Timezone            string
	Tier1PeakMinutes    int
	Tier1OffpeakMinutes int
	Tier2PeakMinutes    int
	Tier2OffpeakMinutes int
	Tier3Minutes        int
	Tier4Minutes        int
	MaxExcerptsPerRun   int
	FactCheckBatchSize  int
	MaxFactCheckWorkers int
}

// APIKeys holds optional credentials for external sources. A missing key
// disables the corresponding source.
type APIKeys struct {
	NewsAPI    string
	Mediastack string
	OpenAI     string
	NASAFirms  string
}

// EmbedConfig holds the optional external embedding server parameters. When
// ServerURL is empty the deterministic local embedder is used instead.
type EmbedConfig struct {
	ServerURL string
	Model     string
}

// ArchiveConfig holds S3-compatible object storage parameters for the cold
// archive written before article expiry. Empty endpoint disables archival.
type ArchiveConfig struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Region    string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first if present. The only required variable
// is DATABASE_URL; Load exits the process when it is absent.
func Load() Config {
	// Best-effort: absence of a .env file is the normal production case.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		slog.Error("config: DATABASE_URL is required")
		os.Exit(1)
	}

	return Config{
		DatabaseURL: dbURL,
		Server: ServerConfig{
			Port: envOr("SERVER_PORT", ":8080"),
			Host: envOr("SERVER_HOST", ""),
		},
		Scheduler: SchedulerConfig{
			Enabled:             envOrBool("ENABLE_SCHEDULER", false),
			Timezone:            envOr("SCHEDULER_TIMEZONE", "UTC"),
			Tier1PeakMinutes:    envOrInt("TIER1_INTERVAL_PEAK", 10),
			Tier1OffpeakMinutes: envOrInt("TIER1_INTERVAL_OFFPEAK", 20),
			Tier2PeakMinutes:    envOrInt("TIER2_INTERVAL_PEAK", 15),
			Tier2OffpeakMinutes: envOrInt("TIER2_INTERVAL_OFFPEAK", 30),
			Tier3Minutes:        envOrInt("TIER3_INTERVAL", 60),
			Tier4Minutes:        envOrInt("TIER4_INTERVAL", 240),
			MaxExcerptsPerRun:   envOrInt("MAX_EXCERPTS_PER_RUN", 8),
			FactCheckBatchSize:  envOrInt("FACT_CHECK_BATCH_SIZE", 30),
			MaxFactCheckWorkers: envOrInt("MAX_FACT_CHECK_WORKERS", 2),
		},
		Keys: APIKeys{
			NewsAPI:    os.Getenv("NEWSAPI_KEY"),
			Mediastack: os.Getenv("MEDIASTACK_KEY"),
			OpenAI:     os.Getenv("OPENAI_API_KEY"),
			NASAFirms:  os.Getenv("NASA_FIRMS_MAP_KEY"),
		},
		Embed: EmbedConfig{
			ServerURL: envOr("EMBED_SERVER_URL", ""),
			Model:     envOr("EMBED_MODEL", "all-minilm"),
		},
		Archive: ArchiveConfig{
			Endpoint:  envOr("ARCHIVE_S3_ENDPOINT", ""),
			Bucket:    envOr("ARCHIVE_S3_BUCKET", "veritas-archive"),
			AccessKey: envOr("ARCHIVE_S3_ACCESS_KEY", ""),
			SecretKey: envOr("ARCHIVE_S3_SECRET_KEY", ""),
			Region:    envOr("ARCHIVE_S3_REGION", "us-east-1"),
		},
		AllowedOrigins:       envOr("ALLOWED_ORIGINS", ""),
		AnalysisWindowHours:  envOrInt("ANALYSIS_WINDOW_HOURS", 72),
		ArticleRetentionDays: envOrInt("ARTICLE_RETENTION_DAYS", 30),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envOrBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
