package config

import (
	"os"
	"strconv"
	"time"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultPort           = "8080"
	DefaultMaxUploadBytes = 16 << 20 // 16 MiB
	DefaultModelName      = "gemini-2.5-flash"
	DefaultAITimeout      = 60 * time.Second
	DefaultQueueBuffer    = 100
	DefaultWorkers        = 5
)

// Config holds all runtime settings for the statement pipeline.
type Config struct {
	Port           string
	MaxUploadBytes int64

	// AI fallback stage.
	AIEnabled bool
	ModelName string
	AITimeout time.Duration

	// Optional YAML file extending the category lexicon.
	LexiconPath string

	// BigQuery ledger. Empty project means the in-memory ledger is used.
	BigQueryProject string
	BigQueryDataset string
	BigQueryTable   string

	// GCS bucket for statements parsed asynchronously.
	GCSBucket string

	QueueBuffer int
	Workers     int
}

// FromEnv builds a Config from environment variables, falling back to
// defaults. Commands may further override individual fields with flags.
func FromEnv() Config {
	cfg := Config{
		Port:            envOr("PORT", DefaultPort),
		MaxUploadBytes:  envInt64("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes),
		AIEnabled:       envBool("AI_FALLBACK_ENABLED", os.Getenv("GEMINI_API_KEY") != ""),
		ModelName:       envOr("MODEL_NAME", DefaultModelName),
		AITimeout:       envDuration("AI_TIMEOUT", DefaultAITimeout),
		LexiconPath:     os.Getenv("CATEGORY_LEXICON_PATH"),
		BigQueryProject: os.Getenv("BIGQUERY_PROJECT"),
		BigQueryDataset: envOr("BIGQUERY_DATASET", "finance"),
		BigQueryTable:   envOr("BIGQUERY_TABLE", "transactions"),
		GCSBucket:       os.Getenv("GCS_BUCKET"),
		QueueBuffer:     envInt("QUEUE_BUFFER", DefaultQueueBuffer),
		Workers:         envInt("QUEUE_WORKERS", DefaultWorkers),
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
