package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

// NSQ topology. The producer publishes generation tasks to the topic; the
// pipeline worker consumes them on the channel.
const (
	TopicArticleGenerate = "article.generate"
	ChannelPipeline      = "pipeline"
)

type Config struct {
	DBHost string `envconfig:"DB_HOST" default:"postgres"`
	DBPort int    `envconfig:"DB_PORT" default:"5432"`
	DBUser string `envconfig:"DB_USER" default:"seoforge"`
	DBPass string `envconfig:"DB_PASS" default:"password"`
	DBName string `envconfig:"DB_NAME" default:"seoforge"`

	NSQLookupd string `envconfig:"NSQ_LOOKUPD" default:"nsqlookupd:4161"`
	NSQDHost   string `envconfig:"NSQD_HOST" default:"nsqd:4150"`
	NSQDHTTP   string `envconfig:"NSQD_HTTP" default:"nsqd:4151"`

	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`

	// Content storage (metadata JSON + embedding index) lives under StorageDir.
	StorageDir  string `envconfig:"STORAGE_DIR" default:"data/content_storage"`
	SiteBaseURL string `envconfig:"SITE_BASE_URL" default:"https://example.com"`

	ChunkSize int `envconfig:"CHUNK_SIZE" default:"1000"`

	// The two matching strategies score on different scales and keep
	// separate thresholds.
	EmbedMinSimilarity float64 `envconfig:"EMBED_MIN_SIMILARITY" default:"0.7"`
	KeywordMinScore    float64 `envconfig:"KEYWORD_MIN_SCORE" default:"0.3"`
	MinKeywordMatch    int     `envconfig:"MIN_KEYWORD_MATCH" default:"1"`

	MaxInternalLinks int `envconfig:"MAX_INTERNAL_LINKS" default:"3"`
	MaxExternalLinks int `envconfig:"MAX_EXTERNAL_LINKS" default:"4"`

	ServerPort    int    `envconfig:"SERVER_PORT" default:"8081"`
	MigrationPath string `envconfig:"MIGRATION_PATH" default:"file://migrations"`

	// Resilience
	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Try loading .env from current dir and repo root.
	// Ignore errors, as env vars might be set in the shell.
	_ = godotenv.Load(".env")

	cwd, _ := os.Getwd()
	rootEnv := filepath.Join(cwd, "../.env")
	_ = godotenv.Load(rootEnv)

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DBHost == "" {
		return fmt.Errorf("%w: DB_HOST", ErrMissingRequired)
	}
	if c.DBUser == "" {
		return fmt.Errorf("%w: DB_USER", ErrMissingRequired)
	}
	if c.DBName == "" {
		return fmt.Errorf("%w: DB_NAME", ErrMissingRequired)
	}
	if c.StorageDir == "" {
		return fmt.Errorf("%w: STORAGE_DIR", ErrMissingRequired)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.MaxInternalLinks < 0 || c.MaxExternalLinks < 0 {
		return errors.New("link limits must not be negative")
	}
	return nil
}
