// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Enrichment path selection.
const (
	EnrichmentModeLLM   = "llm"
	EnrichmentModeTerms = "terms"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"local"`
	PostgresDSN string `env:"POSTGRES_DSN,required"`

	// Search providers
	NaverClientID         string   `env:"NAVER_CLIENT_ID"`
	NaverClientSecret     string   `env:"NAVER_CLIENT_SECRET"`
	RSSFeedURLs           []string `env:"RSS_FEED_URLS" envSeparator:","`
	SearchKeywords        []string `env:"SEARCH_KEYWORDS" envSeparator:"," envDefault:"금리,주식,부동산,채권,환율,물가"`
	SearchResultsPerQuery int      `env:"SEARCH_RESULTS_PER_KEYWORD" envDefault:"5"`

	// Crawling
	FetchTimeout      time.Duration `env:"FETCH_TIMEOUT" envDefault:"10s"`
	FetchRPS          float64       `env:"FETCH_RPS" envDefault:"2"`
	ImageProbeEnabled bool          `env:"IMAGE_PROBE_ENABLED" envDefault:"false"`

	// LLM
	LLMAPIKey      string        `env:"LLM_API_KEY,required"`
	LLMModel       string        `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMTemperature float32       `env:"LLM_TEMPERATURE" envDefault:"0.2"`
	LLMTimeout     time.Duration `env:"LLM_TIMEOUT" envDefault:"20s"`
	RateLimitRPS   int           `env:"RATE_LIMIT_RPS" envDefault:"1"`

	// Embeddings
	EmbeddingModel      string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	EmbeddingDimensions int    `env:"EMBEDDING_DIMENSIONS" envDefault:"1536"`

	// Enrichment
	EnrichmentMode string `env:"ENRICHMENT_MODE" envDefault:"llm"`
	TermTopK       int    `env:"TERM_TOP_K" envDefault:"4"`

	// Worker
	WorkerPollInterval time.Duration `env:"WORKER_POLL_INTERVAL" envDefault:"1m"`

	// Servers
	HealthPort int `env:"HEALTH_PORT" envDefault:"8080"`
	APIPort    int `env:"API_PORT" envDefault:"8081"`

	// Database pool
	DBMaxConnections int32         `env:"DB_MAX_CONNECTIONS" envDefault:"10"`
	DBMinConnections int32         `env:"DB_MIN_CONNECTIONS" envDefault:"1"`
	DBMaxConnIdle    time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"5m"`
}

// Load reads configuration from the environment, with an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	if cfg.EnrichmentMode != EnrichmentModeLLM && cfg.EnrichmentMode != EnrichmentModeTerms {
		return nil, fmt.Errorf("invalid ENRICHMENT_MODE %q: must be %q or %q",
			cfg.EnrichmentMode, EnrichmentModeLLM, EnrichmentModeTerms)
	}

	return cfg, nil
}

// NaverEnabled reports whether the Naver search provider is configured.
func (c *Config) NaverEnabled() bool {
	return c.NaverClientID != "" && c.NaverClientSecret != ""
}
