package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Reddit   RedditConfig
	Pipeline PipelineConfig
	Cache    CacheConfig
}

type AppConfig struct {
	Env      string `envconfig:"APP_ENV" default:"dev"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Port     string `envconfig:"PORT" default:"8080"`
}

type RedditConfig struct {
	ClientID          string  `envconfig:"REDDIT_CLIENT_ID"`
	ClientSecret      string  `envconfig:"REDDIT_CLIENT_SECRET"`
	UserAgent         string  `envconfig:"REDDIT_USER_AGENT"`
	RequestsPerSecond float64 `envconfig:"REDDIT_RPS" default:"1"`
	Burst             int     `envconfig:"REDDIT_BURST" default:"5"`
}

type PipelineConfig struct {
	Communities       []string `envconfig:"BOOKPULSE_COMMUNITIES"`
	CommunityPreset   string   `envconfig:"BOOKPULSE_COMMUNITY_PRESET" default:"narrow"`
	FetchLimit        int      `envconfig:"BOOKPULSE_FETCH_LIMIT" default:"100"`
	TrendWindow       int      `envconfig:"BOOKPULSE_TREND_WINDOW" default:"7"`
	QualityThreshold  float64  `envconfig:"BOOKPULSE_QUALITY_THRESHOLD" default:"0.3"`
	QualityFilter     bool     `envconfig:"BOOKPULSE_QUALITY_FILTER" default:"false"`
	RequireQueryMatch bool     `envconfig:"BOOKPULSE_REQUIRE_QUERY_MATCH" default:"false"`
	IncludeTrend      bool     `envconfig:"BOOKPULSE_INCLUDE_TREND" default:"true"`
}

// CacheConfig is optional. An empty Address disables the search cache.
type CacheConfig struct {
	Address  string        `envconfig:"VALKEY_INIT_ADDRESS"`
	Password string        `envconfig:"VALKEY_PASSWORD"`
	UseTLS   bool          `envconfig:"VALKEY_TLS" default:"false"`
	TTL      time.Duration `envconfig:"BOOKPULSE_CACHE_TTL" default:"15m"`
}

func (c CacheConfig) Enabled() bool {
	return c.Address != ""
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Pipeline.FetchLimit < 1 {
		return fmt.Errorf("BOOKPULSE_FETCH_LIMIT must be positive, got %d", c.Pipeline.FetchLimit)
	}
	if c.Pipeline.TrendWindow < 1 {
		return fmt.Errorf("BOOKPULSE_TREND_WINDOW must be positive, got %d", c.Pipeline.TrendWindow)
	}
	if c.Pipeline.QualityThreshold <= 0 || c.Pipeline.QualityThreshold > 1 {
		return fmt.Errorf("BOOKPULSE_QUALITY_THRESHOLD must be in (0, 1], got %v", c.Pipeline.QualityThreshold)
	}
	if c.Reddit.RequestsPerSecond <= 0 {
		return fmt.Errorf("REDDIT_RPS must be positive, got %v", c.Reddit.RequestsPerSecond)
	}
	return nil
}
