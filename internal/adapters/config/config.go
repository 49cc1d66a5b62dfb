package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config represents application configuration
type Config struct {
	Server    ServerConfig    `envconfig:"SERVER"`
	NewsAPI   NewsAPIConfig   `envconfig:"NEWS_API"`
	Sentiment SentimentConfig `envconfig:"SENTIMENT"`
	Relay     RelayConfig     `envconfig:"RELAY"`
	Database  DatabaseConfig  `envconfig:"DATABASE"`
	Redis     RedisConfig     `envconfig:"REDIS"`
	Logging   LoggingConfig   `envconfig:"LOGGING"`
}

// ServerConfig represents HTTP API server parameters
type ServerConfig struct {
	Port         int           `envconfig:"PORT" default:"8080"`
	HealthPort   int           `envconfig:"HEALTH_PORT" default:"8081"`
	ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
}

// NewsAPIConfig represents the upstream news provider configuration
type NewsAPIConfig struct {
	BaseURL        string        `envconfig:"NEWS_API_URL" default:"https://newsdata.io/api/1"`
	APIKey         string        `envconfig:"NEWS_API_KEY" required:"false"`
	Timeout        time.Duration `envconfig:"NEWS_API_TIMEOUT" default:"15s"`
	RequestsPerSec float64       `envconfig:"NEWS_API_RPS" default:"5"`
}

// SentimentConfig represents the LLM sentiment enricher configuration
type SentimentConfig struct {
	APIKey  string        `envconfig:"SENTIMENT_API_KEY" required:"false"`
	Model   string        `envconfig:"SENTIMENT_MODEL" default:"gpt-4o-mini"`
	Timeout time.Duration `envconfig:"SENTIMENT_TIMEOUT" default:"30s"`
}

// RelayConfig represents cache-merge and fallback parameters
type RelayConfig struct {
	PositiveWindowDays int           `envconfig:"RELAY_POSITIVE_WINDOW_DAYS" default:"7"`
	MergeTimeout       time.Duration `envconfig:"RELAY_MERGE_TIMEOUT" default:"60s"`
	RefreshEnabled     bool          `envconfig:"RELAY_REFRESH_ENABLED" default:"false"`
	RefreshInterval    time.Duration `envconfig:"RELAY_REFRESH_INTERVAL" default:"30m"`
}

// DatabaseConfig represents database connection parameters
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"newsrelay"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
}

// RedisConfig represents Redis connection parameters for merge locks
type RedisConfig struct {
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"true"`
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" required:"false"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	File  string `envconfig:"LOG_FILE" default:""`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if configuration is valid. A missing provider key is a
// setup failure: the service refuses to start rather than failing on the
// first request.
func (c *Config) Validate() error {
	if c.NewsAPI.APIKey == "" {
		return fmt.Errorf("NEWS_API_KEY must be configured")
	}
	if c.NewsAPI.BaseURL == "" {
		return fmt.Errorf("NEWS_API_URL must be configured")
	}

	if c.NewsAPI.RequestsPerSec <= 0 {
		return fmt.Errorf("NEWS_API_RPS must be positive")
	}

	if c.Relay.PositiveWindowDays < 1 {
		return fmt.Errorf("RELAY_POSITIVE_WINDOW_DAYS must be at least 1")
	}
	if c.Relay.MergeTimeout <= 0 {
		return fmt.Errorf("RELAY_MERGE_TIMEOUT must be positive")
	}

	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("API and health server ports must differ")
	}

	return nil
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}
