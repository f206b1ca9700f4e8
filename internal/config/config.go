package config

import (
	"time"
)

// Config represents the complete application configuration. Values come from
// defaults, an optional config file, and NEWSLOOM_* environment variables.
// API credentials are read from their conventional environment variables
// only, never from files.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Store      StoreConfig      `mapstructure:"store"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	News       NewsConfig       `mapstructure:"news"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Embeddings EmbeddingsConfig `mapstructure:"embeddings"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"`

	// Limits maps an API client name to its sliding-window budget.
	Limits map[string]LimitConfig `mapstructure:"limits"`

	// Secrets, environment only.
	GoogleAPIKey string `mapstructure:"-"`
	NewsAPIKey   string `mapstructure:"-"`
	SerperAPIKey string `mapstructure:"-"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig contains database configuration for libsql/Turso.
type StoreConfig struct {
	Driver    string `mapstructure:"driver"`
	Path      string `mapstructure:"path"`
	URL       string `mapstructure:"url"`
	AuthToken string `mapstructure:"auth_token"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level controls the minimum log level.
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level"`
}

// NewsConfig controls the news article fetch.
type NewsConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	PageSize int    `mapstructure:"page_size"`
}

// LLMConfig controls the chat model.
type LLMConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxAttempts int           `mapstructure:"max_attempts"`
}

// EmbeddingsConfig controls the embedding model.
type EmbeddingsConfig struct {
	Model       string `mapstructure:"model"`
	MaxAttempts int    `mapstructure:"max_attempts"`
}

// PipelineConfig controls the outer run retry budget.
type PipelineConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BackoffBase time.Duration `mapstructure:"backoff_base"`
	BackoffCap  time.Duration `mapstructure:"backoff_cap"`
	PreDelay    time.Duration `mapstructure:"pre_delay"`
}

// LimitConfig is one client's sliding-window request budget.
type LimitConfig struct {
	Ceiling int           `mapstructure:"ceiling"`
	Buffer  time.Duration `mapstructure:"buffer"`
}
