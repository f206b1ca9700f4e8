package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Environment variables holding API credentials. These are the conventional
// names the upstream services document, so they are read as-is rather than
// through the NEWSLOOM_ prefix.
const (
	EnvGoogleAPIKey = "GOOGLE_API_KEY"
	EnvNewsAPIKey   = "NEWSAPI_KEY"
	EnvSerperAPIKey = "SERPER_API_KEY"
)

// Client names used to key the limits map and the rate_limits table.
const (
	ClientLLM         = "llm"
	ClientEmbeddings  = "embeddings"
	ClientNewsIndexer = "news_indexer"
	ClientNewsLookup  = "news_lookup"
	ClientWebSearch   = "web_search"
)

// SetDefaults installs baseline values on a viper instance. Called before any
// config file or environment override is read.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8920)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("store.driver", "libsql")

	v.SetDefault("logging.level", "info")

	v.SetDefault("news.base_url", "https://newsapi.org")
	v.SetDefault("news.page_size", 2)

	v.SetDefault("llm.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("llm.model", "gemini-2.0-flash-exp")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.timeout", "120s")
	v.SetDefault("llm.max_attempts", 5)

	v.SetDefault("embeddings.model", "embedding-001")
	v.SetDefault("embeddings.max_attempts", 2)

	v.SetDefault("pipeline.max_attempts", 5)
	v.SetDefault("pipeline.backoff_base", "30s")
	v.SetDefault("pipeline.backoff_cap", "300s")
	v.SetDefault("pipeline.pre_delay", "10s")

	v.SetDefault("limits", map[string]map[string]any{
		ClientLLM:         {"ceiling": 6, "buffer": "3s"},
		ClientEmbeddings:  {"ceiling": 8, "buffer": "2s"},
		ClientNewsIndexer: {"ceiling": 2, "buffer": "3s"},
		ClientNewsLookup:  {"ceiling": 6, "buffer": "3s"},
		ClientWebSearch:   {"ceiling": 5, "buffer": "3s"},
	})
}

// Load unmarshals the viper state into a typed Config, pulls credentials from
// the environment, and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToFloat64HookFunc(),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if strings.TrimSpace(cfg.Store.URL) == "" && strings.TrimSpace(cfg.Store.Path) == "" {
		cfg.Store.Path = DefaultStorePath()
	}

	cfg.GoogleAPIKey = strings.TrimSpace(os.Getenv(EnvGoogleAPIKey))
	cfg.NewsAPIKey = strings.TrimSpace(os.Getenv(EnvNewsAPIKey))
	cfg.SerperAPIKey = strings.TrimSpace(os.Getenv(EnvSerperAPIKey))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the limiter and retry layers cannot run on.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is required")
	}

	for client, limit := range c.Limits {
		if limit.Ceiling < 1 {
			return fmt.Errorf("limits.%s.ceiling must be >= 1, got %d", client, limit.Ceiling)
		}
		if limit.Buffer < 0 {
			return fmt.Errorf("limits.%s.buffer must not be negative", client)
		}
	}

	if c.LLM.MaxAttempts < 1 {
		return errors.New("llm.max_attempts must be >= 1")
	}
	if c.Embeddings.MaxAttempts < 1 {
		return errors.New("embeddings.max_attempts must be >= 1")
	}
	if c.Pipeline.MaxAttempts < 1 {
		return errors.New("pipeline.max_attempts must be >= 1")
	}
	if c.Pipeline.BackoffBase <= 0 || c.Pipeline.BackoffCap < c.Pipeline.BackoffBase {
		return errors.New("pipeline backoff base/cap are inconsistent")
	}

	return nil
}

// Limit returns the configured budget for a client, falling back to a
// conservative default when the client is not configured.
func (c *Config) Limit(client string) LimitConfig {
	if c != nil {
		if limit, ok := c.Limits[client]; ok && limit.Ceiling >= 1 {
			return limit
		}
	}
	return LimitConfig{Ceiling: 2, Buffer: 3 * time.Second}
}

// DefaultStorePath places the database under the user config directory.
func DefaultStorePath() string {
	base, err := os.UserConfigDir()
	if err != nil || strings.TrimSpace(base) == "" {
		return filepath.Join(".", "newsloom.db")
	}
	return filepath.Join(base, "newsloom", "newsloom.db")
}
