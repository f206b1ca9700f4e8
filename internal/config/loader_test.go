package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newTestViper())
	require.NoError(t, err)

	require.Equal(t, "libsql", cfg.Store.Driver)
	require.NotEmpty(t, cfg.Store.Path)

	require.Equal(t, "gemini-2.0-flash-exp", cfg.LLM.Model)
	require.Equal(t, 120*time.Second, cfg.LLM.Timeout)
	require.Equal(t, 5, cfg.LLM.MaxAttempts)

	require.Equal(t, 2, cfg.News.PageSize)

	require.Equal(t, 5, cfg.Pipeline.MaxAttempts)
	require.Equal(t, 30*time.Second, cfg.Pipeline.BackoffBase)
	require.Equal(t, 300*time.Second, cfg.Pipeline.BackoffCap)
	require.Equal(t, 10*time.Second, cfg.Pipeline.PreDelay)
}

func TestLoadDefaultLimits(t *testing.T) {
	cfg, err := Load(newTestViper())
	require.NoError(t, err)

	require.Equal(t, LimitConfig{Ceiling: 6, Buffer: 3 * time.Second}, cfg.Limit(ClientLLM))
	require.Equal(t, LimitConfig{Ceiling: 8, Buffer: 2 * time.Second}, cfg.Limit(ClientEmbeddings))
	require.Equal(t, LimitConfig{Ceiling: 2, Buffer: 3 * time.Second}, cfg.Limit(ClientNewsIndexer))
	require.Equal(t, LimitConfig{Ceiling: 6, Buffer: 3 * time.Second}, cfg.Limit(ClientNewsLookup))
	require.Equal(t, LimitConfig{Ceiling: 5, Buffer: 3 * time.Second}, cfg.Limit(ClientWebSearch))
}

func TestLoadOverrides(t *testing.T) {
	v := newTestViper()
	v.Set("llm.model", "gemini-1.5-pro")
	v.Set("limits.llm.ceiling", 3)
	v.Set("limits.llm.buffer", "5s")

	cfg, err := Load(v)
	require.NoError(t, err)

	require.Equal(t, "gemini-1.5-pro", cfg.LLM.Model)
	require.Equal(t, LimitConfig{Ceiling: 3, Buffer: 5 * time.Second}, cfg.Limit(ClientLLM))
}

func TestLoadRejectsZeroCeiling(t *testing.T) {
	v := newTestViper()
	v.Set("limits.llm.ceiling", 0)

	_, err := Load(v)
	require.Error(t, err)
	require.Contains(t, err.Error(), "ceiling must be >= 1")
}

func TestLoadRejectsBadRetryBudget(t *testing.T) {
	v := newTestViper()
	v.Set("pipeline.max_attempts", 0)

	_, err := Load(v)
	require.Error(t, err)
}

func TestLoadRejectsInvertedBackoff(t *testing.T) {
	v := newTestViper()
	v.Set("pipeline.backoff_base", "600s")

	_, err := Load(v)
	require.Error(t, err)
}

func TestLimitFallback(t *testing.T) {
	cfg := &Config{}
	require.Equal(t, LimitConfig{Ceiling: 2, Buffer: 3 * time.Second}, cfg.Limit("unknown"))
}

func TestSecretsFromEnvironment(t *testing.T) {
	t.Setenv(EnvGoogleAPIKey, " google-key ")
	t.Setenv(EnvNewsAPIKey, "news-key")
	t.Setenv(EnvSerperAPIKey, "")

	cfg, err := Load(newTestViper())
	require.NoError(t, err)

	require.Equal(t, "google-key", cfg.GoogleAPIKey)
	require.Equal(t, "news-key", cfg.NewsAPIKey)
	require.Empty(t, cfg.SerperAPIKey)
}
