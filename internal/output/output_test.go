package output

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/newsloom/newsloom/internal/pipeline"
	"github.com/newsloom/newsloom/internal/quota"
	"github.com/newsloom/newsloom/internal/store"
)

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("table")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	format, err = ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	format, err = ParseFormat(" JSON ")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, format)

	_, err = ParseFormat("yaml")
	require.Error(t, err)
}

func TestFormatRateLimits(t *testing.T) {
	backoff := time.Date(2026, 3, 1, 10, 5, 0, 0, time.UTC)
	entries := []store.RateLimitEntry{
		{
			Client: "llm",
			State: quota.WindowState{
				RequestCount: 4,
				WindowStart:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
				BackoffUntil: &backoff,
			},
		},
		{
			Client: "embeddings",
			State: quota.WindowState{
				RequestCount: 1,
				WindowStart:  time.Date(2026, 3, 1, 10, 1, 0, 0, time.UTC),
			},
		},
	}

	rendered, err := (&TableFormatter{}).FormatRateLimits(entries)

	require.NoError(t, err)
	require.Contains(t, rendered, "CLIENT")
	require.Contains(t, rendered, "llm")
	require.Contains(t, rendered, "embeddings")
	require.Contains(t, rendered, "2026-03-01T10:05:00Z")
	require.Contains(t, rendered, "2 client(s)")
}

func TestFormatRunSummary(t *testing.T) {
	result := &pipeline.Result{
		RunID:     "run-1",
		Topic:     "artificial intelligence",
		Report:    "body",
		StartedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Duration:  95 * time.Second,
	}

	rendered, err := (&TableFormatter{}).FormatRunSummary(result)

	require.NoError(t, err)
	require.Contains(t, rendered, "run-1")
	require.Contains(t, rendered, "artificial intelligence")
	require.Contains(t, rendered, "1m35s")
	require.Contains(t, rendered, "4 chars")
}

func TestFormatRunSummaryNil(t *testing.T) {
	rendered, err := (&TableFormatter{}).FormatRunSummary(nil)
	require.NoError(t, err)
	require.Empty(t, rendered)
}
