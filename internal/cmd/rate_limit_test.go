package cmd

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/newsloom/newsloom/internal/output"
)

func TestWriteRateLimitResetResultTable(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, writeRateLimitResetResult(output.FormatTable, &sb, 3, 2, false))
	require.Equal(t, "Deleted 2/3 rate limit entr(ies)\n", sb.String())
}

func TestWriteRateLimitResetResultDryRun(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, writeRateLimitResetResult(output.FormatTable, &sb, 5, 0, true))
	require.Equal(t, "Would delete 5 rate limit entr(ies)\n", sb.String())
}

func TestWriteRateLimitResetResultJSON(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, writeRateLimitResetResult(output.FormatJSON, &sb, 1, 1, false))
	require.Contains(t, sb.String(), `"matched": 1`)
	require.Contains(t, sb.String(), `"deleted": 1`)
	require.Contains(t, sb.String(), `"dry_run": false`)
}

func TestOutputExtension(t *testing.T) {
	require.Equal(t, "json", outputExtension(output.FormatJSON))
	require.Equal(t, "txt", outputExtension(output.FormatTable))
}

func TestProgressiveDelay(t *testing.T) {
	require.Equal(t, 25*time.Second, progressiveDelay(1))
	require.Equal(t, 35*time.Second, progressiveDelay(2))
	require.Equal(t, 55*time.Second, progressiveDelay(4))
}
