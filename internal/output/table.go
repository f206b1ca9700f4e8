package output

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/newsloom/newsloom/internal/pipeline"
	"github.com/newsloom/newsloom/internal/store"
)

// TableFormatter renders results as ASCII tables.
type TableFormatter struct{}

// FormatRateLimits renders rate limit entries as a table.
func (f *TableFormatter) FormatRateLimits(entries []store.RateLimitEntry) (string, error) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Client", "Requests", "Window Start", "Backoff Until", "Last Quota Error"})

	for _, entry := range entries {
		t.AppendRow(table.Row{
			entry.Client,
			entry.State.RequestCount,
			formatTime(&entry.State.WindowStart),
			formatTime(entry.State.BackoffUntil),
			formatTime(entry.State.LastQuotaAt),
		})
	}

	if len(entries) > 0 {
		t.AppendFooter(table.Row{fmt.Sprintf("%d client(s)", len(entries)), "", "", "", ""})
	}

	return t.Render(), nil
}

// FormatRunSummary renders a finished run's metadata as a table. The report
// body itself is printed separately.
func (f *TableFormatter) FormatRunSummary(result *pipeline.Result) (string, error) {
	if result == nil {
		return "", nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Run", "Topic", "Started", "Duration", "Report Size"})
	t.AppendRow(table.Row{
		result.RunID,
		result.Topic,
		formatTime(&result.StartedAt),
		result.Duration.Round(time.Second).String(),
		fmt.Sprintf("%d chars", len(result.Report)),
	})

	return t.Render(), nil
}

func formatTime(value *time.Time) string {
	if value == nil || value.IsZero() {
		return "-"
	}
	return value.UTC().Format(time.RFC3339)
}
