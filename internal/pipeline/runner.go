package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/newsloom/newsloom/internal/llm"
	"github.com/newsloom/newsloom/internal/quota"
	"github.com/newsloom/newsloom/internal/store"
)

// DefaultTopic is used when no topic is supplied anywhere.
const DefaultTopic = "AI 2024"

// ReportStore persists finished reports.
type ReportStore interface {
	InsertReport(ctx context.Context, report *store.Report) error
}

// Result is one finished research run.
type Result struct {
	RunID     string
	Topic     string
	KeyPoints string
	Report    string
	StartedAt time.Time
	Duration  time.Duration
}

// Runner drives the two-stage research pipeline: the searcher stage indexes
// fresh articles and condenses them into key points, then the writer stage
// expands those into a report using the news database and web search. The
// whole run sits inside the outer retry driver, so a quota failure anywhere
// restarts the run after backoff.
type Runner struct {
	Invoker *llm.Invoker
	Indexer Tool
	Lookup  Tool
	Search  Tool
	Reports ReportStore
	Retry   *quota.Driver
	Logger  *logging.Logger
	Clock   func() time.Time
}

// Run executes the pipeline for a topic under the outer retry policy.
func (r *Runner) Run(ctx context.Context, topic string) (*Result, error) {
	if r == nil || r.Invoker == nil {
		return nil, fmt.Errorf("pipeline runner is not configured")
	}

	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = DefaultTopic
	}

	r.logInfo("Starting research run", zap.String("topic", topic))
	return quota.Do(ctx, r.Retry, func(ctx context.Context) (*Result, error) {
		return r.execute(ctx, topic)
	})
}

func (r *Runner) execute(ctx context.Context, topic string) (*Result, error) {
	startedAt := r.now()

	// Searcher stage.
	indexerOutput := r.runTool(ctx, r.Indexer, topic)
	keyPoints, err := r.invoke(ctx, searcherPrompt(topic, indexerOutput))
	if err != nil {
		return nil, err
	}
	r.logInfo("Searcher stage complete", zap.Int("key_points_chars", len(keyPoints)))

	// Writer stage, strictly after the searcher.
	lookupOutput := r.runTool(ctx, r.Lookup, topic)
	searchOutput := r.runTool(ctx, r.Search, topic)
	report, err := r.invoke(ctx, writerPrompt(topic, keyPoints, lookupOutput, searchOutput))
	if err != nil {
		return nil, err
	}
	r.logInfo("Writer stage complete", zap.Int("report_chars", len(report)))

	result := &Result{
		RunID:     uuid.NewString(),
		Topic:     topic,
		KeyPoints: keyPoints,
		Report:    report,
		StartedAt: startedAt,
		Duration:  r.now().Sub(startedAt),
	}

	if r.Reports != nil {
		if err := r.Reports.InsertReport(ctx, &store.Report{
			ID:        result.RunID,
			Topic:     result.Topic,
			Content:   result.Report,
			CreatedAt: startedAt,
		}); err != nil {
			return nil, fmt.Errorf("persist report: %w", err)
		}
	}

	return result, nil
}

func (r *Runner) invoke(ctx context.Context, prompt string) (string, error) {
	resp, err := r.Invoker.Invoke(ctx, &llm.Request{
		Messages: []llm.Message{{Role: llm.RoleUser, Text: prompt}},
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

func (r *Runner) runTool(ctx context.Context, tool Tool, query string) string {
	if tool == nil {
		return "Tool not available."
	}
	output := tool.Run(ctx, query)
	r.logInfo("Tool finished", zap.String("tool", tool.Name()), zap.Int("output_chars", len(output)))
	return output
}

func (r *Runner) now() time.Time {
	if r != nil && r.Clock != nil {
		return r.Clock()
	}
	return time.Now().UTC()
}

func (r *Runner) logInfo(msg string, fields ...zap.Field) {
	if r != nil && r.Logger != nil {
		r.Logger.Info(msg, fields...)
	}
}
