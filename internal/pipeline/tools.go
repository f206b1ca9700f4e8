package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	"github.com/newsloom/newsloom/internal/news"
	"github.com/newsloom/newsloom/internal/quota"
	"github.com/newsloom/newsloom/internal/vectorstore"
	"github.com/newsloom/newsloom/internal/websearch"
)

// Tool is a named text-in text-out capability handed to the pipeline stages.
// Tools never fail: problems come back as readable text the model (and the
// operator) can act on.
type Tool interface {
	Name() string
	Run(ctx context.Context, query string) string
}

// Indexing keeps article and chunk counts low: each indexed chunk costs an
// embedding call against the same quota the rest of the run needs.
const (
	maxArticlesPerRun   = 1
	maxIndexedChunks    = 5
	indexerSearchK      = 2
	lookupSearchK       = 3
	indexerSnippetLimit = 300
	lookupSnippetLimit  = 400

	interArticlePause = 10 * time.Second
	preIndexPause     = 5 * time.Second
	preSearchPause    = 3 * time.Second
	lookupStepPause   = time.Second
)

// IndexerTool fetches recent articles for a topic, indexes their content, and
// reports the most relevant chunks.
type IndexerTool struct {
	News     *news.Client
	Fetcher  *news.Fetcher
	Splitter *news.Splitter
	Index    *vectorstore.Index
	Limiter  *quota.Limiter
	Logger   *logging.Logger

	Sleep func(context.Context, time.Duration)
}

func (t *IndexerTool) Name() string { return "News DB Tool" }

func (t *IndexerTool) Run(ctx context.Context, query string) string {
	if t == nil || t.News == nil || t.Index == nil {
		return "News indexing is not configured."
	}

	t.Limiter.Acquire(ctx)

	t.logInfo("Fetching news", zap.String("query", query))
	articles, err := t.News.Search(ctx, query)
	if err != nil {
		t.logError("News fetch failed", zap.Error(err))
		return fmt.Sprintf("Error fetching news: %s", err)
	}
	if len(articles) == 0 {
		return "No articles found for the given query."
	}

	splitter := t.Splitter
	if splitter == nil {
		splitter = news.NewSplitter()
	}
	fetcher := t.Fetcher
	if fetcher == nil {
		fetcher = &news.Fetcher{}
	}

	var (
		chunks    []string
		title     string
		sourceURL string
		processed int
	)
	for _, article := range articles {
		if processed >= maxArticlesPerRun {
			break
		}
		if strings.TrimSpace(article.URL) == "" {
			continue
		}

		if processed > 0 {
			t.logInfo("Pausing between articles", zap.Duration("pause", interArticlePause))
			t.pause(ctx, interArticlePause)
		}

		t.logInfo("Processing article", zap.String("title", article.Title), zap.String("url", article.URL))
		text, err := fetcher.FetchText(ctx, article.URL)
		if err != nil {
			t.logWarn("Skipping article", zap.String("url", article.URL), zap.Error(err))
			continue
		}

		chunks = append(chunks, splitter.Split(text)...)
		title = article.Title
		sourceURL = article.URL
		processed++
	}

	if len(chunks) == 0 {
		return fmt.Sprintf("Processed %d article(s) but no content was available for indexing.", processed)
	}

	if len(chunks) > maxIndexedChunks {
		chunks = chunks[:maxIndexedChunks]
	}

	t.pause(ctx, preIndexPause)
	if _, err := t.Index.IndexChunks(ctx, title, sourceURL, chunks); err != nil {
		t.logError("Indexing failed", zap.Error(err))
		return fmt.Sprintf("Error creating vector store: %s", err)
	}

	t.pause(ctx, preSearchPause)
	matches, err := t.Index.Search(ctx, query, indexerSearchK)
	if err != nil {
		t.logError("Similarity search failed", zap.Error(err))
		return fmt.Sprintf("Error creating vector store: %s", err)
	}

	return fmt.Sprintf("Successfully processed %d article(s). Found %d relevant chunks:\n\n%s",
		processed, len(matches), formatMatches(matches, indexerSnippetLimit))
}

func (t *IndexerTool) pause(ctx context.Context, d time.Duration) {
	sleepFor(ctx, t.Sleep, d)
}

func (t *IndexerTool) logInfo(msg string, fields ...zap.Field) {
	if t.Logger != nil {
		t.Logger.Info(msg, fields...)
	}
}

func (t *IndexerTool) logWarn(msg string, fields ...zap.Field) {
	if t.Logger != nil {
		t.Logger.Warn(msg, fields...)
	}
}

func (t *IndexerTool) logError(msg string, fields ...zap.Field) {
	if t.Logger != nil {
		t.Logger.Error(msg, fields...)
	}
}

// LookupTool answers queries from the already-indexed article chunks.
type LookupTool struct {
	Index   *vectorstore.Index
	Limiter *quota.Limiter
	Logger  *logging.Logger

	Sleep func(context.Context, time.Duration)
}

func (t *LookupTool) Name() string { return "Get News Tool" }

func (t *LookupTool) Run(ctx context.Context, query string) string {
	if t == nil || t.Index == nil {
		return "News lookup is not configured."
	}

	t.Limiter.Acquire(ctx)

	populated, err := t.Index.HasContent(ctx)
	if err != nil {
		return fmt.Sprintf("Error retrieving news from database: %s", err)
	}
	if !populated {
		return "No news database found. Run 'newsloom index' first to populate the database."
	}

	sleepFor(ctx, t.Sleep, lookupStepPause)

	matches, err := t.Index.Search(ctx, query, lookupSearchK)
	if err != nil {
		return fmt.Sprintf("Error retrieving news from database: %s", err)
	}
	if len(matches) == 0 {
		return fmt.Sprintf("No relevant news found for query: %s", query)
	}

	return fmt.Sprintf("Found %d relevant articles:\n\n%s",
		len(matches), formatMatches(matches, lookupSnippetLimit))
}

// SearchTool exposes web search to the writer stage.
type SearchTool struct {
	Client *websearch.SerperClient
}

func (t *SearchTool) Name() string { return "Search Tool" }

func (t *SearchTool) Run(ctx context.Context, query string) string {
	if t == nil || t.Client == nil {
		return "Serper API key not configured. Please set SERPER_API_KEY environment variable."
	}
	return t.Client.Search(ctx, query)
}

func formatMatches(matches []vectorstore.Match, snippetLimit int) string {
	parts := make([]string, 0, len(matches))
	for _, match := range matches {
		content := match.Content
		if len(content) > snippetLimit {
			content = content[:snippetLimit]
		}
		source := match.SourceURL
		if source == "" {
			source = "Unknown"
		}
		parts = append(parts, fmt.Sprintf("Content: %s\nSource: %s", content, source))
	}
	return strings.Join(parts, "\n---\n")
}

func sleepFor(ctx context.Context, sleep func(context.Context, time.Duration), d time.Duration) {
	if d <= 0 {
		return
	}
	if sleep != nil {
		sleep(ctx, d)
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
