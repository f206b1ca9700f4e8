//go:build cgo

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/newsloom/newsloom/internal/config"
	"github.com/newsloom/newsloom/internal/quota"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	ctx := context.Background()
	s, err := Open(ctx, config.StoreConfig{Driver: "libsql", Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Migrate(ctx))
	return s
}

func TestRateLimitRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	missing, err := s.GetRateLimit(ctx, "llm")
	require.NoError(t, err)
	require.Nil(t, missing)

	backoff := time.Date(2026, 3, 1, 10, 5, 0, 0, time.UTC)
	state := &quota.WindowState{
		RequestCount: 4,
		WindowStart:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		BackoffUntil: &backoff,
	}
	require.NoError(t, s.UpdateRateLimit(ctx, "llm", state))

	loaded, err := s.GetRateLimit(ctx, "llm")
	require.NoError(t, err)
	require.Equal(t, 4, loaded.RequestCount)
	require.Equal(t, state.WindowStart, loaded.WindowStart)
	require.NotNil(t, loaded.BackoffUntil)
	require.Equal(t, backoff, *loaded.BackoffUntil)
	require.Nil(t, loaded.LastQuotaAt)
}

func TestListAndResetRateLimits(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	for _, client := range []string{"llm", "news_indexer", "news_lookup"} {
		require.NoError(t, s.UpdateRateLimit(ctx, client, &quota.WindowState{
			RequestCount: 1,
			WindowStart:  now,
		}))
	}

	entries, err := s.ListRateLimits(ctx, RateLimitQuery{Prefix: "news_"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "news_indexer", entries[0].Client)

	count, err := s.CountRateLimits(ctx, RateLimitQuery{All: true})
	require.NoError(t, err)
	require.Equal(t, 3, count)

	affected, err := s.ResetRateLimits(ctx, RateLimitQuery{Client: "llm"})
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	count, err = s.CountRateLimits(ctx, RateLimitQuery{All: true})
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestDocumentAndChunkRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	doc := &Document{
		ID:        "doc-1",
		Title:     "AI breakthrough",
		SourceURL: "https://example.com/a",
		IndexedAt: time.Now().UTC(),
	}
	require.NoError(t, s.InsertDocument(ctx, doc))

	contents := []string{"first chunk", "second chunk"}
	embeddings := [][]float64{{1, 0}, {0, 1}}
	require.NoError(t, s.InsertChunks(ctx, doc.ID, contents, embeddings))

	count, err := s.CountChunks(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	records, err := s.AllChunks(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "first chunk", records[0].Content)
	require.Equal(t, []float64{1, 0}, records[0].Embedding)
	require.Equal(t, "https://example.com/a", records[0].SourceURL)
	require.Equal(t, "AI breakthrough", records[0].Title)
}

func TestInsertChunksCountMismatch(t *testing.T) {
	s := openTestStore(t)
	err := s.InsertChunks(context.Background(), "doc-1", []string{"a", "b"}, [][]float64{{1}})
	require.Error(t, err)
}

func TestReportRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertReport(ctx, &Report{
		ID:      "run-1",
		Topic:   "artificial intelligence",
		Content: "# Report\n\nfindings",
	}))

	reports, err := s.ListReports(ctx, "artificial intelligence")
	require.NoError(t, err)
	require.Len(t, reports, 1)
	require.Equal(t, "run-1", reports[0].ID)
	require.Contains(t, reports[0].Content, "findings")

	none, err := s.ListReports(ctx, "unrelated")
	require.NoError(t, err)
	require.Empty(t, none)
}
