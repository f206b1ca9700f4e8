package embed

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/newsloom/newsloom/internal/quota"
)

type fakeClient struct {
	batchCalls  int
	singleCalls int
	failFirst   bool
}

func (f *fakeClient) BatchEmbedContents(_ context.Context, _ string, texts []string) ([][]float64, error) {
	f.batchCalls++
	if f.failFirst && f.batchCalls == 1 {
		return nil, fmt.Errorf("429: quota exceeded for embed requests")
	}
	vectors := make([][]float64, len(texts))
	for i := range texts {
		vectors[i] = []float64{float64(i), 1}
	}
	return vectors, nil
}

func (f *fakeClient) EmbedContent(_ context.Context, _ string, _ string) ([]float64, error) {
	f.singleCalls++
	if f.failFirst && f.singleCalls == 1 {
		return nil, fmt.Errorf("429: quota exceeded for embed requests")
	}
	return []float64{0.5, 0.5}, nil
}

type timeline struct {
	now   time.Time
	slept []time.Duration
}

func newTimeline() *timeline {
	return &timeline{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (tl *timeline) clock() time.Time { return tl.now }

func (tl *timeline) sleep(_ context.Context, d time.Duration) {
	tl.slept = append(tl.slept, d)
	tl.now = tl.now.Add(d)
}

func (tl *timeline) total() time.Duration {
	var sum time.Duration
	for _, d := range tl.slept {
		sum += d
	}
	return sum
}

func newTestEmbedder(client Client, tl *timeline) *Embedder {
	e := New(client, "embedding-001", nil)
	e.Sleep = tl.sleep
	e.Retry.Clock = tl.clock
	e.Retry.Sleep = tl.sleep
	e.Retry.Limiter.Clock = tl.clock
	e.Retry.Limiter.Sleep = tl.sleep
	return e
}

func TestEmbedDocuments(t *testing.T) {
	client := &fakeClient{}
	tl := newTimeline()
	e := newTestEmbedder(client, tl)

	vectors, err := e.EmbedDocuments(context.Background(), []string{"a", "b", "c"})

	require.NoError(t, err)
	require.Len(t, vectors, 3)
	require.Equal(t, 1, client.batchCalls)
	require.Equal(t, time.Second, tl.total())
}

func TestEmbedDocumentsEmptyInput(t *testing.T) {
	client := &fakeClient{}
	e := newTestEmbedder(client, newTimeline())

	vectors, err := e.EmbedDocuments(context.Background(), nil)

	require.NoError(t, err)
	require.Nil(t, vectors)
	require.Zero(t, client.batchCalls)
}

func TestEmbedQuery(t *testing.T) {
	client := &fakeClient{}
	tl := newTimeline()
	e := newTestEmbedder(client, tl)

	vector, err := e.EmbedQuery(context.Background(), "latest AI news")

	require.NoError(t, err)
	require.Equal(t, []float64{0.5, 0.5}, vector)
	require.Equal(t, 500*time.Millisecond, tl.total())
}

func TestEmbedQueryRetriesQuotaOnce(t *testing.T) {
	client := &fakeClient{failFirst: true}
	tl := newTimeline()
	e := newTestEmbedder(client, tl)

	vector, err := e.EmbedQuery(context.Background(), "latest AI news")

	require.NoError(t, err)
	require.NotNil(t, vector)
	require.Equal(t, 2, client.singleCalls)
	// 0.5s pre-call pause plus the fixed 60s cool-off between attempts.
	require.Equal(t, 500*time.Millisecond+60*time.Second, tl.total())
}

func TestEmbedDocumentsQuotaExhausted(t *testing.T) {
	tl := newTimeline()
	e := New(&exhaustedClient{}, "embedding-001", nil)
	e.Sleep = tl.sleep
	e.Retry.Clock = tl.clock
	e.Retry.Sleep = tl.sleep
	e.Retry.Limiter.Clock = tl.clock
	e.Retry.Limiter.Sleep = tl.sleep

	_, err := e.EmbedDocuments(context.Background(), []string{"a"})

	var exhausted *quota.QuotaExhaustedError
	require.ErrorAs(t, err, &exhausted)
	require.Equal(t, 2, exhausted.Attempts)
}

type exhaustedClient struct{}

func (exhaustedClient) BatchEmbedContents(context.Context, string, []string) ([][]float64, error) {
	return nil, fmt.Errorf("resource_exhausted: quota exceeded")
}

func (exhaustedClient) EmbedContent(context.Context, string, string) ([]float64, error) {
	return nil, fmt.Errorf("resource_exhausted: quota exceeded")
}

func TestEmbedderNotConfigured(t *testing.T) {
	var e *Embedder
	_, err := e.EmbedQuery(context.Background(), "x")
	require.Error(t, err)
}
