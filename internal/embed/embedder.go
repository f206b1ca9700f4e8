package embed

import (
	"context"
	"fmt"
	"time"

	"github.com/newsloom/newsloom/internal/quota"
)

// Defaults for the embedding call budget. The embedding endpoint tolerates a
// slightly higher request rate than chat but fails hard once exceeded, so the
// retry budget stays small with a fixed cool-off.
const (
	DefaultCeiling     = 8
	DefaultBuffer      = 2 * time.Second
	DefaultMaxAttempts = 2
	DefaultRetryWait   = 60 * time.Second
	documentBatchPause = time.Second
	queryPause         = 500 * time.Millisecond
)

// Client is the provider surface the embedder needs.
type Client interface {
	EmbedContent(ctx context.Context, model, text string) ([]float64, error)
	BatchEmbedContents(ctx context.Context, model string, texts []string) ([][]float64, error)
}

// Embedder converts text into vectors under rate limiting and a short
// fixed-wait retry budget.
type Embedder struct {
	Client Client
	Model  string
	Retry  *quota.Driver

	Sleep func(context.Context, time.Duration)
}

// New wires an embedder with the default limiter and retry policy.
func New(client Client, model string, journal quota.Journal) *Embedder {
	limiter := &quota.Limiter{
		Client:  "embeddings",
		Ceiling: DefaultCeiling,
		Buffer:  DefaultBuffer,
		Journal: journal,
	}

	return &Embedder{
		Client: client,
		Model:  model,
		Retry: &quota.Driver{
			Name:        "embeddings",
			MaxAttempts: DefaultMaxAttempts,
			Backoff:     quota.FixedPolicy{Wait: DefaultRetryWait},
			Limiter:     limiter,
		},
	}
}

// EmbedDocuments embeds a batch of document chunks. A short pause before the
// call spaces batches apart when indexing many articles in a row.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error) {
	if e == nil || e.Client == nil {
		return nil, fmt.Errorf("embedder is not configured")
	}
	if len(texts) == 0 {
		return nil, nil
	}

	e.pause(ctx, documentBatchPause)

	return quota.Do(ctx, e.Retry, func(ctx context.Context) ([][]float64, error) {
		return e.Client.BatchEmbedContents(ctx, e.Model, texts)
	})
}

// EmbedQuery embeds a single search query.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	if e == nil || e.Client == nil {
		return nil, fmt.Errorf("embedder is not configured")
	}

	e.pause(ctx, queryPause)

	return quota.Do(ctx, e.Retry, func(ctx context.Context) ([]float64, error) {
		return e.Client.EmbedContent(ctx, e.Model, text)
	})
}

func (e *Embedder) pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	if e.Sleep != nil {
		e.Sleep(ctx, d)
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
