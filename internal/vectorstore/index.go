package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/newsloom/newsloom/internal/store"
)

// ChunkStore is the persistence surface the index needs.
type ChunkStore interface {
	InsertDocument(ctx context.Context, doc *store.Document) error
	InsertChunks(ctx context.Context, documentID string, contents []string, embeddings [][]float64) error
	AllChunks(ctx context.Context) ([]store.ChunkRecord, error)
	CountChunks(ctx context.Context) (int, error)
}

// Embedder converts text to vectors.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error)
	EmbedQuery(ctx context.Context, text string) ([]float64, error)
}

// Match is one similarity search hit.
type Match struct {
	Content   string
	SourceURL string
	Title     string
	Score     float64
}

// Index persists embedded article chunks and answers similarity queries by
// scanning stored vectors. Corpus sizes here are a handful of articles per
// run, so a linear scan is sufficient.
type Index struct {
	Store    ChunkStore
	Embedder Embedder
}

// IndexChunks embeds the chunk texts and stores them under a new document.
func (ix *Index) IndexChunks(ctx context.Context, title, sourceURL string, chunks []string) (string, error) {
	if ix == nil || ix.Store == nil || ix.Embedder == nil {
		return "", fmt.Errorf("vector index is not configured")
	}
	if len(chunks) == 0 {
		return "", fmt.Errorf("no chunks to index")
	}

	embeddings, err := ix.Embedder.EmbedDocuments(ctx, chunks)
	if err != nil {
		return "", fmt.Errorf("embed chunks: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return "", fmt.Errorf("expected %d embeddings, got %d", len(chunks), len(embeddings))
	}

	doc := &store.Document{
		ID:        uuid.NewString(),
		Title:     title,
		SourceURL: sourceURL,
		IndexedAt: time.Now().UTC(),
	}
	if err := ix.Store.InsertDocument(ctx, doc); err != nil {
		return "", err
	}
	if err := ix.Store.InsertChunks(ctx, doc.ID, chunks, embeddings); err != nil {
		return "", err
	}
	return doc.ID, nil
}

// HasContent reports whether anything has been indexed yet.
func (ix *Index) HasContent(ctx context.Context) (bool, error) {
	if ix == nil || ix.Store == nil {
		return false, fmt.Errorf("vector index is not configured")
	}
	count, err := ix.Store.CountChunks(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Search returns the k stored chunks most similar to the query.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]Match, error) {
	if ix == nil || ix.Store == nil || ix.Embedder == nil {
		return nil, fmt.Errorf("vector index is not configured")
	}
	if k <= 0 {
		k = 3
	}

	queryVec, err := ix.Embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	records, err := ix.Store.AllChunks(ctx)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(records))
	for _, record := range records {
		matches = append(matches, Match{
			Content:   record.Content,
			SourceURL: record.SourceURL,
			Title:     record.Title,
			Score:     cosineSimilarity(queryVec, record.Embedding),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// cosineSimilarity returns 0 for mismatched or zero vectors.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
