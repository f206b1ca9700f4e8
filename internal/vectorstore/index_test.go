package vectorstore

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/newsloom/newsloom/internal/store"
)

type memoryChunkStore struct {
	docs   map[string]*store.Document
	chunks []store.ChunkRecord
}

func newMemoryChunkStore() *memoryChunkStore {
	return &memoryChunkStore{docs: map[string]*store.Document{}}
}

func (m *memoryChunkStore) InsertDocument(_ context.Context, doc *store.Document) error {
	m.docs[doc.ID] = doc
	return nil
}

func (m *memoryChunkStore) InsertChunks(_ context.Context, documentID string, contents []string, embeddings [][]float64) error {
	doc, ok := m.docs[documentID]
	if !ok {
		return fmt.Errorf("unknown document %s", documentID)
	}
	for i := range contents {
		m.chunks = append(m.chunks, store.ChunkRecord{
			Content:   contents[i],
			Embedding: embeddings[i],
			SourceURL: doc.SourceURL,
			Title:     doc.Title,
		})
	}
	return nil
}

func (m *memoryChunkStore) AllChunks(_ context.Context) ([]store.ChunkRecord, error) {
	return m.chunks, nil
}

func (m *memoryChunkStore) CountChunks(_ context.Context) (int, error) {
	return len(m.chunks), nil
}

// keywordEmbedder maps known words to fixed unit vectors so similarity
// ordering is deterministic.
type keywordEmbedder struct{}

func (keywordEmbedder) embed(text string) []float64 {
	switch text {
	case "robots":
		return []float64{1, 0, 0}
	case "chips":
		return []float64{0, 1, 0}
	case "mostly robots":
		return []float64{0.9, 0.1, 0}
	default:
		return []float64{0, 0, 1}
	}
}

func (e keywordEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vectors[i] = e.embed(text)
	}
	return vectors, nil
}

func (e keywordEmbedder) EmbedQuery(_ context.Context, text string) ([]float64, error) {
	return e.embed(text), nil
}

func newTestIndex() (*Index, *memoryChunkStore) {
	ms := newMemoryChunkStore()
	return &Index{Store: ms, Embedder: keywordEmbedder{}}, ms
}

func TestIndexChunks(t *testing.T) {
	ix, ms := newTestIndex()

	id, err := ix.IndexChunks(context.Background(), "AI roundup", "https://example.com/a", []string{"robots", "chips"})

	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.Len(t, ms.chunks, 2)
	require.Equal(t, "https://example.com/a", ms.chunks[0].SourceURL)
}

func TestIndexChunksEmpty(t *testing.T) {
	ix, _ := newTestIndex()
	_, err := ix.IndexChunks(context.Background(), "t", "u", nil)
	require.Error(t, err)
}

func TestHasContent(t *testing.T) {
	ix, _ := newTestIndex()
	ctx := context.Background()

	empty, err := ix.HasContent(ctx)
	require.NoError(t, err)
	require.False(t, empty)

	_, err = ix.IndexChunks(ctx, "t", "u", []string{"robots"})
	require.NoError(t, err)

	full, err := ix.HasContent(ctx)
	require.NoError(t, err)
	require.True(t, full)
}

func TestSearchRanksBySimilarity(t *testing.T) {
	ix, _ := newTestIndex()
	ctx := context.Background()

	_, err := ix.IndexChunks(ctx, "robots article", "https://example.com/r", []string{"robots", "mostly robots"})
	require.NoError(t, err)
	_, err = ix.IndexChunks(ctx, "chips article", "https://example.com/c", []string{"chips"})
	require.NoError(t, err)

	matches, err := ix.Search(ctx, "robots", 2)

	require.NoError(t, err)
	require.Len(t, matches, 2)
	require.Equal(t, "robots", matches[0].Content)
	require.Equal(t, "mostly robots", matches[1].Content)
	require.Greater(t, matches[0].Score, matches[1].Score)
	require.Equal(t, "https://example.com/r", matches[0].SourceURL)
}

func TestSearchDefaultK(t *testing.T) {
	ix, _ := newTestIndex()
	ctx := context.Background()

	_, err := ix.IndexChunks(ctx, "t", "u", []string{"robots", "chips", "mostly robots", "other"})
	require.NoError(t, err)

	matches, err := ix.Search(ctx, "robots", 0)
	require.NoError(t, err)
	require.Len(t, matches, 3)
}

func TestCosineSimilarity(t *testing.T) {
	require.InDelta(t, 1.0, cosineSimilarity([]float64{1, 0}, []float64{2, 0}), 1e-9)
	require.InDelta(t, 0.0, cosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-9)
	require.Zero(t, cosineSimilarity([]float64{1, 0}, []float64{1}))
	require.Zero(t, cosineSimilarity(nil, nil))
	require.Zero(t, cosineSimilarity([]float64{0, 0}, []float64{0, 0}))
}
