package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Document is an indexed news article.
type Document struct {
	ID        string
	Title     string
	SourceURL string
	IndexedAt time.Time
}

// ChunkRecord is a stored chunk joined with its document source, ready for
// similarity scoring.
type ChunkRecord struct {
	Content   string
	Embedding []float64
	SourceURL string
	Title     string
}

// InsertDocument records an indexed article.
func (s *Store) InsertDocument(ctx context.Context, doc *Document) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if doc == nil || strings.TrimSpace(doc.ID) == "" {
		return errors.New("document id is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	indexedAt := doc.IndexedAt
	if indexedAt.IsZero() {
		indexedAt = time.Now().UTC()
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO documents (id, title, source_url, indexed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			source_url = excluded.source_url,
			indexed_at = excluded.indexed_at
	`, doc.ID, doc.Title, doc.SourceURL, indexedAt.UTC().Unix())
	if err != nil {
		return fmt.Errorf("store document: %w", err)
	}
	return nil
}

// InsertChunks stores chunk texts with their embeddings under a document.
func (s *Store) InsertChunks(ctx context.Context, documentID string, contents []string, embeddings [][]float64) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if strings.TrimSpace(documentID) == "" {
		return errors.New("document id is required")
	}
	if len(contents) != len(embeddings) {
		return fmt.Errorf("chunk count %d does not match embedding count %d", len(contents), len(embeddings))
	}
	if ctx == nil {
		ctx = context.Background()
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store chunks: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck // no-op after commit

	for i, content := range contents {
		encoded, err := json.Marshal(embeddings[i])
		if err != nil {
			return fmt.Errorf("encode embedding: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO chunks (document_id, content, embedding)
			VALUES (?, ?, ?)
		`, documentID, content, string(encoded)); err != nil {
			return fmt.Errorf("store chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store chunks: %w", err)
	}
	return nil
}

// AllChunks returns every stored chunk with its embedding and source.
func (s *Store) AllChunks(ctx context.Context) ([]ChunkRecord, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT c.content, c.embedding, d.source_url, d.title
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
	`)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup

	var records []ChunkRecord
	for rows.Next() {
		var (
			record  ChunkRecord
			encoded string
		)
		if err := rows.Scan(&record.Content, &encoded, &record.SourceURL, &record.Title); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		if err := json.Unmarshal([]byte(encoded), &record.Embedding); err != nil {
			return nil, fmt.Errorf("decode embedding: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}
	return records, nil
}

// CountChunks reports how many chunks are indexed.
func (s *Store) CountChunks(ctx context.Context) (int, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var count int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return count, nil
}
