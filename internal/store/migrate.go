package store

import (
	"context"
	"errors"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS rate_limits (
		client TEXT PRIMARY KEY,
		request_count INTEGER NOT NULL DEFAULT 0,
		window_start INTEGER NOT NULL,
		backoff_until INTEGER,
		last_quota_at INTEGER
	);`,
	`CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		source_url TEXT NOT NULL,
		indexed_at INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_documents_source ON documents(source_url);`,
	`CREATE TABLE IF NOT EXISTS chunks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document_id TEXT NOT NULL,
		content TEXT NOT NULL,
		embedding TEXT NOT NULL,
		FOREIGN KEY(document_id) REFERENCES documents(id)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id);`,
	`CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		topic TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_reports_topic ON reports(topic);`,
}

// Migrate ensures the required database tables exist.
func (s *Store) Migrate(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	for _, stmt := range schemaStatements {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store migration failed: %w", err)
		}
	}

	return nil
}
