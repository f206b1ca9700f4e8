package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Report is a finished research report.
type Report struct {
	ID        string
	Topic     string
	Content   string
	CreatedAt time.Time
}

// InsertReport persists a finished report.
func (s *Store) InsertReport(ctx context.Context, report *Report) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if report == nil || strings.TrimSpace(report.ID) == "" {
		return errors.New("report id is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	createdAt := report.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO reports (id, topic, content, created_at)
		VALUES (?, ?, ?, ?)
	`, report.ID, report.Topic, report.Content, createdAt.UTC().Unix())
	if err != nil {
		return fmt.Errorf("store report: %w", err)
	}
	return nil
}

// ListReports returns reports for a topic, newest first. An empty topic
// returns everything.
func (s *Store) ListReports(ctx context.Context, topic string) ([]Report, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	where := ""
	args := []any{}
	if topic = strings.TrimSpace(topic); topic != "" {
		where = "WHERE topic = ?"
		args = append(args, topic)
	}

	rows, err := s.DB.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, topic, content, created_at
		FROM reports
		%s
		ORDER BY created_at DESC
	`, where), args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup

	var reports []Report
	for rows.Next() {
		var (
			report    Report
			createdAt int64
		)
		if err := rows.Scan(&report.ID, &report.Topic, &report.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		report.CreatedAt = time.Unix(createdAt, 0).UTC()
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}
