package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/newsloom/newsloom/internal/quota"
)

type RateLimitEntry struct {
	Client string
	State  quota.WindowState
}

type RateLimitQuery struct {
	All    bool
	Client string
	Prefix string
}

func (q RateLimitQuery) Validate() error {
	if q.All {
		return nil
	}
	if strings.TrimSpace(q.Client) != "" {
		return nil
	}
	if strings.TrimSpace(q.Prefix) != "" {
		return nil
	}
	return errors.New("must specify --all, --client, or --prefix")
}

func (q RateLimitQuery) whereClause() (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}
	if q.All {
		return "", nil, nil
	}
	if client := strings.TrimSpace(q.Client); client != "" {
		return "WHERE client = ?", []any{client}, nil
	}
	prefix := strings.TrimSpace(q.Prefix)
	if prefix == "" {
		return "", nil, errors.New("prefix is required")
	}
	return "WHERE client LIKE ?", []any{prefix + "%"}, nil
}

func (s *Store) ListRateLimits(ctx context.Context, q RateLimitQuery) ([]RateLimitEntry, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	where, args, err := q.whereClause()
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, fmt.Sprintf(`
		SELECT client, request_count, window_start, backoff_until, last_quota_at
		FROM rate_limits
		%s
		ORDER BY client
	`, where), args...)
	if err != nil {
		return nil, fmt.Errorf("list rate limits: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup

	entries := []RateLimitEntry{}
	for rows.Next() {
		var (
			client       string
			requestCount int
			windowStart  int64
			backoffUntil sql.NullInt64
			lastQuotaAt  sql.NullInt64
		)
		if err := rows.Scan(&client, &requestCount, &windowStart, &backoffUntil, &lastQuotaAt); err != nil {
			return nil, fmt.Errorf("scan rate limits: %w", err)
		}

		state := quota.WindowState{
			RequestCount: requestCount,
			WindowStart:  time.Unix(windowStart, 0).UTC(),
		}
		if backoffUntil.Valid {
			value := time.Unix(backoffUntil.Int64, 0).UTC()
			state.BackoffUntil = &value
		}
		if lastQuotaAt.Valid {
			value := time.Unix(lastQuotaAt.Int64, 0).UTC()
			state.LastQuotaAt = &value
		}

		entries = append(entries, RateLimitEntry{Client: client, State: state})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rate limits: %w", err)
	}

	return entries, nil
}

func (s *Store) CountRateLimits(ctx context.Context, q RateLimitQuery) (int, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	where, args, err := q.whereClause()
	if err != nil {
		return 0, err
	}

	row := s.DB.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT COUNT(*)
		FROM rate_limits
		%s
	`, where), args...)

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count rate limits: %w", err)
	}
	return count, nil
}

func (s *Store) ResetRateLimits(ctx context.Context, q RateLimitQuery) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	where, args, err := q.whereClause()
	if err != nil {
		return 0, err
	}

	result, err := s.DB.ExecContext(ctx, fmt.Sprintf(`
		DELETE FROM rate_limits
		%s
	`, where), args...)
	if err != nil {
		return 0, fmt.Errorf("reset rate limits: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset rate limits: %w", err)
	}
	return affected, nil
}
