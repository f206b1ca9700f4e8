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

// GetRateLimit returns stored rate limit state for an API client.
func (s *Store) GetRateLimit(ctx context.Context, client string) (*quota.WindowState, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	client = strings.TrimSpace(client)
	if client == "" {
		return nil, errors.New("client is required")
	}

	var (
		requestCount int
		windowStart  int64
		backoffUntil sql.NullInt64
		lastQuotaAt  sql.NullInt64
	)

	row := s.DB.QueryRowContext(ctx, `
		SELECT request_count, window_start, backoff_until, last_quota_at
		FROM rate_limits
		WHERE client = ?
	`, client)

	if err := row.Scan(&requestCount, &windowStart, &backoffUntil, &lastQuotaAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch rate limit: %w", err)
	}

	state := &quota.WindowState{
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

	return state, nil
}

// UpdateRateLimit persists rate limit state for an API client.
func (s *Store) UpdateRateLimit(ctx context.Context, client string, state *quota.WindowState) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	client = strings.TrimSpace(client)
	if client == "" {
		return errors.New("client is required")
	}
	if state == nil {
		return errors.New("rate limit state is required")
	}

	var backoffUntil sql.NullInt64
	if state.BackoffUntil != nil {
		backoffUntil = sql.NullInt64{Int64: state.BackoffUntil.UTC().Unix(), Valid: true}
	}

	var lastQuotaAt sql.NullInt64
	if state.LastQuotaAt != nil {
		lastQuotaAt = sql.NullInt64{Int64: state.LastQuotaAt.UTC().Unix(), Valid: true}
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO rate_limits (client, request_count, window_start, backoff_until, last_quota_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(client) DO UPDATE SET
			request_count = excluded.request_count,
			window_start = excluded.window_start,
			backoff_until = excluded.backoff_until,
			last_quota_at = excluded.last_quota_at
	`, client, state.RequestCount, state.WindowStart.UTC().Unix(), backoffUntil, lastQuotaAt)
	if err != nil {
		return fmt.Errorf("store rate limit: %w", err)
	}

	return nil
}
