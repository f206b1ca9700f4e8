package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"
)

// quotaGuidanceURL is included in the terminal error so operators know where
// to review and raise their limits.
const quotaGuidanceURL = "https://ai.google.dev/gemini-api/docs/rate-limits"

// QuotaExhaustedError reports that every permitted attempt failed with a
// quota error.
type QuotaExhaustedError struct {
	Client   string
	Attempts int
	Cause    error
}

func (e *QuotaExhaustedError) Error() string {
	return fmt.Sprintf("%s quota exceeded after %d attempts; check your quota and billing at %s or try again later",
		e.client(), e.Attempts, quotaGuidanceURL)
}

// Unwrap returns the last quota error observed.
func (e *QuotaExhaustedError) Unwrap() error {
	return e.Cause
}

func (e *QuotaExhaustedError) client() string {
	if e.Client != "" {
		return e.Client
	}
	return "api"
}

// Driver retries a fallible remote call: the limiter is acquired before every
// attempt, failures are classified, quota errors are retried after a computed
// backoff, and everything else propagates immediately.
//
// The numeric policy (attempt budget, backoff shape, extra delays) is
// configuration; every call site shares this one state machine.
type Driver struct {
	Name        string
	MaxAttempts int
	Backoff     Policy
	Limiter     *Limiter

	// PreDelay is slept once before the first attempt to space out bursts.
	PreDelay time.Duration

	// AttemptDelay, when set, returns an extra delay slept before retry
	// attempt n (1-based retries), layered on top of the quota backoff.
	AttemptDelay func(attempt int) time.Duration

	Logger *logging.Logger
	Clock  func() time.Time
	Sleep  func(context.Context, time.Duration)
}

// Do runs op under the driver's retry policy and returns its result, the
// first non-quota error unmodified, or a QuotaExhaustedError once the attempt
// budget is spent on quota errors.
func Do[T any](ctx context.Context, d *Driver, op func(context.Context) (T, error)) (T, error) {
	var zero T
	if d == nil {
		return zero, fmt.Errorf("retry driver is required")
	}
	if d.Backoff == nil {
		return zero, fmt.Errorf("retry driver %q has no backoff policy", d.Name)
	}

	maxAttempts := d.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	if d.PreDelay > 0 {
		d.logInfo("Spacing out initial request", zap.Duration("delay", d.PreDelay))
		d.sleep(ctx, d.PreDelay)
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 && d.AttemptDelay != nil {
			if delay := d.AttemptDelay(attempt); delay > 0 {
				d.logInfo("Delaying before retry",
					zap.Int("attempt", attempt+1),
					zap.Duration("delay", delay))
				d.sleep(ctx, delay)
			}
		}

		d.Limiter.Acquire(ctx)

		d.logInfo("Attempting operation",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", maxAttempts))

		result, err := op(ctx)
		if err == nil {
			if attempt > 0 {
				d.logInfo("Operation succeeded after retries", zap.Int("attempts", attempt+1))
			}
			return result, nil
		}
		lastErr = err

		if !IsQuotaError(err) {
			d.logError("Non-quota error, not retrying", zap.Error(err))
			return zero, err
		}

		if attempt == maxAttempts-1 {
			break
		}

		decision := d.Backoff.Compute(err.Error(), attempt)
		d.logWarn("Quota error detected, backing off",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", maxAttempts),
			zap.String("backoff_source", decision.Source),
			zap.Duration("wait", decision.Wait))

		d.Limiter.Reset(ctx)
		d.Limiter.NoteBackoff(ctx, d.now().Add(decision.Wait))
		d.countdown(ctx, decision.Wait)
	}

	d.logError("Attempt budget exhausted on quota errors",
		zap.Int("attempts", maxAttempts),
		zap.Error(lastErr))
	return zero, &QuotaExhaustedError{Client: d.Name, Attempts: maxAttempts, Cause: lastErr}
}

// countdown sleeps for the full wait in one-second steps, logging progress at
// intervals. The logging has no semantic effect.
func (d *Driver) countdown(ctx context.Context, wait time.Duration) {
	remaining := int(wait / time.Second)
	if wait%time.Second != 0 {
		remaining++
	}
	if remaining <= 0 {
		return
	}

	d.logInfo("Waiting before retry", zap.Int("seconds", remaining))
	for remaining > 0 {
		if remaining <= 10 || remaining%10 == 0 {
			d.logInfo("Wait in progress", zap.Int("seconds_remaining", remaining))
		}
		d.sleep(ctx, time.Second)
		remaining--
	}
	d.logInfo("Wait complete, resuming")
}

func (d *Driver) now() time.Time {
	if d != nil && d.Clock != nil {
		return d.Clock()
	}
	return time.Now().UTC()
}

func (d *Driver) sleep(ctx context.Context, wait time.Duration) {
	if d != nil && d.Sleep != nil {
		d.Sleep(ctx, wait)
		return
	}
	time.Sleep(wait)
}

func (d *Driver) logInfo(msg string, fields ...zap.Field) {
	if d != nil && d.Logger != nil {
		d.Logger.Info(msg, d.withName(fields)...)
	}
}

func (d *Driver) logWarn(msg string, fields ...zap.Field) {
	if d != nil && d.Logger != nil {
		d.Logger.Warn(msg, d.withName(fields)...)
	}
}

func (d *Driver) logError(msg string, fields ...zap.Field) {
	if d != nil && d.Logger != nil {
		d.Logger.Error(msg, d.withName(fields)...)
	}
}

func (d *Driver) withName(fields []zap.Field) []zap.Field {
	if d.Name == "" {
		return fields
	}
	return append([]zap.Field{zap.String("driver", d.Name)}, fields...)
}
