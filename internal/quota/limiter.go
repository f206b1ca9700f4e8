package quota

import (
	"context"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"
)

// DefaultWindow is the trailing interval a Limiter evaluates calls against.
const DefaultWindow = time.Minute

// WindowState captures a limiter's current window for observability.
type WindowState struct {
	RequestCount int
	WindowStart  time.Time
	BackoffUntil *time.Time
	LastQuotaAt  *time.Time
}

// Journal mirrors limiter window state into longer-lived storage so it can be
// inspected after the fact (`rate-limit list`). Admission decisions never read
// from the journal.
type Journal interface {
	UpdateRateLimit(ctx context.Context, client string, state *WindowState) error
}

// Limiter caps calls for one logical client to Ceiling calls within the
// trailing window. Acquire blocks until admitting one more call would stay
// under the ceiling, then records the call.
//
// A Limiter is owned by a single caller. Construct one per client; do not
// share across goroutines.
type Limiter struct {
	Client  string
	Ceiling int
	Buffer  time.Duration
	Window  time.Duration
	Journal Journal
	Logger  *logging.Logger
	Clock   func() time.Time
	Sleep   func(context.Context, time.Duration)

	calls []time.Time
}

// Acquire blocks until another call is admissible, then records it as having
// occurred now.
func (l *Limiter) Acquire(ctx context.Context) {
	if l == nil {
		return
	}

	now := l.now()
	l.prune(now)

	if l.Ceiling > 0 && len(l.calls) >= l.Ceiling {
		oldest := l.calls[0]
		wait := oldest.Add(l.window()).Sub(now)
		if wait > 0 {
			if l.Logger != nil {
				l.Logger.Warn("Proactive rate limiting",
					zap.String("client", l.Client),
					zap.Duration("wait", wait),
					zap.Duration("buffer", l.Buffer))
			}
			l.sleep(ctx, wait+l.Buffer)
			l.prune(l.now())
		}
	}

	l.calls = append(l.calls, l.now())
	l.journal(ctx, nil, nil)
}

// Reset clears the recorded call history. The retry driver calls this after a
// quota error: the upstream server's own window has reset, so local history
// no longer reflects remaining budget.
func (l *Limiter) Reset(ctx context.Context) {
	if l == nil {
		return
	}
	l.calls = l.calls[:0]
	now := l.now()
	l.journal(ctx, nil, &now)
}

// NoteBackoff records that the client is backing off until the given time.
func (l *Limiter) NoteBackoff(ctx context.Context, until time.Time) {
	if l == nil {
		return
	}
	l.journal(ctx, &until, nil)
}

// Recorded returns the number of calls currently retained in the window.
func (l *Limiter) Recorded() int {
	if l == nil {
		return 0
	}
	l.prune(l.now())
	return len(l.calls)
}

func (l *Limiter) prune(now time.Time) {
	cutoff := now.Add(-l.window())
	retained := l.calls[:0]
	for _, at := range l.calls {
		if at.After(cutoff) {
			retained = append(retained, at)
		}
	}
	l.calls = retained
}

func (l *Limiter) journal(ctx context.Context, backoffUntil, lastQuotaAt *time.Time) {
	if l.Journal == nil {
		return
	}

	state := &WindowState{
		RequestCount: len(l.calls),
		WindowStart:  l.now(),
		BackoffUntil: backoffUntil,
		LastQuotaAt:  lastQuotaAt,
	}
	if len(l.calls) > 0 {
		state.WindowStart = l.calls[0]
	}

	if err := l.Journal.UpdateRateLimit(ctx, l.Client, state); err != nil && l.Logger != nil {
		l.Logger.Debug("Failed to journal rate limit state",
			zap.String("client", l.Client),
			zap.Error(err))
	}
}

func (l *Limiter) window() time.Duration {
	if l != nil && l.Window > 0 {
		return l.Window
	}
	return DefaultWindow
}

func (l *Limiter) now() time.Time {
	if l != nil && l.Clock != nil {
		return l.Clock()
	}
	return time.Now().UTC()
}

func (l *Limiter) sleep(ctx context.Context, d time.Duration) {
	if l != nil && l.Sleep != nil {
		l.Sleep(ctx, d)
		return
	}
	time.Sleep(d)
}
