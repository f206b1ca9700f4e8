package quota

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryJournal struct {
	states map[string]*WindowState
}

func (m *memoryJournal) UpdateRateLimit(ctx context.Context, client string, state *WindowState) error {
	if m.states == nil {
		m.states = make(map[string]*WindowState)
	}
	m.states[client] = state
	return nil
}

// fakeTimeline drives a limiter with a controllable clock whose sleeps
// fast-forward the clock instead of blocking.
type fakeTimeline struct {
	now    time.Time
	sleeps []time.Duration
}

func (f *fakeTimeline) clock() time.Time { return f.now }

func (f *fakeTimeline) sleep(_ context.Context, d time.Duration) {
	f.sleeps = append(f.sleeps, d)
	f.now = f.now.Add(d)
}

func newTestLimiter(ceiling int, buffer time.Duration) (*Limiter, *fakeTimeline) {
	timeline := &fakeTimeline{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	limiter := &Limiter{
		Client:  "test",
		Ceiling: ceiling,
		Buffer:  buffer,
		Clock:   timeline.clock,
		Sleep:   timeline.sleep,
	}
	return limiter, timeline
}

func TestLimiterAdmitsUnderCeiling(t *testing.T) {
	limiter, timeline := newTestLimiter(3, 2*time.Second)

	for i := 0; i < 3; i++ {
		limiter.Acquire(context.Background())
		timeline.now = timeline.now.Add(time.Second)
	}

	require.Empty(t, timeline.sleeps)
	require.Equal(t, 3, limiter.Recorded())
}

func TestLimiterBlocksAtCeiling(t *testing.T) {
	limiter, timeline := newTestLimiter(2, 2*time.Second)

	limiter.Acquire(context.Background())
	timeline.now = timeline.now.Add(10 * time.Second)
	limiter.Acquire(context.Background())
	timeline.now = timeline.now.Add(10 * time.Second)

	// Third call: oldest record is 20s old, so the limiter must sleep
	// 40s to let it age out, plus the configured buffer.
	limiter.Acquire(context.Background())

	require.Len(t, timeline.sleeps, 1)
	require.Equal(t, 40*time.Second+2*time.Second, timeline.sleeps[0])
}

func TestLimiterWindowNeverExceedsCeiling(t *testing.T) {
	const ceiling = 4
	limiter, timeline := newTestLimiter(ceiling, 3*time.Second)

	for i := 0; i < 40; i++ {
		limiter.Acquire(context.Background())
		require.LessOrEqual(t, limiter.Recorded(), ceiling)
		timeline.now = timeline.now.Add(1500 * time.Millisecond)
	}
}

func TestLimiterPrunesExpiredRecords(t *testing.T) {
	limiter, timeline := newTestLimiter(5, time.Second)

	limiter.Acquire(context.Background())
	limiter.Acquire(context.Background())
	require.Equal(t, 2, limiter.Recorded())

	timeline.now = timeline.now.Add(61 * time.Second)
	require.Equal(t, 0, limiter.Recorded())

	limiter.Acquire(context.Background())
	require.Empty(t, timeline.sleeps)
}

func TestLimiterReset(t *testing.T) {
	limiter, _ := newTestLimiter(2, time.Second)

	limiter.Acquire(context.Background())
	limiter.Acquire(context.Background())
	require.Equal(t, 2, limiter.Recorded())

	limiter.Reset(context.Background())
	require.Equal(t, 0, limiter.Recorded())

	// After a reset the next call is admitted without waiting.
	limiter.Acquire(context.Background())
	require.Equal(t, 1, limiter.Recorded())
}

func TestLimiterJournalsWindowState(t *testing.T) {
	journal := &memoryJournal{}
	limiter, timeline := newTestLimiter(5, time.Second)
	limiter.Journal = journal

	limiter.Acquire(context.Background())
	timeline.now = timeline.now.Add(time.Second)
	limiter.Acquire(context.Background())

	state := journal.states["test"]
	require.NotNil(t, state)
	require.Equal(t, 2, state.RequestCount)
	require.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), state.WindowStart)

	limiter.Reset(context.Background())
	state = journal.states["test"]
	require.Equal(t, 0, state.RequestCount)
	require.NotNil(t, state.LastQuotaAt)
}

func TestLimiterNilIsInert(t *testing.T) {
	var limiter *Limiter
	limiter.Acquire(context.Background())
	limiter.Reset(context.Background())
	require.Equal(t, 0, limiter.Recorded())
}
