package scheduler

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floodline/waterlog-monitor/internal/domain"
)

type countingRefresher struct {
	calls chan string
}

func (r *countingRefresher) Refresh(_ context.Context, trigger string) (*domain.Snapshot, bool) {
	r.calls <- trigger
	return &domain.Snapshot{}, true
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWaitFor(t *testing.T) {
	sched := New(nil, clockwork.NewFakeClock(), discardLogger(), 5*time.Minute, 15*time.Minute)

	tests := []struct {
		hour int
		want time.Duration
	}{
		{0, 15 * time.Minute},
		{2, 15 * time.Minute},
		{13, 15 * time.Minute},
		{14, 5 * time.Minute},
		{16, 5 * time.Minute},
		{20, 5 * time.Minute},
		{21, 15 * time.Minute},
		{23, 15 * time.Minute},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sched.WaitFor(tt.hour), "hour %d", tt.hour)
	}
}

func TestRun_RefreshesImmediatelyThenOnCadence(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, time.July, 10, 15, 0, 0, 0, time.UTC))
	refresher := &countingRefresher{calls: make(chan string, 8)}
	sched := New(refresher, clock, discardLogger(), 5*time.Minute, 15*time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()

	assert.Equal(t, "scheduled", waitForCall(t, refresher.calls))

	// Peak hour: the next refresh comes after the short interval.
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(5 * time.Minute)
	waitForCall(t, refresher.calls)

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(5 * time.Minute)
	waitForCall(t, refresher.calls)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop on context cancel")
	}
}

func TestRun_UsesOffPeakWaitAtNight(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, time.July, 10, 2, 0, 0, 0, time.UTC))
	refresher := &countingRefresher{calls: make(chan string, 8)}
	sched := New(refresher, clock, discardLogger(), 5*time.Minute, 15*time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sched.Run(ctx)

	waitForCall(t, refresher.calls)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	// The peak interval alone must not fire a night-time refresh.
	clock.Advance(5 * time.Minute)
	select {
	case trigger := <-refresher.calls:
		t.Fatalf("unexpected refresh %q before off-peak interval elapsed", trigger)
	case <-time.After(50 * time.Millisecond):
	}

	clock.Advance(10 * time.Minute)
	waitForCall(t, refresher.calls)
}

func waitForCall(t *testing.T, calls chan string) string {
	t.Helper()
	select {
	case trigger := <-calls:
		return trigger
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for refresh")
		return ""
	}
}
