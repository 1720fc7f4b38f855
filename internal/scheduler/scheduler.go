// Package scheduler drives periodic snapshot refreshes, polling faster
// during afternoon peak-rain hours.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/floodline/waterlog-monitor/internal/domain"
)

// Delhi monsoon downpours cluster in the afternoon and early evening.
const (
	peakStartHour = 14
	peakEndHour   = 20
)

// Refresher recomputes and publishes a snapshot.
type Refresher interface {
	Refresh(ctx context.Context, trigger string) (*domain.Snapshot, bool)
}

// Scheduler triggers refreshes on an hour-of-day dependent cadence.
type Scheduler struct {
	refresher   Refresher
	clock       clockwork.Clock
	logger      *slog.Logger
	peakWait    time.Duration
	offPeakWait time.Duration
}

// New creates a scheduler with the given peak and off-peak intervals.
func New(refresher Refresher, clock clockwork.Clock, logger *slog.Logger,
	peakWait, offPeakWait time.Duration) *Scheduler {
	return &Scheduler{
		refresher:   refresher,
		clock:       clock,
		logger:      logger,
		peakWait:    peakWait,
		offPeakWait: offPeakWait,
	}
}

// WaitFor returns the pause before the next refresh for the given hour of
// day.
func (s *Scheduler) WaitFor(hour int) time.Duration {
	if hour >= peakStartHour && hour <= peakEndHour {
		return s.peakWait
	}
	return s.offPeakWait
}

// Run refreshes immediately, then loops until the context is cancelled.
// The wait is re-evaluated each cycle so the cadence tightens as the clock
// crosses into peak hours.
func (s *Scheduler) Run(ctx context.Context) {
	s.refresher.Refresh(ctx, "scheduled")

	for {
		wait := s.WaitFor(s.clock.Now().Hour())
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-s.clock.After(wait):
			s.refresher.Refresh(ctx, "scheduled")
		}
	}
}
