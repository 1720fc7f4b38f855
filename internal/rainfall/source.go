// Package rainfall supplies current rainfall readings from an external
// weather provider with a seasonal simulation fallback. Provider failures
// never surface to callers; the fallback always produces a reading.
package rainfall

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/floodline/waterlog-monitor/internal/domain"
	"github.com/floodline/waterlog-monitor/internal/observability"
)

// Provider fetches a current weather observation from an external service.
// Implementations must bound their own request time.
type Provider interface {
	Fetch(ctx context.Context) (domain.RainfallReading, error)
}

// monthlyAvgMM holds Delhi's IMD monthly rainfall averages in millimetres.
var monthlyAvgMM = map[time.Month]float64{
	time.January:   20,
	time.February:  15,
	time.March:     15,
	time.April:     10,
	time.May:       30,
	time.June:      80,  // monsoon onset
	time.July:      200, // peak monsoon
	time.August:    220, // peak monsoon
	time.September: 120,
	time.October:   30,
	time.November:  5,
	time.December:  10,
}

// Source produces rainfall readings, preferring the external provider and
// falling back to seasonal simulation. Safe for concurrent use.
type Source struct {
	provider Provider // nil disables the external call
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSource creates a rainfall source. Pass a nil provider to always
// simulate. The seed fixes the simulation jitter for tests.
func NewSource(provider Provider, clock clockwork.Clock, seed int64, logger *slog.Logger, metrics *observability.Metrics) *Source {
	return &Source{
		provider: provider,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Current returns a fresh rainfall reading. The provider is tried first;
// on any error the seasonal simulation answers instead.
func (s *Source) Current(ctx context.Context) domain.RainfallReading {
	if s.provider != nil {
		reading, err := s.provider.Fetch(ctx)
		if err == nil {
			reading.Timestamp = s.clock.Now()
			reading.Source = domain.SourceProvider
			s.metrics.RainfallReadings.WithLabelValues(domain.SourceProvider).Inc()
			return reading
		}
		s.logger.Warn("weather provider failed, simulating", "error", err)
	}

	reading := s.simulate()
	s.metrics.RainfallReadings.WithLabelValues(domain.SourceSimulated).Inc()
	return reading
}

// simulate generates a reading from the monthly average, ±30% jitter, and a
// time-of-day multiplier: afternoon storms are more likely (1.5×), late
// night is quiet (0.5×).
func (s *Source) simulate() domain.RainfallReading {
	now := s.clock.Now()

	base, ok := monthlyAvgMM[now.Month()]
	if !ok {
		base = 30
	}

	s.mu.Lock()
	jitter := 1 + (s.rng.Float64()*0.6 - 0.3)
	s.mu.Unlock()

	mm := base * jitter

	hour := now.Hour()
	switch {
	case hour >= 14 && hour <= 18:
		mm *= 1.5
	case hour >= 22 || hour <= 6:
		mm *= 0.5
	}

	humidity := 45
	if mm > 0 {
		humidity = 65
	}

	return domain.RainfallReading{
		RainfallMM: math.Round(mm*10) / 10,
		Humidity:   humidity,
		Pressure:   1013,
		Timestamp:  now,
		Source:     domain.SourceSimulated,
	}
}
