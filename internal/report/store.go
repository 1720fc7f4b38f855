// Package report owns the user-report lifecycle: creation with geocoding,
// recency filtering, verification, and persistence.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/floodline/waterlog-monitor/internal/domain"
	"github.com/floodline/waterlog-monitor/internal/observability"
)

// ErrLocationRequired rejects report submissions without a location.
var ErrLocationRequired = errors.New("location is required")

// City-centre fallback for failed geocoding: New Delhi, ±0.05° jitter so
// stacked fallback reports don't render as a single point.
const (
	fallbackLat    = 28.6139
	fallbackLon    = 77.2090
	fallbackJitter = 0.05
)

// Persister stores the report log durably.
type Persister interface {
	SaveReport(ctx context.Context, r domain.UserReport) error
	LoadReports(ctx context.Context) ([]domain.UserReport, error)
}

// Store manages the mutable report collection. All mutations serialize on
// one mutex; reads return copies so callers never observe the log
// mid-change.
type Store struct {
	geocoder  domain.Geocoder // nil disables geocoding entirely
	persister Persister
	timeout   time.Duration
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics

	mu      sync.Mutex
	reports []domain.UserReport
	nextID  int64
	rng     *rand.Rand
}

// NewStore creates a report store. The seed fixes the fallback coordinate
// jitter for tests.
func NewStore(geocoder domain.Geocoder, persister Persister, timeout time.Duration,
	clock clockwork.Clock, seed int64, logger *slog.Logger, metrics *observability.Metrics) *Store {
	return &Store{
		geocoder:  geocoder,
		persister: persister,
		timeout:   timeout,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
		nextID:    1,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// Seed loads persisted reports into memory. The ID counter resumes past
// the highest persisted ID, so IDs stay unique across restarts even if
// rows were ever deleted.
func (s *Store) Seed(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	reports, err := s.persister.LoadReports(ctx)
	if err != nil {
		return fmt.Errorf("seed report log: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = reports
	for _, r := range reports {
		if r.ReportID >= s.nextID {
			s.nextID = r.ReportID + 1
		}
	}
	return nil
}

// AddReport geocodes the location and appends a new active report. On any
// geocoding failure the city-centre fallback engages and the address is
// marked approximate; submission never fails on a provider problem.
func (s *Store) AddReport(ctx context.Context, location, severity, description string) (domain.UserReport, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return domain.UserReport{}, ErrLocationRequired
	}
	if severity == "" {
		severity = "Medium"
	}

	coords := s.locate(ctx, location)

	s.mu.Lock()
	defer s.mu.Unlock()

	r := domain.UserReport{
		ReportID:    s.nextID,
		Location:    location,
		Severity:    severity,
		Description: description,
		Latitude:    coords.Lat,
		Longitude:   coords.Lon,
		Address:     coords.Address,
		ReportedAt:  s.clock.Now(),
		Status:      domain.ReportStatusActive,
	}
	s.nextID++
	s.reports = append(s.reports, r)
	s.metrics.ReportsSubmitted.Inc()

	s.persist(ctx, r)
	return r, nil
}

// ActiveReports returns reports within the recency window that are still
// active. Verified reports leave this view even when recent.
func (s *Store) ActiveReports(window time.Duration) []domain.UserReport {
	cutoff := s.clock.Now().Add(-window)

	s.mu.Lock()
	defer s.mu.Unlock()

	var active []domain.UserReport
	for _, r := range s.reports {
		if r.Status == domain.ReportStatusActive && !r.ReportedAt.Before(cutoff) {
			active = append(active, r)
		}
	}
	return active
}

// VerifyReport sets the verification flag. Verifying moves the report to
// the verified status, removing it from the active surface. Returns
// domain.ErrReportNotFound for unknown IDs.
func (s *Store) VerifyReport(ctx context.Context, id int64, verified bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.reports {
		if s.reports[i].ReportID != id {
			continue
		}
		s.reports[i].Verified = verified
		if verified {
			s.reports[i].Status = domain.ReportStatusVerified
		}
		s.metrics.ReportsVerified.Inc()
		s.persist(ctx, s.reports[i])
		return nil
	}
	return fmt.Errorf("verify report %d: %w", id, domain.ErrReportNotFound)
}

// Geocode resolves a free-text location without creating a report. Used by
// the on-demand prediction endpoint. Returns a zero result on miss.
func (s *Store) Geocode(ctx context.Context, location string) (domain.GeocodeResult, error) {
	if s.geocoder == nil {
		return domain.GeocodeResult{}, nil
	}
	gctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.geocoder.Resolve(gctx, location)
}

// locate geocodes with a bounded timeout, falling back to jittered
// city-centre coordinates.
func (s *Store) locate(ctx context.Context, location string) domain.GeocodeResult {
	if s.geocoder != nil {
		gctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		result, err := s.geocoder.Resolve(gctx, location)
		if err == nil && result.Address != "" {
			s.metrics.GeocodeRequests.WithLabelValues("resolved").Inc()
			return result
		}
		if err != nil {
			s.logger.Warn("geocoding failed, using fallback", "location", location, "error", err)
		}
	}

	s.metrics.GeocodeRequests.WithLabelValues("fallback").Inc()

	s.mu.Lock()
	latJitter := s.rng.Float64()*2*fallbackJitter - fallbackJitter
	lonJitter := s.rng.Float64()*2*fallbackJitter - fallbackJitter
	s.mu.Unlock()

	return domain.GeocodeResult{
		Lat:     fallbackLat + latJitter,
		Lon:     fallbackLon + lonJitter,
		Address: fmt.Sprintf("%s, Delhi (approx)", location),
	}
}

// persist writes one report row. Failures are logged, not returned; the
// in-memory log stays authoritative for the running process.
func (s *Store) persist(ctx context.Context, r domain.UserReport) {
	if s.persister == nil {
		return
	}
	if err := s.persister.SaveReport(ctx, r); err != nil {
		s.logger.Error("persist report failed", "report_id", r.ReportID, "error", err)
		s.metrics.PersistErrors.Inc()
	}
}
