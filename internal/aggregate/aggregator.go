// Package aggregate merges model predictions with live user reports into
// the single published snapshot.
package aggregate

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/floodline/waterlog-monitor/internal/domain"
	"github.com/floodline/waterlog-monitor/internal/observability"
)

const (
	maxComputedHotspots = 10
	topPredictions      = 5
	reportWindow        = 24 * time.Hour
)

// RainfallSource supplies the current rainfall reading. It never fails;
// fallback behaviour lives behind this interface.
type RainfallSource interface {
	Current(ctx context.Context) domain.RainfallReading
}

// ReportSource supplies the active user reports.
type ReportSource interface {
	ActiveReports(window time.Duration) []domain.UserReport
}

// SnapshotPersister writes snapshot fragments to durable storage.
type SnapshotPersister interface {
	SaveSnapshot(ctx context.Context, snap *domain.Snapshot) error
}

// AlertPublisher pushes a high-risk digest to an external channel.
type AlertPublisher interface {
	Publish(ctx context.Context, snap *domain.Snapshot) error
}

// Aggregator is the single writer of the current snapshot. Readers load
// the published pointer and never block the writer. While a refresh is in
// flight, later triggers are coalesced: they return the snapshot about to
// be replaced, since the in-flight refresh will shortly publish an equally
// fresh one.
type Aggregator struct {
	rainfall  RainfallSource
	model     *domain.Model
	reports   ReportSource
	persister SnapshotPersister // nil disables durable writes
	publisher AlertPublisher    // nil disables alert publishing
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics

	current  atomic.Pointer[domain.Snapshot]
	inFlight atomic.Bool
}

// New creates an aggregator. Persister and publisher may be nil.
func New(rainfall RainfallSource, model *domain.Model, reports ReportSource,
	persister SnapshotPersister, publisher AlertPublisher,
	clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Aggregator {
	return &Aggregator{
		rainfall:  rainfall,
		model:     model,
		reports:   reports,
		persister: persister,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
	}
}

// Current returns the latest published snapshot, or nil before the first
// refresh completes.
func (a *Aggregator) Current() *domain.Snapshot {
	return a.current.Load()
}

// CheckReadiness returns nil once a snapshot has been published.
func (a *Aggregator) CheckReadiness(_ context.Context) error {
	if a.current.Load() == nil {
		return errNotReady
	}
	return nil
}

// Refresh recomputes and publishes a new snapshot. The returned bool is
// false when the request was coalesced into an in-flight refresh, in which
// case the current snapshot is returned instead.
func (a *Aggregator) Refresh(ctx context.Context, trigger string) (*domain.Snapshot, bool) {
	if !a.inFlight.CompareAndSwap(false, true) {
		a.metrics.RefreshCoalesced.Inc()
		return a.current.Load(), false
	}
	defer a.inFlight.Store(false)

	start := time.Now()
	now := a.clock.Now()

	reading := a.rainfall.Current(ctx)
	predictions := a.model.PredictAll(reading.RainfallMM)
	active := a.reports.ActiveReports(reportWindow)

	computed := predictions
	if len(computed) > maxComputedHotspots {
		computed = computed[:maxComputedHotspots]
	}
	top := predictions
	if len(top) > topPredictions {
		top = top[:topPredictions]
	}

	hotspots := make([]domain.Hotspot, 0, len(computed)+len(active))
	for _, p := range computed {
		hotspots = append(hotspots, a.predictionHotspot(p, reading, now))
	}
	for _, r := range active {
		hotspots = append(hotspots, reportHotspot(r, reading))
	}
	for i := range hotspots {
		hotspots[i].ID = int64(i + 1)
	}

	snap := &domain.Snapshot{
		GenerationID: uuid.NewString(),
		Hotspots:     hotspots,
		Rainfall:     reading,
		Predictions:  top,
		Reports:      active,
		GeneratedAt:  now,
	}

	// Single atomic swap: readers see the old snapshot or this one, never
	// a partial view.
	a.current.Store(snap)

	highRisk := len(snap.HighRiskAreas())
	a.metrics.RefreshesTotal.WithLabelValues(trigger).Inc()
	a.metrics.RefreshDuration.Observe(time.Since(start).Seconds())
	a.metrics.HighRiskZones.Set(float64(highRisk))

	a.logger.Info("snapshot published",
		"generation", snap.GenerationID,
		"trigger", trigger,
		"rainfall_mm", reading.RainfallMM,
		"rainfall_source", reading.Source,
		"hotspots", len(hotspots),
		"high_risk", highRisk,
		"active_reports", len(active),
	)

	// Durable write only at the top of the hour, best-effort.
	if a.persister != nil && now.Minute() == 0 {
		if err := a.persister.SaveSnapshot(ctx, snap); err != nil {
			a.logger.Error("snapshot persist failed", "generation", snap.GenerationID, "error", err)
			a.metrics.PersistErrors.Inc()
		}
	}

	if a.publisher != nil && highRisk > 0 {
		if err := a.publisher.Publish(ctx, snap); err != nil {
			a.logger.Error("alert publish failed", "generation", snap.GenerationID, "error", err)
			a.metrics.AlertPublishErrors.Inc()
		} else {
			a.metrics.AlertsPublished.Inc()
		}
	}

	return snap, true
}

// predictionHotspot maps a ranked zone prediction into display form.
func (a *Aggregator) predictionHotspot(p domain.Prediction, reading domain.RainfallReading, now time.Time) domain.Hotspot {
	h := domain.Hotspot{
		WardName:          p.Area,
		WardCode:          wardCode(p.Area),
		RiskLevel:         p.RiskLevel,
		SeverityScore:     p.SeverityScore,
		LastIncident:      p.LastIncident,
		RainfallMM:        reading.RainfallMM,
		DrainageStatus:    "Unknown",
		PreparednessScore: p.PreparednessScore,
		Confidence:        p.Confidence,
		WillWaterlog:      p.WillWaterlog,
		LastUpdated:       now,
		DataSource:        domain.DataSourcePredictive,
	}
	if zone, ok := a.model.Catalog().Lookup(p.Area); ok {
		h.Latitude = zone.Lat
		h.Longitude = zone.Lon
		h.ElevationM = zone.Elevation
		h.DrainageStatus = domain.DrainageStatus(zone.DrainageScore)
	}
	return h
}

// reportHotspot maps a live user report into display form. A live report
// is always treated as an active waterlogging event: risk derives from the
// reporter's severity text, confidence is fixed, and the terrain fields
// take "unknown" placeholders.
func reportHotspot(r domain.UserReport, reading domain.RainfallReading) domain.Hotspot {
	level := domain.RiskMedium
	severity := 5
	if strings.Contains(r.Severity, "High") {
		level = domain.RiskHigh
		severity = 8
	}

	return domain.Hotspot{
		WardName:          r.Location,
		WardCode:          "UR", // user-reported
		Latitude:          r.Latitude,
		Longitude:         r.Longitude,
		RiskLevel:         level,
		SeverityScore:     severity,
		LastIncident:      r.ReportedAt.Format("2006-01-02"),
		RainfallMM:        reading.RainfallMM,
		DrainageStatus:    "Unknown",
		PreparednessScore: 3,
		Confidence:        70,
		WillWaterlog:      true,
		LastUpdated:       r.ReportedAt,
		DataSource:        domain.DataSourceUserReport,
		ReportID:          r.ReportID,
		Description:       r.Description,
	}
}

func wardCode(name string) string {
	upper := strings.ToUpper(name)
	if len(upper) < 2 {
		return upper
	}
	return upper[:2]
}

var errNotReady = notReadyError{}

type notReadyError struct{}

func (notReadyError) Error() string { return "no snapshot published yet" }
