package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floodline/waterlog-monitor/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "waterlog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestReports_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	reported := time.Date(2024, time.July, 10, 15, 30, 0, 0, time.UTC)
	r1 := domain.UserReport{
		ReportID: 1, Location: "Lajpat Nagar", Severity: "High",
		Description: "knee-deep water near the market",
		Latitude:    28.5677, Longitude: 77.2433,
		Address: "Lajpat Nagar, Delhi", ReportedAt: reported,
		Status: domain.ReportStatusActive,
	}
	r2 := domain.UserReport{
		ReportID: 2, Location: "ITO", Severity: "Medium",
		Latitude: 28.628, Longitude: 77.241,
		Address: "ITO, Delhi (approx)", ReportedAt: reported.Add(time.Hour),
		Status: domain.ReportStatusActive,
	}

	require.NoError(t, store.SaveReport(ctx, r1))
	require.NoError(t, store.SaveReport(ctx, r2))

	loaded, err := store.LoadReports(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	assert.Equal(t, int64(1), loaded[0].ReportID)
	assert.Equal(t, "Lajpat Nagar", loaded[0].Location)
	assert.Equal(t, "High", loaded[0].Severity)
	assert.Equal(t, "knee-deep water near the market", loaded[0].Description)
	assert.Equal(t, 28.5677, loaded[0].Latitude)
	assert.Equal(t, 77.2433, loaded[0].Longitude)
	assert.True(t, loaded[0].ReportedAt.Equal(reported))
	assert.False(t, loaded[0].Verified)
	assert.Equal(t, domain.ReportStatusActive, loaded[0].Status)

	assert.Equal(t, int64(2), loaded[1].ReportID)
	assert.Equal(t, "ITO, Delhi (approx)", loaded[1].Address)
	assert.True(t, loaded[1].ReportedAt.Equal(reported.Add(time.Hour)))
}

func TestSaveReport_UpsertsVerification(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	r := domain.UserReport{
		ReportID: 7, Location: "Minto Road", Severity: "High",
		Latitude: 28.633, Longitude: 77.23, Address: "Minto Road, Delhi",
		ReportedAt: time.Now().UTC().Truncate(time.Second),
		Status:     domain.ReportStatusActive,
	}
	require.NoError(t, store.SaveReport(ctx, r))

	r.Verified = true
	r.Status = domain.ReportStatusVerified
	require.NoError(t, store.SaveReport(ctx, r))

	loaded, err := store.LoadReports(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.True(t, loaded[0].Verified)
	assert.Equal(t, domain.ReportStatusVerified, loaded[0].Status)
}

func TestLoadReports_EmptyDatabase(t *testing.T) {
	store := newTestStore(t)

	loaded, err := store.LoadReports(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestSnapshots_LastWins(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, time.July, 10, 14, 0, 0, 0, time.UTC)
	older := &domain.Snapshot{
		GenerationID: "gen-1",
		GeneratedAt:  base,
		Rainfall:     domain.RainfallReading{RainfallMM: 30, Source: domain.SourceSimulated},
		Hotspots:     []domain.Hotspot{{ID: 1, WardName: "ITO", RiskLevel: domain.RiskMedium}},
	}
	newer := &domain.Snapshot{
		GenerationID: "gen-2",
		GeneratedAt:  base.Add(time.Hour),
		Rainfall:     domain.RainfallReading{RainfallMM: 85, Source: domain.SourceProvider},
		Hotspots: []domain.Hotspot{
			{ID: 1, WardName: "ITO", RiskLevel: domain.RiskHigh},
			{ID: 2, WardName: "Minto Road", RiskLevel: domain.RiskHigh},
		},
	}

	require.NoError(t, store.SaveSnapshot(ctx, older))
	require.NoError(t, store.SaveSnapshot(ctx, newer))

	frag, err := store.LastSnapshot(ctx)
	require.NoError(t, err)
	require.NotNil(t, frag)

	assert.Equal(t, "gen-2", frag.GenerationID)
	assert.Equal(t, 85.0, frag.RainfallMM)
	assert.Equal(t, domain.SourceProvider, frag.Source)
	require.Len(t, frag.Hotspots, 2)
	assert.Equal(t, "Minto Road", frag.Hotspots[1].WardName)
}

func TestLastSnapshot_Empty(t *testing.T) {
	store := newTestStore(t)

	frag, err := store.LastSnapshot(context.Background())
	require.NoError(t, err)
	assert.Nil(t, frag)
}

func TestSaveSnapshot_IdempotentByGeneration(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	snap := &domain.Snapshot{
		GenerationID: "gen-x",
		GeneratedAt:  time.Now().UTC(),
		Rainfall:     domain.RainfallReading{RainfallMM: 10},
	}
	require.NoError(t, store.SaveSnapshot(ctx, snap))
	require.NoError(t, store.SaveSnapshot(ctx, snap))
}
