// Package storage persists user reports and snapshot fragments to SQLite.
// Writes are best-effort from the caller's point of view: the in-memory
// state stays authoritative for the running process, and the database
// exists to survive restarts.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/floodline/waterlog-monitor/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS reports (
	report_id   INTEGER PRIMARY KEY,
	location    TEXT NOT NULL,
	severity    TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	latitude    REAL NOT NULL,
	longitude   REAL NOT NULL,
	address     TEXT NOT NULL,
	reported_at TEXT NOT NULL,
	verified    INTEGER NOT NULL DEFAULT 0,
	status      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshots (
	generation_id TEXT PRIMARY KEY,
	generated_at  TEXT NOT NULL,
	rainfall_mm   REAL NOT NULL,
	source        TEXT NOT NULL,
	hotspots      TEXT NOT NULL
);
`

// SnapshotFragment is the durable subset of a snapshot: enough to seed a
// dashboard after restart, not the full aggregate state.
type SnapshotFragment struct {
	GenerationID string
	GeneratedAt  time.Time
	RainfallMM   float64
	Source       string
	Hotspots     []domain.Hotspot
}

// Store is a SQLite-backed durable store.
type Store struct {
	db *sql.DB
}

// Open creates the database file (and parent directory) if needed and
// initializes the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveReport upserts one report row. Called on creation and on every
// verification change so the durable log always matches memory.
func (s *Store) SaveReport(ctx context.Context, r domain.UserReport) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reports (report_id, location, severity, description, latitude, longitude, address, reported_at, verified, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(report_id) DO UPDATE SET verified = excluded.verified, status = excluded.status`,
		r.ReportID, r.Location, r.Severity, r.Description, r.Latitude, r.Longitude,
		r.Address, r.ReportedAt.UTC().Format(time.RFC3339Nano), boolToInt(r.Verified), r.Status,
	)
	if err != nil {
		return fmt.Errorf("save report %d: %w", r.ReportID, err)
	}
	return nil
}

// LoadReports returns all persisted reports ordered by ID. Used once at
// startup to seed the in-memory report log.
func (s *Store) LoadReports(ctx context.Context) ([]domain.UserReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT report_id, location, severity, description, latitude, longitude, address, reported_at, verified, status
		FROM reports ORDER BY report_id`)
	if err != nil {
		return nil, fmt.Errorf("load reports: %w", err)
	}
	defer rows.Close()

	var reports []domain.UserReport
	for rows.Next() {
		var r domain.UserReport
		var reportedAt string
		var verified int
		if err := rows.Scan(&r.ReportID, &r.Location, &r.Severity, &r.Description,
			&r.Latitude, &r.Longitude, &r.Address, &reportedAt, &verified, &r.Status); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, reportedAt)
		if err != nil {
			return nil, fmt.Errorf("report %d: parse reported_at %q: %w", r.ReportID, reportedAt, err)
		}
		r.ReportedAt = ts
		r.Verified = verified != 0
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// SaveSnapshot writes a snapshot fragment. Hotspots are stored as JSON;
// the fragment is keyed by generation ID so replays are idempotent.
func (s *Store) SaveSnapshot(ctx context.Context, snap *domain.Snapshot) error {
	hotspots, err := json.Marshal(snap.Hotspots)
	if err != nil {
		return fmt.Errorf("marshal hotspots: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (generation_id, generated_at, rainfall_mm, source, hotspots)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(generation_id) DO NOTHING`,
		snap.GenerationID, snap.GeneratedAt.UTC().Format(time.RFC3339Nano),
		snap.Rainfall.RainfallMM, snap.Rainfall.Source, string(hotspots),
	)
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", snap.GenerationID, err)
	}
	return nil
}

// LastSnapshot returns the most recently persisted fragment, or nil when
// none exists.
func (s *Store) LastSnapshot(ctx context.Context) (*SnapshotFragment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT generation_id, generated_at, rainfall_mm, source, hotspots
		FROM snapshots ORDER BY generated_at DESC LIMIT 1`)

	var frag SnapshotFragment
	var generatedAt, hotspots string
	err := row.Scan(&frag.GenerationID, &generatedAt, &frag.RainfallMM, &frag.Source, &hotspots)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load last snapshot: %w", err)
	}

	frag.GeneratedAt, err = time.Parse(time.RFC3339Nano, generatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse generated_at %q: %w", generatedAt, err)
	}
	if err := json.Unmarshal([]byte(hotspots), &frag.Hotspots); err != nil {
		return nil, fmt.Errorf("unmarshal hotspots: %w", err)
	}
	return &frag, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
