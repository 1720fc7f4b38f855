package domain

import (
	"context"
	"errors"
	"time"
)

// Report status values. Verified reports leave the "active" surface.
const (
	ReportStatusActive   = "active"
	ReportStatusVerified = "verified"
)

// ErrReportNotFound is returned when a report ID does not exist.
var ErrReportNotFound = errors.New("report not found")

// UserReport is a citizen-submitted waterlogging sighting. Reports are
// append-only; only the verification fields mutate after creation.
type UserReport struct {
	ReportID    int64     `json:"report_id"`
	Location    string    `json:"location"`
	Severity    string    `json:"severity"`
	Description string    `json:"description,omitempty"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Address     string    `json:"address"`
	ReportedAt  time.Time `json:"reported_at"`
	Verified    bool      `json:"verified"`
	Status      string    `json:"status"`
}

// GeocodeResult contains location data returned by a geocoding provider.
// A zero result (empty Address) means the provider found no match.
type GeocodeResult struct {
	Lat     float64
	Lon     float64
	Address string
}

// Geocoder resolves a free-text location to coordinates.
type Geocoder interface {
	Resolve(ctx context.Context, query string) (GeocodeResult, error)
}
