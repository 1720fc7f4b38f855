package domain

import "time"

// Rainfall reading source tags.
const (
	SourceProvider  = "provider"
	SourceSimulated = "simulated"
)

// RainfallReading is a point-in-time rainfall measurement with auxiliary
// atmospheric fields. Produced fresh on every source call, never mutated.
type RainfallReading struct {
	RainfallMM float64   `json:"rainfall_mm"`
	Humidity   int       `json:"humidity"`
	Pressure   int       `json:"pressure"`
	Timestamp  time.Time `json:"timestamp"`
	Source     string    `json:"source"`
}

// Hotspot data source tags.
const (
	DataSourcePredictive = "predictive_engine"
	DataSourceUserReport = "user_report"
)

// Hotspot is a display-ready record unifying a computed zone prediction or
// a live user report.
type Hotspot struct {
	ID                int64     `json:"id"`
	WardName          string    `json:"ward_name"`
	WardCode          string    `json:"ward_code"`
	Latitude          float64   `json:"latitude"`
	Longitude         float64   `json:"longitude"`
	RiskLevel         RiskLevel `json:"risk_level"`
	SeverityScore     int       `json:"severity_score"`
	LastIncident      string    `json:"last_incident,omitempty"`
	RainfallMM        float64   `json:"rainfall_mm"`
	DrainageStatus    string    `json:"drainage_status"`
	PreparednessScore int       `json:"preparedness_score"`
	Confidence        int       `json:"prediction_confidence"`
	WillWaterlog      bool      `json:"will_waterlog"`
	LastUpdated       time.Time `json:"last_updated"`
	DataSource        string    `json:"data_source"`

	// Set for predictive entries only.
	ElevationM float64 `json:"elevation_m,omitempty"`

	// Set for user-report entries only.
	ReportID    int64  `json:"report_id,omitempty"`
	Description string `json:"description,omitempty"`
}

// Snapshot is the complete published aggregate state: ranked hotspots, the
// rainfall reading that produced them, the top raw predictions, and the
// active reports. A snapshot is immutable once constructed; the aggregator
// replaces the current one atomically and readers never see a partial view.
type Snapshot struct {
	GenerationID string          `json:"generation_id"`
	Hotspots     []Hotspot       `json:"hotspots"`
	Rainfall     RainfallReading `json:"rainfall"`
	Predictions  []Prediction    `json:"predictions"`
	Reports      []UserReport    `json:"user_reports"`
	GeneratedAt  time.Time       `json:"generated_at"`
}

// HighRiskAreas returns the ward names of all hotspots at High risk, in
// snapshot order.
func (s *Snapshot) HighRiskAreas() []string {
	var areas []string
	for _, h := range s.Hotspots {
		if h.RiskLevel == RiskHigh {
			areas = append(areas, h.WardName)
		}
	}
	return areas
}

// FindHotspot returns the hotspot with the given display ID.
func (s *Snapshot) FindHotspot(id int64) (Hotspot, bool) {
	for _, h := range s.Hotspots {
		if h.ID == id {
			return h, true
		}
	}
	return Hotspot{}, false
}
