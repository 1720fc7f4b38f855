package domain

import (
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
)

// RiskLevel is the coarse risk bucket derived from the risk score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Factor weights of the catalogued-zone risk model. They sum to 100, though
// the rainfall factor can contribute up to 2× its weight before the final
// clamp.
const (
	rainfallWeight   = 40.0
	elevationWeight  = 30.0
	drainageWeight   = 20.0
	historicalWeight = 10.0
)

// urbanKeywords are generic infrastructure nouns that mark an unknown area
// name as likely built-up (and therefore flood-prone).
var urbanKeywords = []string{"nagar", "road", "chowk", "bagh", "basti"}

// RiskFactors is the per-factor contribution breakdown of a risk score.
// Estimated is set for uncatalogued areas where no topography data exists.
type RiskFactors struct {
	Rainfall   float64 `json:"rainfall,omitempty"`
	Elevation  float64 `json:"elevation,omitempty"`
	Drainage   float64 `json:"drainage,omitempty"`
	Historical float64 `json:"historical,omitempty"`
	Estimated  bool    `json:"estimated,omitempty"`
}

// RiskAssessment is the model's output for one area at one rainfall level.
// It is computed on demand and never stored.
type RiskAssessment struct {
	RiskScore         float64     `json:"risk_score"`
	RiskLevel         RiskLevel   `json:"risk_level"`
	SeverityScore     int         `json:"severity_score"`
	Confidence        int         `json:"confidence"`
	WillWaterlog      bool        `json:"will_waterlog"`
	PreparednessScore int         `json:"preparedness_score"`
	Factors           RiskFactors `json:"factors"`
}

// Prediction pairs an assessment with its area name and most recent
// historical incident for ranked all-zones output.
type Prediction struct {
	Area string `json:"area"`
	RiskAssessment
	LastIncident string `json:"last_incident"`
}

// Model scores waterlogging risk from zone topography and rainfall.
// The catalog is read-only; the PRNG (used only for the per-bucket
// severity/confidence presentation jitter) is guarded by a mutex so Assess
// is safe for concurrent use.
type Model struct {
	catalog *Catalog

	mu  sync.Mutex
	rng *rand.Rand
}

// NewModel creates a risk model over the given catalog. The seed fixes the
// severity/confidence jitter; tests pass a constant for reproducible draws.
func NewModel(catalog *Catalog, seed int64) *Model {
	return &Model{
		catalog: catalog,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// Catalog returns the zone catalog the model scores against.
func (m *Model) Catalog() *Catalog {
	return m.catalog
}

// Assess scores an area at the given rainfall. Catalogued zones take the
// four-factor weighted path; unknown names route to the reduced-confidence
// estimate. It never fails; missing topography is not an error.
func (m *Model) Assess(area string, rainfallMM float64) RiskAssessment {
	zone, ok := m.catalog.Lookup(area)
	if !ok {
		return m.assessUnknown(area, rainfallMM)
	}
	return m.assessZone(zone, rainfallMM)
}

func (m *Model) assessZone(zone Zone, rainfallMM float64) RiskAssessment {
	rainFactor := math.Min(rainfallMM/50, 2.0) * rainfallWeight
	elevFactor := (220 - zone.Elevation) / 20 * elevationWeight
	drainFactor := float64(10-zone.DrainageScore) / 10 * drainageWeight
	histFactor := math.Min(float64(len(zone.Incidents))/5, 1.0) * historicalWeight

	score := math.Min(rainFactor+elevFactor+drainFactor+histFactor, 100)

	var level RiskLevel
	var severity, confidence int
	switch {
	case score >= 70:
		level = RiskHigh
		severity = m.draw(8, 10)
		confidence = m.draw(75, 90)
	case score >= 40:
		level = RiskMedium
		severity = m.draw(5, 7)
		confidence = m.draw(60, 75)
	default:
		level = RiskLow
		severity = m.draw(1, 4)
		confidence = m.draw(40, 60)
	}

	return RiskAssessment{
		RiskScore:         round1(score),
		RiskLevel:         level,
		SeverityScore:     severity,
		Confidence:        confidence,
		WillWaterlog:      score > 60 && rainfallMM > 20,
		PreparednessScore: preparedness(severity),
		Factors: RiskFactors{
			Rainfall:   round1(rainFactor),
			Elevation:  round1(elevFactor),
			Drainage:   round1(drainFactor),
			Historical: round1(histFactor),
		},
	}
}

// assessUnknown estimates risk for an area with no topography data. The
// thresholds here (60/30) are deliberately stricter than the catalogued
// path's, and confidence is pinned at 50.
func (m *Model) assessUnknown(area string, rainfallMM float64) RiskAssessment {
	score := math.Min(rainfallMM/2, 50)

	lower := strings.ToLower(area)
	for _, kw := range urbanKeywords {
		if strings.Contains(lower, kw) {
			score += 20
			break
		}
	}

	var level RiskLevel
	var severity int
	switch {
	case score >= 60:
		level = RiskHigh
		severity = m.draw(7, 9)
	case score >= 30:
		level = RiskMedium
		severity = m.draw(4, 6)
	default:
		level = RiskLow
		severity = m.draw(1, 3)
	}

	return RiskAssessment{
		RiskScore:         round1(score),
		RiskLevel:         level,
		SeverityScore:     severity,
		Confidence:        50,
		WillWaterlog:      score > 50,
		PreparednessScore: preparedness(severity),
		Factors:           RiskFactors{Estimated: true},
	}
}

// PredictAll assesses every catalogued zone at the given rainfall and
// returns the predictions sorted by risk score descending. The sort is
// stable, so ties keep catalog order. Length always equals the catalog size.
func (m *Model) PredictAll(rainfallMM float64) []Prediction {
	zones := m.catalog.Zones()
	predictions := make([]Prediction, 0, len(zones))
	for _, zone := range zones {
		predictions = append(predictions, Prediction{
			Area:           zone.Name,
			RiskAssessment: m.assessZone(zone, rainfallMM),
			LastIncident:   zone.LastIncident(),
		})
	}

	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].RiskScore > predictions[j].RiskScore
	})

	return predictions
}

// draw returns a uniform value in [lo, hi].
func (m *Model) draw(lo, hi int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return lo + m.rng.Intn(hi-lo+1)
}

func preparedness(severity int) int {
	if p := 10 - severity; p > 1 {
		return p
	}
	return 1
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
