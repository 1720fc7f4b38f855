package domain

// Zone is a catalogued urban area with fixed topography attributes.
// Zones are immutable after catalog construction.
type Zone struct {
	Name          string
	Elevation     float64 // metres above sea level
	DrainageScore int     // 0–10, higher = better drainage
	Lat           float64
	Lon           float64
	Incidents     []string // ISO dates of recorded waterlogging, oldest first
}

// LastIncident returns the most recent incident date, or "" when none are recorded.
func (z Zone) LastIncident() string {
	if len(z.Incidents) == 0 {
		return ""
	}
	return z.Incidents[len(z.Incidents)-1]
}

// Catalog is a read-only collection of zones with stable iteration order.
type Catalog struct {
	zones  []Zone
	byName map[string]int
}

// NewCatalog builds a catalog from the given zones. Iteration order follows
// the input slice; later duplicates by name overwrite earlier ones.
func NewCatalog(zones []Zone) *Catalog {
	c := &Catalog{
		zones:  make([]Zone, len(zones)),
		byName: make(map[string]int, len(zones)),
	}
	copy(c.zones, zones)
	for i := range c.zones {
		c.byName[c.zones[i].Name] = i
	}
	return c
}

// Lookup returns the zone with the given name.
func (c *Catalog) Lookup(name string) (Zone, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Zone{}, false
	}
	return c.zones[i], true
}

// Zones returns all zones in catalog order.
func (c *Catalog) Zones() []Zone {
	return c.zones
}

// Len returns the number of catalogued zones.
func (c *Catalog) Len() int {
	return len(c.zones)
}

// DrainageStatus converts a drainage score to display text.
func DrainageStatus(score int) string {
	switch {
	case score >= 7:
		return "Excellent"
	case score >= 5:
		return "Good"
	case score >= 3:
		return "Moderate"
	default:
		return "Weak"
	}
}
