// Package models contains data structures used throughout the application
package models

import "time"

// GlucoseEntry represents a single glucose reading from Nightscout.
// SGV and Delta are pointers because the feed omits them on non-sensor
// entries (calibrations, device status).
type GlucoseEntry struct {
	ID        string   `json:"_id"`
	SGV       *int     `json:"sgv"`        // Sensor glucose value in mg/dL
	DateStr   string   `json:"dateString"` // ISO-8601 timestamp, the canonical instant
	Direction string   `json:"direction"`  // Trend direction code
	Delta     *float64 `json:"delta"`      // Change from the previous reading
	Device    string   `json:"device"`
	Type      string   `json:"type"`
}

// Time parses the entry's dateString. Entries whose timestamp cannot be
// parsed are skipped by the report pipeline.
func (g *GlucoseEntry) Time() (time.Time, error) {
	return time.Parse(time.RFC3339, g.DateStr)
}

// HasValue reports whether the entry carries a usable sensor value.
func (g *GlucoseEntry) HasValue() bool {
	return g.SGV != nil && *g.SGV != 0
}

var trendArrows = map[string]string{
	"DoubleUp":          "⇈",
	"SingleUp":          "↑",
	"FortyFiveUp":       "↗",
	"Flat":              "→",
	"FortyFiveDown":     "↘",
	"SingleDown":        "↓",
	"DoubleDown":        "⇊",
	"NOT COMPUTABLE":    "?",
	"RATE OUT OF RANGE": "?",
}

// TrendArrow returns the Unicode arrow for the entry's direction code.
// Unknown or absent codes yield an empty string.
func (g *GlucoseEntry) TrendArrow() string {
	return trendArrows[g.Direction]
}
