// Package models contains data structures used throughout the application
package models

import "time"

// Treatment represents a care-portal entry from Nightscout (insulin, carbs,
// notes). The numeric fields arrive as either JSON numbers or strings
// depending on how the entry was logged, so they are kept as FlexibleString
// and parsed lazily.
type Treatment struct {
	ID        string         `json:"_id"`
	EventType string         `json:"eventType"`
	CreatedAt string         `json:"created_at"` // ISO-8601 timestamp
	Notes     string         `json:"notes"`
	Carbs     FlexibleString `json:"carbs"`   // Grams of carbohydrates
	Insulin   FlexibleString `json:"insulin"` // Units of insulin actually given
	Glucose   FlexibleString `json:"glucose"` // Manual glucose check, if recorded
	EnteredBy string         `json:"enteredBy"`
}

// Time parses the treatment's created_at. Treatments whose timestamp cannot
// be parsed are skipped by the report pipeline.
func (t *Treatment) Time() (time.Time, error) {
	return time.Parse(time.RFC3339, t.CreatedAt)
}
