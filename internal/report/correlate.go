package report

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/mrcode/nightscout-report/internal/models"
)

// matchTolerance is the maximum distance between a treatment and the
// reading attached to it. Readings further away say nothing useful about
// the treatment.
const matchTolerance = 900 * time.Second

// NearestEntry returns the reading closest in time to at, or nil when no
// reading falls within the tolerance window. Entries with unparseable
// timestamps are ignored. Distances are measured between absolute
// instants, so the zone a timestamp was recorded in does not matter.
func NearestEntry(entries []models.GlucoseEntry, at time.Time) *models.GlucoseEntry {
	var best *models.GlucoseEntry
	var bestDiff time.Duration

	for i := range entries {
		et, err := entries[i].Time()
		if err != nil {
			continue
		}
		diff := et.Sub(at)
		if diff < 0 {
			diff = -diff
		}
		if best == nil || diff < bestDiff {
			best = &entries[i]
			bestDiff = diff
		}
	}

	if best == nil || bestDiff >= matchTolerance {
		return nil
	}
	return best
}

// FormatBG builds the glucose display string for one treatment: the
// correlated CGM value with optional delta and trend arrow, the manual
// check, or both joined with " / ". An empty result means neither source
// had a value.
func FormatBG(entry *models.GlucoseEntry, measured models.FlexibleString) string {
	var display string

	if entry != nil && entry.HasValue() {
		display = strconv.Itoa(*entry.SGV)
		if entry.Delta != nil && *entry.Delta != 0 {
			sign := ""
			if *entry.Delta > 0 {
				sign = "+"
			}
			display += fmt.Sprintf(" (%s%d)", sign, int(math.Round(*entry.Delta)))
		}
		if arrow := entry.TrendArrow(); arrow != "" {
			display += " " + arrow
		}
	}

	if !measured.IsEmpty() {
		if display != "" {
			display += " / measured:" + measured.String()
		} else {
			display = "measured:" + measured.String()
		}
	}

	return display
}
