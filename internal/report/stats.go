package report

import (
	"math"
	"strconv"
	"strings"

	"github.com/mrcode/nightscout-report/internal/models"
)

// Aggregator accumulates insulin and carb totals across a day's
// treatments. One Aggregator serves exactly one pipeline run and is
// discarded with the report.
type Aggregator struct {
	totalInsulin float64
	basalInsulin float64
	totalCarbs   float64
}

// NewAggregator returns an empty accumulator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Add folds one treatment into the running totals. It also applies the
// auto-snack rule: a carb entry of 1-3 grams is treated as a glucose snack,
// and unless the note already says so a synthetic marker is prepended to
// the food list. This is the only mutation a ParsedNote sees after
// parsing, and it happens at most once per treatment.
//
// A treatment counts as exactly one of basal or bolus, never both: a basal
// record with an amount feeds basalInsulin, anything else with parseable
// insulin units feeds totalInsulin.
func (a *Aggregator) Add(t *models.Treatment, parsed *models.ParsedNote) {
	if carbs, ok := t.Carbs.Float(); ok {
		a.totalCarbs += carbs
		if carbs >= 1 && carbs <= 3 && !hasSnackMarker(parsed.Foods) {
			parsed.Foods = append([]string{FoodSnack}, parsed.Foods...)
		}
	}

	if containsFood(parsed.Foods, FoodBasal) && parsed.BasalAmount != nil {
		a.basalInsulin += *parsed.BasalAmount
	} else if units, ok := t.Insulin.Float(); ok {
		a.totalInsulin += units
	}
}

// Finalize computes the derived statistics. The mean is taken over every
// reading that carries a value; a day without valid readings averages to 0.
func (a *Aggregator) Finalize(entries []models.GlucoseEntry) models.DailyStats {
	stats := models.DailyStats{
		TotalInsulin: round2(a.totalInsulin),
		BasalInsulin: round2(a.basalInsulin),
		TotalCarbs:   a.totalCarbs,
		TCIR:         "-",
	}

	if a.totalInsulin > 0 {
		stats.TCIR = strconv.FormatFloat(a.totalCarbs/a.totalInsulin, 'f', 1, 64)
	}

	var sum, n int
	for i := range entries {
		if entries[i].SGV != nil {
			sum += *entries[i].SGV
			n++
		}
	}
	if n > 0 {
		stats.AvgBG = int(math.Round(float64(sum) / float64(n)))
	}

	return stats
}

// hasSnackMarker reports whether any food item already signals a snack,
// in either notation the care portal uses.
func hasSnackMarker(foods []string) bool {
	for _, f := range foods {
		if strings.Contains(f, FoodSnack) || strings.Contains(f, "補食") {
			return true
		}
	}
	return false
}

func containsFood(foods []string, marker string) bool {
	for _, f := range foods {
		if f == marker {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
