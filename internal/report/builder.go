package report

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mrcode/nightscout-report/internal/models"
)

const placeholder = "-"

// BuildReport runs the full pipeline over one day's readings and
// treatments and returns the displayable report. loc is used only for
// formatting times at the presentation boundary; every comparison and
// aggregation happens on absolute instants. The report is a pure function
// of its inputs.
func BuildReport(entries []models.GlucoseEntry, treatments []models.Treatment, loc *time.Location) *models.DailyReport {
	sortedEntries := make([]models.GlucoseEntry, len(entries))
	copy(sortedEntries, entries)
	sort.SliceStable(sortedEntries, func(i, j int) bool {
		return sortedEntries[i].DateStr < sortedEntries[j].DateStr
	})

	sortedTreatments := make([]models.Treatment, len(treatments))
	copy(sortedTreatments, treatments)
	sort.SliceStable(sortedTreatments, func(i, j int) bool {
		return sortedTreatments[i].CreatedAt < sortedTreatments[j].CreatedAt
	})

	rep := &models.DailyReport{
		ChartTimes: []string{},
		ChartBGs:   []int{},
		TableData:  []models.ReportRow{},
	}

	for i := range sortedEntries {
		e := &sortedEntries[i]
		et, err := e.Time()
		if err != nil || e.SGV == nil {
			continue
		}
		rep.ChartTimes = append(rep.ChartTimes, et.In(loc).Format("15:04"))
		rep.ChartBGs = append(rep.ChartBGs, *e.SGV)
	}

	agg := NewAggregator()
	for i := range sortedTreatments {
		row, ok := buildRow(&sortedTreatments[i], sortedEntries, agg, loc)
		if !ok {
			continue
		}
		rep.TableData = append(rep.TableData, row)
	}

	rep.DailyStats = agg.Finalize(entries)
	return rep
}

// buildRow produces one table row. A treatment whose timestamp cannot be
// parsed yields no row and touches no totals; the report is best effort
// per row.
func buildRow(t *models.Treatment, entries []models.GlucoseEntry, agg *Aggregator, loc *time.Location) (models.ReportRow, bool) {
	tt, err := t.Time()
	if err != nil {
		return models.ReportRow{}, false
	}

	parsed := ParseNotes(t.Notes)
	agg.Add(t, parsed)

	bg := FormatBG(NearestEntry(entries, tt), t.Glucose)

	return models.ReportRow{
		Time:      tt.In(loc).Format("15:04"),
		BG:        orDash(bg),
		CIR:       dashFloat(parsed.Ratio),
		Carbs:     dashCarbs(t.Carbs),
		Predicted: dashFloat(parsed.PredictedInsulin),
		Actual:    orDash(t.Insulin.String()),
		Type:      orDash(string(parsed.InsulinType)),
		Food:      orDash(strings.Join(parsed.Foods, ", ")),
	}, true
}

func orDash(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}

// dashFloat renders an optional float; absent and zero both collapse to
// the placeholder, matching the display convention of the row.
func dashFloat(v *float64) string {
	if v == nil || *v == 0 {
		return placeholder
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func dashCarbs(carbs models.FlexibleString) string {
	if carbs.IsEmpty() {
		return placeholder
	}
	return carbs.String() + "g"
}
