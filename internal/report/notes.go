// Package report implements the daily report pipeline: note parsing,
// reading correlation, statistics aggregation, and report assembly. The
// package is pure: one invocation takes a day's readings and treatments and
// computes a report, with no retained state and no I/O.
package report

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mrcode/nightscout-report/internal/models"
)

// Note grammar literals. The basal prefixes are the two spellings used in
// the care portal and match case-sensitively; the food markers are the
// canonical items the parser synthesizes.
const (
	basalPrefixLatin = "Tore "
	basalPrefixKana  = "トレ "

	// FoodBasal marks a treatment as a basal insulin record.
	FoodBasal = "basal insulin"
	// FoodSnackTablet marks a glucose tablet taken against a low.
	FoodSnackTablet = "glucose snack"
	// FoodSnack is the synthetic marker the auto-snack rule prepends.
	FoodSnack = "snack"
)

// ParseNotes applies the note grammar to one free-text note field. The
// first non-empty line decides the record kind; any numeric parse failure
// leaves the corresponding field absent. Parsing never fails: in the worst
// case the entire text becomes food items.
func ParseNotes(notes string) *models.ParsedNote {
	parsed := &models.ParsedNote{}

	lines := splitLines(notes)
	if len(lines) == 0 {
		return parsed
	}

	first := lines[0]
	rest := lines[1:]

	switch {
	case strings.HasPrefix(first, basalPrefixLatin) || strings.HasPrefix(first, basalPrefixKana):
		// Basal record: "Tore <units>" then food lines
		parsed.Foods = append(parsed.Foods, FoodBasal)
		if parts := strings.Fields(first); len(parts) >= 2 {
			parsed.BasalAmount = parseFloat(parts[1])
		}
		parsed.Foods = append(parsed.Foods, rest...)

	case strings.EqualFold(first, "B"):
		// Glucose tablet against a low
		parsed.Foods = append(parsed.Foods, FoodSnackTablet)
		parsed.Foods = append(parsed.Foods, rest...)

	case strings.EqualFold(first, "N") || strings.EqualFold(first, "F"):
		parsed.InsulinType = models.InsulinType(strings.ToUpper(first))
		parsed.Foods = append(parsed.Foods, rest...)

	default:
		parseRatioLine(parsed, first, rest)
	}

	return parsed
}

// parseRatioLine handles the fallback grammar: "<ratio> <insulin><N|F>",
// e.g. "300 4.5N" or "cir 250 3". A first token that is not numeric
// demotes the whole note to plain food items.
func parseRatioLine(parsed *models.ParsedNote, first string, rest []string) {
	stripped := strings.TrimSpace(stripFold(first, "cir"))
	parts := strings.Fields(stripped)

	if len(parts) == 0 || parseFloat(parts[0]) == nil {
		parsed.Foods = append(parsed.Foods, first)
		parsed.Foods = append(parsed.Foods, rest...)
		return
	}

	parsed.Ratio = parseFloat(parts[0])

	if len(parts) >= 2 {
		token := parts[1]
		last, size := utf8.DecodeLastRuneInString(token)
		if upper := unicode.ToUpper(last); upper == 'N' || upper == 'F' {
			parsed.InsulinType = models.InsulinType(string(upper))
			token = token[:len(token)-size]
		}
		parsed.PredictedInsulin = parseFloat(token)
	}

	parsed.Foods = append(parsed.Foods, rest...)
}

// splitLines returns the non-empty trimmed lines of a note.
func splitLines(notes string) []string {
	var lines []string
	for _, line := range strings.Split(notes, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// parseFloat returns nil when s is not a number; a failed parse is data,
// not an error.
func parseFloat(s string) *float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// stripFold removes every case-insensitive occurrence of sub from s.
func stripFold(s, sub string) string {
	lower := strings.ToLower(s)
	sub = strings.ToLower(sub)
	var b strings.Builder
	for {
		i := strings.Index(lower, sub)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		s = s[i+len(sub):]
		lower = lower[i+len(sub):]
	}
}
