package models

import (
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// FlexibleString is a field that may arrive from the feed as a JSON string,
// a JSON number, or null. It normalizes all three to text; numeric
// interpretation happens at the point of use via Float.
type FlexibleString string

// UnmarshalJSON accepts string, number, and null tokens.
func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	token := strings.TrimSpace(string(data))
	if token == "" || token == "null" {
		*f = ""
		return nil
	}
	if token[0] == '"' {
		var s string
		if err := sonic.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexibleString(strings.TrimSpace(s))
		return nil
	}
	// Number token, keep its textual form
	*f = FlexibleString(token)
	return nil
}

// String returns the textual value.
func (f FlexibleString) String() string {
	return string(f)
}

// IsEmpty reports whether the field is absent or blank.
func (f FlexibleString) IsEmpty() bool {
	return strings.TrimSpace(string(f)) == ""
}

// Float parses the value as a float. A missing or unparseable value is
// reported as absent, never as an error.
func (f FlexibleString) Float() (float64, bool) {
	s := strings.TrimSpace(string(f))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
