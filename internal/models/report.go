package models

// InsulinType classifies the insulin named in a treatment note.
type InsulinType string

const (
	InsulinNormal      InsulinType = "N"
	InsulinFast        InsulinType = "F"
	InsulinUnspecified InsulinType = ""
)

// ParsedNote is the structured form of one free-text treatment note.
// Numeric fields are pointers: a failed parse leaves them nil rather than
// producing an error.
type ParsedNote struct {
	Ratio            *float64    // carb-to-insulin ratio planned for the meal
	PredictedInsulin *float64    // dose the ratio predicted
	InsulinType      InsulinType // N, F, or unspecified
	Foods            []string    // food items, possibly with synthetic markers
	BasalAmount      *float64    // basal dose, for basal records only
}

// ReportRow is one table line of the daily report. All fields are display
// strings; absent values render as "-".
type ReportRow struct {
	Time      string `json:"time"`      // HH:MM in the report timezone
	BG        string `json:"bg"`        // correlated CGM value and/or manual check
	CIR       string `json:"cir"`       // carb-to-insulin ratio from the note
	Carbs     string `json:"carbs"`     // carbs with unit suffix, e.g. "45g"
	Predicted string `json:"predicted"` // predicted insulin from the note
	Actual    string `json:"actual"`    // insulin actually given
	Type      string `json:"type"`      // insulin type letter
	Food      string `json:"food"`      // comma-joined food items
}

// DailyStats accumulates the day's totals while rows are built and is
// finalized once after the last treatment.
type DailyStats struct {
	AvgBG        int     `json:"avg_bg"`
	TotalInsulin float64 `json:"total_insulin"` // bolus only
	BasalInsulin float64 `json:"basal_insulin"`
	TotalCarbs   float64 `json:"total_carbs"`
	TCIR         string  `json:"tcir"` // total carbs / total insulin, or "-"
}

// DailyReport is the complete report structure handed to the presentation
// layer. ChartTimes and ChartBGs are aligned one to one.
type DailyReport struct {
	ChartTimes []string    `json:"chart_times"`
	ChartBGs   []int       `json:"chart_bgs"`
	TableData  []ReportRow `json:"table_data"`
	DailyStats
}
