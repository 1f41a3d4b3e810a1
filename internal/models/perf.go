// internal/models/perf.go
package models

// Unit is the measurement system of a performance table.
type Unit string

const (
	UnitMetric   Unit = "metric"
	UnitImperial Unit = "imperial"
)

// PerfRecord is one row of immutable performance reference data for a
// production line at a given age.
type PerfRecord struct {
	Line      string  `json:"line" db:"line"`
	Sex       Sex     `json:"sex" db:"sex"`
	Unit      Unit    `json:"unit" db:"unit"`
	AgeDays   int     `json:"ageDays" db:"age_days"`
	WeightG   float64 `json:"weightG" db:"weight_g"`
	DailyGain float64 `json:"dailyGainG" db:"daily_gain_g"`
	FCRCum    float64 `json:"fcrCum" db:"fcr_cum"`
	SourceDoc string  `json:"sourceDoc" db:"source_doc"`
	Page      int     `json:"page" db:"page"`
}
