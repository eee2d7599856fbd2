package domain

import "time"

// Indicator frequency codes as stored in the statistics schema.
const (
	FrequencyDaily     = "D"
	FrequencyMonthly   = "M"
	FrequencyQuarterly = "Q"
)

// Indicator is reference metadata for one economic time series.
type Indicator struct {
	IndicatorID string `json:"indicator_id"`
	Name        string `json:"name"`
	Frequency   string `json:"frequency,omitempty"`
	Unit        string `json:"unit,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// Observation is one (date, value) sample of an indicator.
type Observation struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// IndicatorSeries is an indicator with its observations over the
// lookback window computed for a specific article.
type IndicatorSeries struct {
	IndicatorID  string        `json:"indicator_id"`
	Name         string        `json:"name"`
	Unit         string        `json:"unit"`
	Frequency    string        `json:"frequency"`
	Observations []Observation `json:"observations"`
}
