package models

import "time"

// GenerationRecord is a single power reading for one production source in one country
type GenerationRecord struct {
	Country   string    `json:"country"`   // bidding zone code, e.g. "DE_LU"
	Source    string    `json:"source"`    // production source name, e.g. "Wind Onshore"
	Timestamp time.Time `json:"timestamp"` // start of the interval, UTC
	PowerMW   float64   `json:"power_mw"`
}

// GenerationStats summarizes the total generation of one country over a window
type GenerationStats struct {
	MaxPowerMW         float64   `json:"max_power_mw"`
	MinPowerMW         float64   `json:"min_power_mw"`
	AvgPowerMW         float64   `json:"avg_power_mw"`
	DailyVolatilityPct float64   `json:"daily_volatility_pct"` // coefficient of variation of daily means
	PeakTime           time.Time `json:"peak_time"`
	TroughTime         time.Time `json:"trough_time"`
}

// MixSummary is the archived and published result of one country analysis
type MixSummary struct {
	ID          int                `json:"-"`
	RunID       string             `json:"run_id"`
	Country     string             `json:"country"`
	CountryName string             `json:"country_name"`
	Start       time.Time          `json:"start"`
	End         time.Time          `json:"end"`
	Resolution  time.Duration      `json:"resolution"`
	Shares      map[string]float64 `json:"shares"` // source -> mean fraction of total
	Stats       GenerationStats    `json:"stats"`
	CreatedAt   time.Time          `json:"created_at"`
}
