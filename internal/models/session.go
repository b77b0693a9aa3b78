package models

import "time"

// SessionRecord is one completed usage cycle.
// Counted=false means the session was shorter than the configured minimum:
// it is excluded from session counters and averages, but its energy was still
// folded into the daily/lifetime totals.
type SessionRecord struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
	DurationS  int       `json:"duration_s"`
	EnergyKWh  float64   `json:"energy_kwh"`
	PeakPowerW float64   `json:"peak_power_w"`
	Counted    bool      `json:"counted"`
}
