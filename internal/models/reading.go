package models

import "time"

// Reading is a single raw telemetry sample from the monitored outlet.
// Produced externally (sensor poller, HTTP ingest), consumed once by the engine.
type Reading struct {
	Timestamp time.Time `json:"timestamp"`
	PowerW    float64   `json:"power_w"`      // instantaneous power, >= 0
	EnergyKWh float64   `json:"energy_kwh"`   // cumulative meter value, reset-prone
	SwitchOn  bool      `json:"switch_is_on"` // relay state as reported by the plug
}
