package models

import "time"

// OperatingState is the debounced high-level state of the monitored device.
type OperatingState string

const (
	StateOff     OperatingState = "off"
	StateStandby OperatingState = "standby"
	StateActive  OperatingState = "active"
	StateBlocked OperatingState = "blocked" // outside schedule window
)

// DeviceState is the unified output snapshot recomputed on every evaluation step.
type DeviceState struct {
	State    OperatingState `json:"state"`
	IsActive bool           `json:"is_active"`
	IsOn     bool           `json:"is_on"` // any non-off, non-blocked state

	SmoothedPowerW float64 `json:"smoothed_power_w"`
	RawPowerW      float64 `json:"raw_power_w"`

	SessionsTotal  int     `json:"sessions_total"`
	SessionsToday  int     `json:"sessions_today"`
	EnergyTodayKWh float64 `json:"energy_today_kwh"`
	EnergyTotalKWh float64 `json:"energy_total_kwh"`

	LastSessionDurationS  *int     `json:"last_session_duration_s,omitempty"`
	LastSessionEnergyKWh  *float64 `json:"last_session_energy_kwh,omitempty"`
	LastSessionPeakPowerW *float64 `json:"last_session_peak_power_w,omitempty"`

	CurrentSessionDurationS  *int     `json:"current_session_duration_s,omitempty"`
	CurrentSessionEnergyKWh  *float64 `json:"current_session_energy_kwh,omitempty"`
	CurrentSessionPeakPowerW *float64 `json:"current_session_peak_power_w,omitempty"`

	AvgSessionDurationS *float64 `json:"avg_session_duration_s,omitempty"`
	AvgSessionEnergyKWh *float64 `json:"avg_session_energy_kwh,omitempty"`

	ScheduleBlocked   bool `json:"schedule_blocked"`
	ScheduleTurnedOff bool `json:"schedule_turned_off"` // edge-triggered, true only on the forcing step

	AutoOffRemainingS *int `json:"auto_off_remaining_s,omitempty"` // nil when disabled or switch off

	UpdatedAt time.Time `json:"updated_at"`
}
