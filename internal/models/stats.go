package models

import "time"

// OpenSession is the persisted portion of an in-flight session so a restart
// can resume it instead of losing the cycle.
type OpenSession struct {
	StartedAt    time.Time `json:"started_at"`
	StartCounter float64   `json:"start_counter_kwh"`
	EnergyKWh    float64   `json:"energy_kwh"`
	PeakPowerW   float64   `json:"peak_power_w"`
}

// StatsSnapshot is the serializable aggregate state the host persists across
// restarts. The engine emits it after mutating steps and accepts it back once
// at startup.
type StatsSnapshot struct {
	SessionsTotal  int     `json:"sessions_total"`
	SessionsToday  int     `json:"sessions_today"`
	EnergyTodayKWh float64 `json:"energy_today_kwh"`
	EnergyTotalKWh float64 `json:"energy_total_kwh"`

	LastSessionDurationS  *int     `json:"last_session_duration_s,omitempty"`
	LastSessionEnergyKWh  *float64 `json:"last_session_energy_kwh,omitempty"`
	LastSessionPeakPowerW *float64 `json:"last_session_peak_power_w,omitempty"`

	// Running sums over counted sessions, for averages.
	CountedSessions int     `json:"counted_sessions"`
	DurationSumS    float64 `json:"duration_sum_s"`
	EnergySumKWh    float64 `json:"energy_sum_kwh"`

	// Local calendar day the "today" counters belong to, "2006-01-02".
	TodayDate string `json:"today_date"`

	// Most recent closed sessions, newest first, capped.
	History []SessionRecord `json:"history,omitempty"`

	// Non-nil while a session is open.
	Open *OpenSession `json:"open_session,omitempty"`
}
