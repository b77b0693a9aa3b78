// Package engine turns a noisy stream of power/energy/switch readings into a
// debounced device-activity model: discrete operating states, usage sessions
// with energy statistics, and two policies (schedule window, auto-off timer)
// that can force the device off.
//
// The package is pure: no I/O, no logging, no goroutines. All mutation happens
// inside one evaluation step driven by ProcessReading or Tick, and every piece
// of state lives in one Engine value, so independent devices are independent
// Engine instances.
package engine

import (
	"errors"
	"fmt"
	"time"
)

// Operating modes.
const (
	ModeSimple  = "simple"  // OFF/ACTIVE
	ModeStandby = "standby" // OFF/STANDBY/ACTIVE
)

// Defaults mirror the shipped integration.
const (
	DefaultActiveThresholdW        = 50.0
	DefaultActiveThresholdStandbyW = 1000.0
	DefaultStandbyThresholdW       = 5.0
	DefaultOnDelay                 = 3 * time.Second
	DefaultOffDelay                = 5 * time.Second
	DefaultMinActive               = 10 * time.Second
	DefaultSessionEndGrace         = 120 * time.Second
	DefaultMinSession              = 60 * time.Second
	DefaultActiveStandbyDelay      = 30 * time.Second
	DefaultAutoOffMinutes          = 60
)

// SessionHistorySize caps the recent-session ring kept in the snapshot.
const SessionHistorySize = 10

// ScheduleConfig is the allowed activation window. End before Start means the
// window wraps past midnight; a wrapping window belongs to the day it starts.
type ScheduleConfig struct {
	Enabled bool
	Start   string // "HH:MM" local time
	End     string // "HH:MM" local time, exclusive
	Days    []time.Weekday
}

// AutoOffConfig forces the device off a fixed time after the switch turns on.
type AutoOffConfig struct {
	Enabled bool
	After   time.Duration
}

// DefaultMinSessionFor returns the minimum counted-session length for a mode:
// simple-mode cycles are short bursts, standby-mode cycles span whole runs.
func DefaultMinSessionFor(mode string) time.Duration {
	if mode == ModeSimple {
		return DefaultMinActive
	}
	return DefaultMinSession
}

// Config fixes all engine behavior at construction.
type Config struct {
	Mode string

	// Location anchors calendar decisions (day rollover, schedule window).
	// Incoming timestamps are converted to it regardless of the zone they
	// carry. Nil means the process-local zone.
	Location *time.Location

	ActiveThresholdW  float64
	StandbyThresholdW float64 // standby mode only, must be < ActiveThresholdW

	OnDelay            time.Duration
	OffDelay           time.Duration
	ActiveStandbyDelay time.Duration // standby mode: ACTIVE<->STANDBY debounce
	SessionEndGrace    time.Duration // standby mode: STANDBY->OFF lull tolerance

	MinSession          time.Duration // shorter sessions are not counted
	PowerSmoothing      time.Duration // 0 disables smoothing
	SessionEndOnStandby bool          // standby mode: close session when ACTIVE ends

	Schedule ScheduleConfig
	AutoOff  AutoOffConfig
}

var (
	errUnknownMode        = errors.New("mode must be \"simple\" or \"standby\"")
	errThresholdOrder     = errors.New("standby threshold must be below active threshold")
	errNegativeDelay      = errors.New("delays must not be negative")
	errNonPositiveAutoOff = errors.New("auto-off duration must be positive when enabled")
	errEmptyScheduleDays  = errors.New("schedule needs at least one allowed weekday")
)

// Validate checks the configuration; the engine is never constructed from an
// invalid one.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeSimple, ModeStandby:
	default:
		return errUnknownMode
	}

	if c.ActiveThresholdW <= 0 {
		return fmt.Errorf("active threshold %.1f W: must be positive", c.ActiveThresholdW)
	}
	if c.Mode == ModeStandby {
		if c.StandbyThresholdW <= 0 {
			return fmt.Errorf("standby threshold %.1f W: must be positive", c.StandbyThresholdW)
		}
		if c.StandbyThresholdW >= c.ActiveThresholdW {
			return errThresholdOrder
		}
	}

	for _, d := range []time.Duration{
		c.OnDelay, c.OffDelay, c.ActiveStandbyDelay, c.SessionEndGrace, c.MinSession, c.PowerSmoothing,
	} {
		if d < 0 {
			return errNegativeDelay
		}
	}

	if c.AutoOff.Enabled && c.AutoOff.After <= 0 {
		return errNonPositiveAutoOff
	}

	if c.Schedule.Enabled {
		if _, err := parseTimeOfDay(c.Schedule.Start); err != nil {
			return fmt.Errorf("schedule start: %w", err)
		}
		if _, err := parseTimeOfDay(c.Schedule.End); err != nil {
			return fmt.Errorf("schedule end: %w", err)
		}
		if len(c.Schedule.Days) == 0 {
			return errEmptyScheduleDays
		}
	}

	return nil
}
