package engine

import (
	"time"

	"github.com/hoizi89/advanced-switches/internal/models"
)

// modeMachine maps smoothed power onto discrete levels and tells the
// debouncer how long each transition must hold. Two closed implementations,
// selected at construction; BLOCKED is layered on top by the Engine, never by
// a machine.
type modeMachine interface {
	candidate(powerW float64) int
	delay(from, to int) time.Duration
	state(level int) models.OperatingState
}

// simpleMachine: OFF/ACTIVE around a single threshold.
type simpleMachine struct {
	thresholdW float64
	onDelay    time.Duration
	offDelay   time.Duration
}

func (m *simpleMachine) candidate(powerW float64) int {
	if powerW >= m.thresholdW {
		return 1
	}
	return 0
}

func (m *simpleMachine) delay(from, to int) time.Duration {
	if to > from {
		return m.onDelay
	}
	return m.offDelay
}

func (m *simpleMachine) state(level int) models.OperatingState {
	if level >= 1 {
		return models.StateActive
	}
	return models.StateOff
}

// standbyMachine: OFF/STANDBY/ACTIVE around two thresholds. The drop to OFF
// uses the session-end grace as its delay — a longer debounce specifically so
// a brief lull (heating element cycling) does not terminate the session.
type standbyMachine struct {
	standbyW float64
	activeW  float64

	onDelay            time.Duration
	activeStandbyDelay time.Duration
	grace              time.Duration
}

func (m *standbyMachine) candidate(powerW float64) int {
	switch {
	case powerW >= m.activeW:
		return 2
	case powerW >= m.standbyW:
		return 1
	default:
		return 0
	}
}

func (m *standbyMachine) delay(from, to int) time.Duration {
	switch {
	case to == 0:
		return m.grace
	case from == 0:
		return m.onDelay
	default:
		return m.activeStandbyDelay
	}
}

func (m *standbyMachine) state(level int) models.OperatingState {
	switch level {
	case 2:
		return models.StateActive
	case 1:
		return models.StateStandby
	default:
		return models.StateOff
	}
}

func newModeMachine(cfg Config) modeMachine {
	if cfg.Mode == ModeStandby {
		return &standbyMachine{
			standbyW:           cfg.StandbyThresholdW,
			activeW:            cfg.ActiveThresholdW,
			onDelay:            cfg.OnDelay,
			activeStandbyDelay: cfg.ActiveStandbyDelay,
			grace:              cfg.SessionEndGrace,
		}
	}
	return &simpleMachine{
		thresholdW: cfg.ActiveThresholdW,
		onDelay:    cfg.OnDelay,
		offDelay:   cfg.OffDelay,
	}
}
