package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/hoizi89/advanced-switches/internal/models"
)

// Command is an advisory output the host must execute against the physical
// device. Execution and confirmation happen externally; the engine learns the
// result from a later reading.
type Command string

const CommandTurnOff Command = "turn_off"

// Step is the edge-triggered result of one evaluation step. Values appear
// exactly once, on the step that produced them, never as sticky flags.
type Step struct {
	Commands          []Command
	ScheduleTurnedOff bool
	ClosedSession     *models.SessionRecord
	Transitioned      bool
}

var (
	// ErrInvalidReading marks a rejected sample; prior state is unchanged.
	ErrInvalidReading = errors.New("invalid reading")
	// ErrAlreadyRestored guards the restore-once-at-startup contract.
	ErrAlreadyRestored = errors.New("statistics already restored or engine already running")
	// ErrInvalidResetScope rejects reset scopes other than "all" and "today".
	ErrInvalidResetScope = errors.New("invalid reset scope")
)

// Engine is the per-device coordinator. It is a sequential state machine: all
// mutation happens inside ProcessReading, Tick, RequestOn, RequestOff or
// RestoreStatistics, and a step either completes or (on a rejected reading)
// did not happen. The caller serializes access; independent devices are
// independent Engine values.
type Engine struct {
	cfg     Config
	loc     *time.Location
	machine modeMachine
	deb     *debouncer
	smooth  *smoother
	energy  energyAccumulator
	tracker *sessionTracker
	gate    *scheduleGate
	autoOff *autoOffTimer

	state          models.OperatingState
	switchOn       bool
	rawPowerW      float64
	lastCounterKWh float64
	lastReading    time.Time
	started        bool
	restored       bool
}

// New validates the configuration and builds an engine in the OFF state.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	m := newModeMachine(cfg)
	return &Engine{
		cfg:     cfg,
		loc:     loc,
		machine: m,
		deb:     newDebouncer(m.delay),
		smooth:  newSmoother(cfg.PowerSmoothing),
		tracker: newSessionTracker(),
		gate:    newScheduleGate(cfg.Schedule),
		autoOff: newAutoOffTimer(cfg.AutoOff),
		state:   models.StateOff,
	}, nil
}

// RestoreStatistics seeds the aggregate state from persisted data. Must be
// called at most once, before the first reading.
func (e *Engine) RestoreStatistics(snap models.StatsSnapshot) error {
	if e.restored || e.started {
		return ErrAlreadyRestored
	}
	e.restored = true
	e.tracker.restore(snap)
	if snap.Open != nil {
		// Re-baseline the meter so consumption during downtime still lands
		// in the resumed session.
		e.energy.lastSeen = snap.Open.StartCounter + snap.Open.EnergyKWh
		e.energy.seeded = true
		e.lastCounterKWh = e.energy.lastSeen
	}
	return nil
}

// ProcessReading advances state using a new sensor sample.
func (e *Engine) ProcessReading(r models.Reading) (Step, error) {
	if err := e.validate(r); err != nil {
		return Step{}, err
	}

	e.started = true
	e.lastReading = r.Timestamp
	e.rawPowerW = r.PowerW
	e.lastCounterKWh = r.EnergyKWh

	smoothed := e.smooth.Add(r.Timestamp, r.PowerW)
	delta := e.energy.Observe(r.EnergyKWh)
	e.tracker.observe(r.PowerW, delta)

	if r.SwitchOn && !e.switchOn {
		e.autoOff.SwitchOn(r.Timestamp)
	} else if !r.SwitchOn {
		e.autoOff.SwitchOff()
	}
	e.switchOn = r.SwitchOn

	return e.evaluate(r.Timestamp, smoothed), nil
}

// Tick re-evaluates debounce, grace, schedule, auto-off and day-rollover
// timers without new sensor data. Repeated ticks with an unchanged timestamp
// are no-ops.
func (e *Engine) Tick(now time.Time) Step {
	return e.evaluate(now, e.smooth.Value(now))
}

// RequestOn is the externally requested manual activation. It is rejected
// (accepted=false) while the schedule gate denies activation; the engine
// itself does not toggle anything, the host does on acceptance.
func (e *Engine) RequestOn(now time.Time) (Step, bool) {
	if e.gate.Blocked() {
		return Step{}, false
	}
	// The auto-off timer stays disarmed until a reading confirms the switch
	// actually turned on.
	return Step{}, true
}

// RequestOff asks the host to turn the device off.
func (e *Engine) RequestOff(now time.Time) Step {
	return Step{Commands: []Command{CommandTurnOff}}
}

func (e *Engine) validate(r models.Reading) error {
	if e.started && r.Timestamp.Before(e.lastReading) {
		return fmt.Errorf("%w: timestamp %s before last processed %s",
			ErrInvalidReading, r.Timestamp.Format(time.RFC3339), e.lastReading.Format(time.RFC3339))
	}
	if r.PowerW < 0 {
		return fmt.Errorf("%w: negative power %.2f W", ErrInvalidReading, r.PowerW)
	}
	if r.EnergyKWh < 0 {
		return fmt.Errorf("%w: negative energy counter %.3f kWh", ErrInvalidReading, r.EnergyKWh)
	}
	return nil
}

// evaluate is the single evaluation step shared by readings and ticks.
// Policy order: day rollover, schedule gate, auto-off, then the debounced
// mode machine; schedule and auto-off may force OFF independent of power.
// The timestamp is normalized to the configured location first, so calendar
// decisions do not depend on the zone the caller's clock happens to carry.
func (e *Engine) evaluate(now time.Time, smoothedW float64) Step {
	now = now.In(e.loc)

	var step Step

	if e.tracker.todayDate == "" {
		// First observation fixes the current calendar day.
		e.tracker.todayDate = now.Format(localDateLayout)
	} else {
		e.tracker.rollover(now)
	}

	blocked, justBlocked, _ := e.gate.Evaluate(now)
	if justBlocked {
		if e.state != models.StateOff || e.switchOn {
			step.Commands = append(step.Commands, CommandTurnOff)
			step.ScheduleTurnedOff = true
		}
		step.ClosedSession = e.tracker.closeSession(now, e.cfg.MinSession)
		e.forceOff()
	}
	if blocked {
		// Mode machine is suspended while blocked; readings still updated
		// the smoother and the meter baseline before we got here.
		return step
	}

	if e.autoOff.Expired(now) {
		step.Commands = append(step.Commands, CommandTurnOff)
		if rec := e.tracker.closeSession(now, e.cfg.MinSession); rec != nil {
			step.ClosedSession = rec
		}
		e.forceOff()
		return step
	}

	level, transitioned := e.deb.Observe(e.machine.candidate(smoothedW), now)
	if transitioned {
		step.Transitioned = true
		prev := e.state
		next := e.machine.state(level)
		e.state = next
		if rec := e.applyTransition(prev, next, now); rec != nil {
			step.ClosedSession = rec
		}
	}

	return step
}

// applyTransition maps a committed state change onto session boundaries.
func (e *Engine) applyTransition(prev, next models.OperatingState, now time.Time) *models.SessionRecord {
	endOnStandby := e.cfg.Mode == ModeStandby && e.cfg.SessionEndOnStandby

	if next == models.StateOff {
		return e.tracker.closeSession(now, e.cfg.MinSession)
	}

	if endOnStandby && prev == models.StateActive && next == models.StateStandby {
		return e.tracker.closeSession(now, e.cfg.MinSession)
	}

	if e.tracker.open == nil && (prev == models.StateOff || (endOnStandby && next == models.StateActive)) {
		e.tracker.openSession(now, e.lastCounterKWh, e.rawPowerW)
	}
	return nil
}

func (e *Engine) forceOff() {
	e.state = models.StateOff
	e.deb.Reset(0)
}

// Snapshot builds the unified output state as of now. Edge-triggered fields
// (ScheduleTurnedOff) are left false here; they belong to the Step of the
// evaluation that produced them.
func (e *Engine) Snapshot(now time.Time) models.DeviceState {
	st := e.state
	if e.gate.Blocked() {
		st = models.StateBlocked
	}

	out := models.DeviceState{
		State:          st,
		IsActive:       st == models.StateActive,
		IsOn:           st != models.StateOff && st != models.StateBlocked,
		SmoothedPowerW: e.smooth.Value(now),
		RawPowerW:      e.rawPowerW,

		SessionsTotal:  e.tracker.sessionsTotal,
		SessionsToday:  e.tracker.sessionsToday,
		EnergyTodayKWh: e.tracker.energyTodayKWh,
		EnergyTotalKWh: e.tracker.energyTotalKWh,

		LastSessionDurationS:  copyIntPtr(e.tracker.lastDurationS),
		LastSessionEnergyKWh:  copyFloatPtr(e.tracker.lastEnergyKWh),
		LastSessionPeakPowerW: copyFloatPtr(e.tracker.lastPeakPowerW),

		ScheduleBlocked:   e.gate.Blocked(),
		AutoOffRemainingS: e.autoOff.Remaining(now),
		UpdatedAt:         now,
	}

	if s := e.tracker.open; s != nil {
		d := int(now.Sub(s.startedAt).Seconds())
		energy := s.energyKWh
		peak := s.peakPowerW
		out.CurrentSessionDurationS = &d
		out.CurrentSessionEnergyKWh = &energy
		out.CurrentSessionPeakPowerW = &peak
	}

	out.AvgSessionDurationS, out.AvgSessionEnergyKWh = e.tracker.averages()
	return out
}

// StatisticsSnapshot returns the serializable aggregate state for the host to
// persist.
func (e *Engine) StatisticsSnapshot() models.StatsSnapshot {
	return e.tracker.snapshot()
}

// Reset scopes.
const (
	ResetScopeAll   = "all"
	ResetScopeToday = "today"
)

// ResetStatistics clears counters; scope "today" keeps lifetime totals.
func (e *Engine) ResetStatistics(scope string) error {
	switch scope {
	case ResetScopeAll:
		e.tracker.resetAll()
	case ResetScopeToday:
		e.tracker.resetToday()
	default:
		return fmt.Errorf("%w: %q", ErrInvalidResetScope, scope)
	}
	return nil
}
