package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hoizi89/advanced-switches/internal/engine"
	"github.com/hoizi89/advanced-switches/internal/models"
	"github.com/hoizi89/advanced-switches/internal/repository"
)

// Event types written to the tracker event log.
const (
	EventSessionEnd = "SESSION_END"
	EventCommand    = "COMMAND"
	EventSchedule   = "SCHEDULE"
	EventReset      = "RESET"
)

// TrackerService owns one engine instance. The engine is a sequential state
// machine; the mutex serializes the HTTP handlers and the ticker goroutine
// over it. Each mutating call runs exactly one evaluation step, forwards
// emitted commands to the sink, logs step outputs to the event log and
// persists the statistics snapshot.
type TrackerService struct {
	mu  sync.Mutex
	eng *engine.Engine

	statsRepo   repository.StatsRepo
	sessionRepo repository.SessionRepo
	eventRepo   repository.EventRepo
	sink        CommandSink
}

func NewTrackerService(
	eng *engine.Engine,
	statsRepo repository.StatsRepo,
	sessionRepo repository.SessionRepo,
	eventRepo repository.EventRepo,
	sink CommandSink,
) *TrackerService {
	return &TrackerService{
		eng:         eng,
		statsRepo:   statsRepo,
		sessionRepo: sessionRepo,
		eventRepo:   eventRepo,
		sink:        sink,
	}
}

// Restore seeds the engine from persisted statistics. Call once at startup,
// before the first reading.
func (s *TrackerService) Restore(ctx context.Context) error {
	snap, found, err := s.statsRepo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load statistics: %w", err)
	}
	if !found {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.RestoreStatistics(snap)
}

// Ingest advances the engine with a new sensor sample.
func (s *TrackerService) Ingest(ctx context.Context, r models.Reading) (models.DeviceState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	step, err := s.eng.ProcessReading(r)
	if err != nil {
		return s.eng.Snapshot(r.Timestamp), err
	}
	return s.finishStep(ctx, r.Timestamp, step, true)
}

// Tick re-evaluates the engine's timers without sensor data.
func (s *TrackerService) Tick(ctx context.Context, now time.Time) (models.DeviceState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	step := s.eng.Tick(now)
	return s.finishStep(ctx, now, step, false)
}

// RequestOn asks for manual activation; rejected while the schedule gate
// blocks, in which case accepted=false and the device stays off.
func (s *TrackerService) RequestOn(ctx context.Context, now time.Time) (models.DeviceState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	step, accepted := s.eng.RequestOn(now)
	st, err := s.finishStep(ctx, now, step, false)
	return st, accepted, err
}

// RequestOff asks for manual deactivation; the turn_off command goes to the
// sink and the engine observes the result on a later reading.
func (s *TrackerService) RequestOff(ctx context.Context, now time.Time) (models.DeviceState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	step := s.eng.RequestOff(now)
	return s.finishStep(ctx, now, step, false)
}

// Reset clears statistics counters ("all" or "today") and persists the result.
func (s *TrackerService) Reset(ctx context.Context, scope string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.eng.ResetStatistics(scope); err != nil {
		return err
	}
	if err := s.eventRepo.Append(ctx, models.TrackerEvent{
		Type:        EventReset,
		Description: "Statistics reset",
		Metadata:    map[string]any{"scope": scope},
	}); err != nil {
		return fmt.Errorf("log reset event: %w", err)
	}
	return s.statsRepo.Save(ctx, s.eng.StatisticsSnapshot())
}

// State returns the current snapshot without mutating anything.
func (s *TrackerService) State(now time.Time) models.DeviceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.Snapshot(now)
}

// Statistics returns the persistable aggregate state.
func (s *TrackerService) Statistics() models.StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.StatisticsSnapshot()
}

// finishStep applies a step's side effects and builds the response snapshot.
// The engine state has already advanced; persistence or sink failures are
// reported but do not roll it back.
func (s *TrackerService) finishStep(ctx context.Context, now time.Time, step engine.Step, persistAlways bool) (models.DeviceState, error) {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if rec := step.ClosedSession; rec != nil {
		keep(s.sessionRepo.Append(ctx, *rec))
		keep(s.eventRepo.Append(ctx, models.TrackerEvent{
			OccurredAt:  now,
			Type:        EventSessionEnd,
			Description: "Session ended",
			Metadata: map[string]any{
				"duration_s":   rec.DurationS,
				"energy_kwh":   rec.EnergyKWh,
				"peak_power_w": rec.PeakPowerW,
				"counted":      rec.Counted,
			},
		}))
	}

	if step.ScheduleTurnedOff {
		keep(s.eventRepo.Append(ctx, models.TrackerEvent{
			OccurredAt:  now,
			Type:        EventSchedule,
			Description: "Schedule window closed, device forced off",
		}))
	}

	for _, cmd := range step.Commands {
		if cmd == engine.CommandTurnOff && s.sink != nil {
			keep(s.sink.TurnOff(ctx))
		}
		keep(s.eventRepo.Append(ctx, models.TrackerEvent{
			OccurredAt:  now,
			Type:        EventCommand,
			Description: "Command emitted: " + string(cmd),
		}))
	}

	if persistAlways || step.ClosedSession != nil || step.Transitioned {
		keep(s.statsRepo.Save(ctx, s.eng.StatisticsSnapshot()))
	}

	st := s.eng.Snapshot(now)
	st.ScheduleTurnedOff = step.ScheduleTurnedOff
	return st, firstErr
}
