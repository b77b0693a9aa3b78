package service

import (
	"context"
	"time"

	"github.com/hoizi89/advanced-switches/internal/engine"
	"github.com/hoizi89/advanced-switches/internal/models"
	"github.com/hoizi89/advanced-switches/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Tracker exposes the mutating engine operations: reading ingest, the
// periodic tick and manual/administrative control.
type Tracker interface {
	Ingest(ctx context.Context, r models.Reading) (models.DeviceState, error)
	Tick(ctx context.Context, now time.Time) (models.DeviceState, error)
	RequestOn(ctx context.Context, now time.Time) (models.DeviceState, bool, error)
	RequestOff(ctx context.Context, now time.Time) (models.DeviceState, error)
	Reset(ctx context.Context, scope string) error
	Restore(ctx context.Context) error
}

// Monitoring exposes the read-only snapshot.
type Monitoring interface {
	State(now time.Time) models.DeviceState
	Statistics() models.StatsSnapshot
}

// SessionLog lists closed sessions with filtering.
type SessionLog interface {
	List(ctx context.Context, f SessionFilter) ([]models.SessionRecord, error)
}

// EventLog exposes the append-only event history.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.TrackerEvent, error)
}

// Runner is the periodic clock driving timer evaluation between readings.
// Stop via context cancellation in main() for graceful shutdown.
type Runner interface {
	Run(ctx context.Context, tick time.Duration)
}

// CommandSink executes advisory engine commands against the physical device.
// The real actuator lives outside this process boundary; cmd wires one in.
type CommandSink interface {
	TurnOff(ctx context.Context) error
}

// Service aggregates all sub-services.
type Service struct {
	Tracker
	Monitoring
	SessionLog
	EventLog
	Runner
	Authorization
}

// NewService wires the repository layer and the engine into concrete services.
func NewService(repos *repository.Repository, eng *engine.Engine, sink CommandSink) *Service {
	tracker := NewTrackerService(eng, repos.StatsRepo, repos.SessionRepo, repos.EventRepo, sink)
	return &Service{
		Tracker:       tracker,
		Monitoring:    tracker,
		SessionLog:    NewSessionLogService(repos.SessionRepo),
		EventLog:      NewEventLogService(repos.EventRepo),
		Runner:        NewRunnerService(tracker),
		Authorization: NewAuthService(repos.Auth),
	}
}
