package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/hoizi89/advanced-switches/internal/models"
	"github.com/hoizi89/advanced-switches/internal/repository/db"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

// StatsRepo persists the engine's aggregate statistics snapshot (single row).
type StatsRepo interface {
	Save(ctx context.Context, snap models.StatsSnapshot) error
	Load(ctx context.Context) (models.StatsSnapshot, bool, error)
}

// SessionRepo is the append-only log of closed sessions.
type SessionRepo interface {
	Append(ctx context.Context, s models.SessionRecord) error
	List(ctx context.Context, from, to time.Time, countedOnly bool) ([]models.SessionRecord, error)
}

// EventRepo is the append-only tracker event log.
type EventRepo interface {
	Append(ctx context.Context, e models.TrackerEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.TrackerEvent, error)
}

type Repository struct {
	StatsRepo   StatsRepo
	SessionRepo SessionRepo
	EventRepo   EventRepo
	Auth        Authorization
}

func NewRepository(sqlDB *sql.DB) *Repository {
	return &Repository{
		StatsRepo:   NewStatsSQLite(sqlDB),
		SessionRepo: NewSessionSQLite(sqlDB),
		EventRepo:   NewEventSQLite(sqlDB),
		Auth:        NewUserRepository(sqlDB),
	}
}

// InitDB re-exports the db package constructor so cmd wiring has one import.
func InitDB(path string) (*sql.DB, error) {
	return db.InitDB(path)
}
