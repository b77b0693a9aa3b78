package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hoizi89/advanced-switches/internal/models"
)

type SessionSQLite struct {
	db *sql.DB
}

func NewSessionSQLite(db *sql.DB) *SessionSQLite {
	return &SessionSQLite{db: db}
}

var _ SessionRepo = (*SessionSQLite)(nil)

// Append inserts a closed session. A missing ID is generated.
func (r *SessionSQLite) Append(ctx context.Context, s models.SessionRecord) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, started_at, ended_at, duration_s, energy_kwh, peak_power_w, counted)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		s.ID,
		s.StartedAt.UTC(),
		s.EndedAt.UTC(),
		s.DurationS,
		s.EnergyKWh,
		s.PeakPowerW,
		s.Counted,
	)
	return err
}

// List returns sessions overlapping [from, to] (zero times drop the bound),
// newest first. countedOnly filters out below-minimum discarded cycles.
func (r *SessionSQLite) List(ctx context.Context, from, to time.Time, countedOnly bool) ([]models.SessionRecord, error) {
	var (
		conds []string
		args  []any
	)

	if !from.IsZero() {
		conds = append(conds, "ended_at >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		conds = append(conds, "started_at <= ?")
		args = append(args, to.UTC())
	}
	if countedOnly {
		conds = append(conds, "counted = 1")
	}

	q := `SELECT id, started_at, ended_at, duration_s, energy_kwh, peak_power_w, counted FROM sessions`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY started_at DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.SessionRecord, 0, 32)
	for rows.Next() {
		var s models.SessionRecord
		if err := rows.Scan(&s.ID, &s.StartedAt, &s.EndedAt, &s.DurationS, &s.EnergyKWh, &s.PeakPowerW, &s.Counted); err != nil {
			return nil, err
		}
		s.StartedAt = s.StartedAt.UTC()
		s.EndedAt = s.EndedAt.UTC()
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
