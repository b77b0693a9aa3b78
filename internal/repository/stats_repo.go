package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hoizi89/advanced-switches/internal/models"
)

type StatsSQLite struct {
	db *sql.DB
}

func NewStatsSQLite(db *sql.DB) *StatsSQLite {
	return &StatsSQLite{db: db}
}

var _ StatsRepo = (*StatsSQLite)(nil)

const (
	trackerStatsRowID = 1

	upsertStatsSQL = `
		INSERT INTO tracker_stats (id, sessions_total, sessions_today, energy_today_kwh, energy_total_kwh,
			last_session, counted_sessions, duration_sum_s, energy_sum_kwh, today_date, history, open_session, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			sessions_total=excluded.sessions_total,
			sessions_today=excluded.sessions_today,
			energy_today_kwh=excluded.energy_today_kwh,
			energy_total_kwh=excluded.energy_total_kwh,
			last_session=excluded.last_session,
			counted_sessions=excluded.counted_sessions,
			duration_sum_s=excluded.duration_sum_s,
			energy_sum_kwh=excluded.energy_sum_kwh,
			today_date=excluded.today_date,
			history=excluded.history,
			open_session=excluded.open_session,
			updated_at=excluded.updated_at
	`

	selectStatsSQL = `
		SELECT sessions_total, sessions_today, energy_today_kwh, energy_total_kwh,
			last_session, counted_sessions, duration_sum_s, energy_sum_kwh, today_date, history, open_session
		FROM tracker_stats WHERE id=?
	`
)

// lastSession groups the optional last-session columns for JSON storage.
type lastSession struct {
	DurationS  int     `json:"duration_s"`
	EnergyKWh  float64 `json:"energy_kwh"`
	PeakPowerW float64 `json:"peak_power_w"`
}

func marshalNullable(v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

// Save upserts the single tracker_stats row (id always 1).
func (r *StatsSQLite) Save(ctx context.Context, snap models.StatsSnapshot) error {
	var last *lastSession
	if snap.LastSessionDurationS != nil && snap.LastSessionEnergyKWh != nil && snap.LastSessionPeakPowerW != nil {
		last = &lastSession{
			DurationS:  *snap.LastSessionDurationS,
			EnergyKWh:  *snap.LastSessionEnergyKWh,
			PeakPowerW: *snap.LastSessionPeakPowerW,
		}
	}

	var (
		lastJSON *string
		err      error
	)
	if last != nil {
		if lastJSON, err = marshalNullable(last); err != nil {
			return fmt.Errorf("marshal last session: %w", err)
		}
	}
	var historyJSON *string
	if len(snap.History) > 0 {
		if historyJSON, err = marshalNullable(snap.History); err != nil {
			return fmt.Errorf("marshal history: %w", err)
		}
	}
	var openJSON *string
	if snap.Open != nil {
		if openJSON, err = marshalNullable(snap.Open); err != nil {
			return fmt.Errorf("marshal open session: %w", err)
		}
	}

	_, err = r.db.ExecContext(ctx, upsertStatsSQL,
		trackerStatsRowID,
		snap.SessionsTotal,
		snap.SessionsToday,
		snap.EnergyTodayKWh,
		snap.EnergyTotalKWh,
		lastJSON,
		snap.CountedSessions,
		snap.DurationSumS,
		snap.EnergySumKWh,
		snap.TodayDate,
		historyJSON,
		openJSON,
		time.Now().UTC(),
	)
	return err
}

// Load fetches the snapshot; found=false means nothing persisted yet.
func (r *StatsSQLite) Load(ctx context.Context) (models.StatsSnapshot, bool, error) {
	row := r.db.QueryRowContext(ctx, selectStatsSQL, trackerStatsRowID)

	var (
		snap        models.StatsSnapshot
		lastJSON    sql.NullString
		historyJSON sql.NullString
		openJSON    sql.NullString
	)
	if err := row.Scan(
		&snap.SessionsTotal,
		&snap.SessionsToday,
		&snap.EnergyTodayKWh,
		&snap.EnergyTotalKWh,
		&lastJSON,
		&snap.CountedSessions,
		&snap.DurationSumS,
		&snap.EnergySumKWh,
		&snap.TodayDate,
		&historyJSON,
		&openJSON,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.StatsSnapshot{}, false, nil
		}
		return models.StatsSnapshot{}, false, err
	}

	if lastJSON.Valid && lastJSON.String != "" {
		var last lastSession
		if err := json.Unmarshal([]byte(lastJSON.String), &last); err != nil {
			return models.StatsSnapshot{}, false, fmt.Errorf("unmarshal last session: %w", err)
		}
		snap.LastSessionDurationS = &last.DurationS
		snap.LastSessionEnergyKWh = &last.EnergyKWh
		snap.LastSessionPeakPowerW = &last.PeakPowerW
	}
	if historyJSON.Valid && historyJSON.String != "" {
		if err := json.Unmarshal([]byte(historyJSON.String), &snap.History); err != nil {
			return models.StatsSnapshot{}, false, fmt.Errorf("unmarshal history: %w", err)
		}
	}
	if openJSON.Valid && openJSON.String != "" {
		snap.Open = &models.OpenSession{}
		if err := json.Unmarshal([]byte(openJSON.String), snap.Open); err != nil {
			return models.StatsSnapshot{}, false, fmt.Errorf("unmarshal open session: %w", err)
		}
	}

	return snap, true, nil
}
