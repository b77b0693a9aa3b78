package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/hoizi89/advanced-switches/internal/models"
)

func TestStatsSave_Upsert(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewStatsSQLite(db)

	dur := 90
	energy := 0.25
	peak := 1500.0
	snap := models.StatsSnapshot{
		SessionsTotal:         3,
		SessionsToday:         1,
		EnergyTodayKWh:        0.25,
		EnergyTotalKWh:        1.5,
		LastSessionDurationS:  &dur,
		LastSessionEnergyKWh:  &energy,
		LastSessionPeakPowerW: &peak,
		CountedSessions:       3,
		DurationSumS:          270,
		EnergySumKWh:          1.5,
		TodayDate:             "2026-08-18",
	}

	mock.ExpectExec("INSERT INTO tracker_stats").
		WithArgs(
			1, 3, 1, 0.25, 1.5,
			`{"duration_s":90,"energy_kwh":0.25,"peak_power_w":1500}`,
			3, 270.0, 1.5, "2026-08-18",
			nil, nil, sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Save(ctx(t), snap); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestStatsLoad_NotFound(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewStatsSQLite(db)

	mock.ExpectQuery("SELECT sessions_total").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"sessions_total"}))

	_, found, err := repo.Load(ctx(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if found {
		t.Fatalf("found=true for an empty table")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestStatsLoad_DecodesJSONColumns(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewStatsSQLite(db)

	started := time.Date(2026, 8, 18, 10, 0, 0, 0, time.UTC)
	cols := []string{
		"sessions_total", "sessions_today", "energy_today_kwh", "energy_total_kwh",
		"last_session", "counted_sessions", "duration_sum_s", "energy_sum_kwh",
		"today_date", "history", "open_session",
	}
	rows := sqlmock.NewRows(cols).AddRow(
		5, 2, 0.7, 4.2,
		`{"duration_s":120,"energy_kwh":0.3,"peak_power_w":1700}`,
		5, 900.0, 4.2,
		"2026-08-18",
		`[{"id":"h1","started_at":"2026-08-18T09:00:00Z","ended_at":"2026-08-18T09:02:00Z","duration_s":120,"energy_kwh":0.3,"peak_power_w":1700,"counted":true}]`,
		`{"started_at":"2026-08-18T10:00:00Z","start_counter_kwh":42.0,"energy_kwh":0.1,"peak_power_w":1600}`,
	)

	mock.ExpectQuery("SELECT sessions_total").
		WithArgs(1).
		WillReturnRows(rows)

	snap, found, err := repo.Load(ctx(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !found {
		t.Fatalf("found=false for a populated row")
	}

	if snap.SessionsTotal != 5 || snap.TodayDate != "2026-08-18" {
		t.Fatalf("scalar columns: %+v", snap)
	}
	if snap.LastSessionDurationS == nil || *snap.LastSessionDurationS != 120 {
		t.Fatalf("last session not decoded: %+v", snap.LastSessionDurationS)
	}
	if len(snap.History) != 1 || snap.History[0].ID != "h1" {
		t.Fatalf("history not decoded: %+v", snap.History)
	}
	if snap.Open == nil || !snap.Open.StartedAt.Equal(started) || snap.Open.StartCounter != 42.0 {
		t.Fatalf("open session not decoded: %+v", snap.Open)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestStatsLoad_NullOptionalColumns(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewStatsSQLite(db)

	cols := []string{
		"sessions_total", "sessions_today", "energy_today_kwh", "energy_total_kwh",
		"last_session", "counted_sessions", "duration_sum_s", "energy_sum_kwh",
		"today_date", "history", "open_session",
	}
	rows := sqlmock.NewRows(cols).AddRow(
		0, 0, 0.0, 0.0, nil, 0, 0.0, 0.0, "2026-08-18", nil, nil,
	)

	mock.ExpectQuery("SELECT sessions_total").
		WithArgs(1).
		WillReturnRows(rows)

	snap, found, err := repo.Load(ctx(t))
	if err != nil || !found {
		t.Fatalf("Load: found=%v err=%v", found, err)
	}
	if snap.LastSessionDurationS != nil || snap.History != nil || snap.Open != nil {
		t.Fatalf("null columns decoded to non-nil: %+v", snap)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}
