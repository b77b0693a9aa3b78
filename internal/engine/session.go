package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/hoizi89/advanced-switches/internal/models"
)

const localDateLayout = "2006-01-02"

// session is one in-flight usage cycle.
type session struct {
	startedAt    time.Time
	startCounter float64
	energyKWh    float64
	peakPowerW   float64
}

// sessionTracker owns the open session and the aggregate statistics it rolls
// closed sessions into.
type sessionTracker struct {
	open *session

	sessionsTotal  int
	sessionsToday  int
	energyTodayKWh float64
	energyTotalKWh float64

	lastDurationS  *int
	lastEnergyKWh  *float64
	lastPeakPowerW *float64

	countedSessions int
	durationSumS    float64
	energySumKWh    float64

	todayDate string
	history   []models.SessionRecord
}

// newSessionTracker starts with an unset calendar day; the engine fixes it
// from the first observed timestamp.
func newSessionTracker() *sessionTracker {
	return &sessionTracker{}
}

func (t *sessionTracker) openSession(now time.Time, counterKWh, rawPowerW float64) {
	t.open = &session{
		startedAt:    now,
		startCounter: counterKWh,
		peakPowerW:   rawPowerW,
	}
}

// observe feeds a reading into the open session: peak uses the raw value,
// energy the accumulator's reset-safe delta. No-op without an open session.
func (t *sessionTracker) observe(rawPowerW, energyDeltaKWh float64) {
	if t.open == nil {
		return
	}
	if rawPowerW > t.open.peakPowerW {
		t.open.peakPowerW = rawPowerW
	}
	t.open.energyKWh += energyDeltaKWh
}

// closeSession commits the open session. Sessions shorter than minSession are
// not counted, but their energy is still folded into the daily and lifetime
// totals since consumption happened regardless. Returns nil without an open
// session.
func (t *sessionTracker) closeSession(now time.Time, minSession time.Duration) *models.SessionRecord {
	if t.open == nil {
		return nil
	}
	s := t.open
	t.open = nil

	duration := now.Sub(s.startedAt)
	rec := models.SessionRecord{
		ID:         uuid.NewString(),
		StartedAt:  s.startedAt,
		EndedAt:    now,
		DurationS:  int(duration.Seconds()),
		EnergyKWh:  s.energyKWh,
		PeakPowerW: s.peakPowerW,
		Counted:    duration >= minSession,
	}

	t.energyTodayKWh += rec.EnergyKWh
	t.energyTotalKWh += rec.EnergyKWh

	if rec.Counted {
		t.sessionsTotal++
		t.sessionsToday++

		d, e, p := rec.DurationS, rec.EnergyKWh, rec.PeakPowerW
		t.lastDurationS = &d
		t.lastEnergyKWh = &e
		t.lastPeakPowerW = &p

		t.countedSessions++
		t.durationSumS += float64(rec.DurationS)
		t.energySumKWh += rec.EnergyKWh

		t.history = append([]models.SessionRecord{rec}, t.history...)
		if len(t.history) > SessionHistorySize {
			t.history = t.history[:SessionHistorySize]
		}
	}

	return &rec
}

// rollover resets the daily counters when the local calendar day changes.
// Lifetime statistics are untouched.
func (t *sessionTracker) rollover(now time.Time) bool {
	today := now.Format(localDateLayout)
	if today == t.todayDate {
		return false
	}
	t.todayDate = today
	t.sessionsToday = 0
	t.energyTodayKWh = 0
	return true
}

func (t *sessionTracker) averages() (durationS, energyKWh *float64) {
	if t.countedSessions == 0 {
		return nil, nil
	}
	d := t.durationSumS / float64(t.countedSessions)
	e := t.energySumKWh / float64(t.countedSessions)
	return &d, &e
}

func (t *sessionTracker) snapshot() models.StatsSnapshot {
	snap := models.StatsSnapshot{
		SessionsTotal:   t.sessionsTotal,
		SessionsToday:   t.sessionsToday,
		EnergyTodayKWh:  t.energyTodayKWh,
		EnergyTotalKWh:  t.energyTotalKWh,
		CountedSessions: t.countedSessions,
		DurationSumS:    t.durationSumS,
		EnergySumKWh:    t.energySumKWh,
		TodayDate:       t.todayDate,
		History:         append([]models.SessionRecord(nil), t.history...),
	}
	snap.LastSessionDurationS = copyIntPtr(t.lastDurationS)
	snap.LastSessionEnergyKWh = copyFloatPtr(t.lastEnergyKWh)
	snap.LastSessionPeakPowerW = copyFloatPtr(t.lastPeakPowerW)
	if t.open != nil {
		snap.Open = &models.OpenSession{
			StartedAt:    t.open.startedAt,
			StartCounter: t.open.startCounter,
			EnergyKWh:    t.open.energyKWh,
			PeakPowerW:   t.open.peakPowerW,
		}
	}
	return snap
}

func (t *sessionTracker) restore(snap models.StatsSnapshot) {
	t.sessionsTotal = snap.SessionsTotal
	t.sessionsToday = snap.SessionsToday
	t.energyTodayKWh = snap.EnergyTodayKWh
	t.energyTotalKWh = snap.EnergyTotalKWh
	t.countedSessions = snap.CountedSessions
	t.durationSumS = snap.DurationSumS
	t.energySumKWh = snap.EnergySumKWh
	if snap.TodayDate != "" {
		t.todayDate = snap.TodayDate
	}
	t.history = append([]models.SessionRecord(nil), snap.History...)
	if len(t.history) > SessionHistorySize {
		t.history = t.history[:SessionHistorySize]
	}
	t.lastDurationS = copyIntPtr(snap.LastSessionDurationS)
	t.lastEnergyKWh = copyFloatPtr(snap.LastSessionEnergyKWh)
	t.lastPeakPowerW = copyFloatPtr(snap.LastSessionPeakPowerW)
	if snap.Open != nil {
		t.open = &session{
			startedAt:    snap.Open.StartedAt,
			startCounter: snap.Open.StartCounter,
			energyKWh:    snap.Open.EnergyKWh,
			peakPowerW:   snap.Open.PeakPowerW,
		}
	}
}

// resetAll clears every counter including lifetime totals.
func (t *sessionTracker) resetAll() {
	*t = sessionTracker{todayDate: t.todayDate, open: t.open}
}

// resetToday clears only the daily counters.
func (t *sessionTracker) resetToday() {
	t.sessionsToday = 0
	t.energyTodayKWh = 0
}

func copyIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyFloatPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
