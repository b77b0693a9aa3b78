package engine

import (
	"fmt"
	"time"
)

// timeOfDay is minutes since local midnight.
type timeOfDay int

func parseTimeOfDay(s string) (timeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("parse %q as HH:MM: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time of day %q out of range", s)
	}
	return timeOfDay(h*60 + m), nil
}

// scheduleGate decides whether activation is currently permitted. The window
// is [start, end) in local time; end before start wraps past midnight, and a
// wrapping window counts as part of the day it starts on.
type scheduleGate struct {
	enabled bool
	start   timeOfDay
	end     timeOfDay
	days    map[time.Weekday]bool

	blocked bool
}

func newScheduleGate(cfg ScheduleConfig) *scheduleGate {
	g := &scheduleGate{enabled: cfg.Enabled, days: make(map[time.Weekday]bool)}
	if !cfg.Enabled {
		return g
	}
	g.start, _ = parseTimeOfDay(cfg.Start) // validated at construction
	g.end, _ = parseTimeOfDay(cfg.End)
	for _, d := range cfg.Days {
		g.days[d] = true
	}
	return g
}

// Allowed reports whether the wall-clock instant falls inside the window.
func (g *scheduleGate) Allowed(now time.Time) bool {
	if !g.enabled {
		return true
	}

	tod := timeOfDay(now.Hour()*60 + now.Minute())

	if g.start <= g.end {
		return g.days[now.Weekday()] && tod >= g.start && tod < g.end
	}

	// Wrapping window: the pre-midnight part belongs to today, the
	// post-midnight part to the day the window started.
	if tod >= g.start {
		return g.days[now.Weekday()]
	}
	if tod < g.end {
		return g.days[previousWeekday(now.Weekday())]
	}
	return false
}

// Evaluate updates the blocked flag and reports edge transitions:
// justBlocked is true only on the step the gate closed, justCleared on the
// step it reopened.
func (g *scheduleGate) Evaluate(now time.Time) (blocked, justBlocked, justCleared bool) {
	allowed := g.Allowed(now)
	switch {
	case !allowed && !g.blocked:
		g.blocked = true
		return true, true, false
	case allowed && g.blocked:
		g.blocked = false
		return false, false, true
	}
	return g.blocked, false, false
}

func (g *scheduleGate) Blocked() bool {
	return g.blocked
}

func previousWeekday(d time.Weekday) time.Weekday {
	if d == time.Sunday {
		return time.Saturday
	}
	return d - 1
}
