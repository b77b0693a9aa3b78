package engine

import "time"

// autoOffTimer fires a one-shot forced OFF a fixed duration after the switch
// was observed turning on. It re-arms only on the next off->on transition.
type autoOffTimer struct {
	enabled bool
	after   time.Duration
	onSince *time.Time
}

func newAutoOffTimer(cfg AutoOffConfig) *autoOffTimer {
	return &autoOffTimer{enabled: cfg.Enabled, after: cfg.After}
}

// SwitchOn arms the timer; repeated calls while already armed keep the
// original deadline.
func (t *autoOffTimer) SwitchOn(now time.Time) {
	if !t.enabled || t.onSince != nil {
		return
	}
	at := now
	t.onSince = &at
}

// SwitchOff disarms the timer.
func (t *autoOffTimer) SwitchOff() {
	t.onSince = nil
}

// Expired reports whether the deadline passed; firing disarms the timer so it
// cannot re-fire until the switch turns on again.
func (t *autoOffTimer) Expired(now time.Time) bool {
	if !t.enabled || t.onSince == nil {
		return false
	}
	if now.Sub(*t.onSince) >= t.after {
		t.onSince = nil
		return true
	}
	return false
}

// Remaining returns seconds until the forced OFF, floored at zero, or nil
// when the feature is disabled or the switch is off.
func (t *autoOffTimer) Remaining(now time.Time) *int {
	if !t.enabled || t.onSince == nil {
		return nil
	}
	left := t.after - now.Sub(*t.onSince)
	if left < 0 {
		left = 0
	}
	s := int(left.Seconds())
	return &s
}
