package engine

import (
	"testing"
	"time"
)

func TestAutoOffTimer_DisabledNeverFires(t *testing.T) {
	base := time.Date(2026, 8, 18, 10, 0, 0, 0, time.UTC)
	timer := newAutoOffTimer(AutoOffConfig{Enabled: false, After: time.Minute})

	timer.SwitchOn(base)
	if timer.Expired(base.Add(time.Hour)) {
		t.Fatalf("disabled timer fired")
	}
	if timer.Remaining(base) != nil {
		t.Fatalf("disabled timer reported remaining time")
	}
}

func TestAutoOffTimer_FiresOnceAndDisarms(t *testing.T) {
	base := time.Date(2026, 8, 18, 10, 0, 0, 0, time.UTC)
	timer := newAutoOffTimer(AutoOffConfig{Enabled: true, After: time.Minute})

	timer.SwitchOn(base)
	if timer.Expired(base.Add(59 * time.Second)) {
		t.Fatalf("fired before the deadline")
	}
	if !timer.Expired(base.Add(time.Minute)) {
		t.Fatalf("did not fire at the deadline")
	}
	// One-shot: no re-fire until the switch turns on again.
	if timer.Expired(base.Add(2 * time.Minute)) {
		t.Fatalf("fired twice for one switch-on")
	}
	timer.SwitchOn(base.Add(3 * time.Minute))
	if !timer.Expired(base.Add(4 * time.Minute)) {
		t.Fatalf("did not re-arm after the next switch-on")
	}
}

func TestAutoOffTimer_RepeatedSwitchOnKeepsDeadline(t *testing.T) {
	base := time.Date(2026, 8, 18, 10, 0, 0, 0, time.UTC)
	timer := newAutoOffTimer(AutoOffConfig{Enabled: true, After: time.Minute})

	timer.SwitchOn(base)
	timer.SwitchOn(base.Add(30 * time.Second)) // already armed, deadline unchanged
	if !timer.Expired(base.Add(time.Minute)) {
		t.Fatalf("deadline slid on repeated switch-on reports")
	}
}

func TestAutoOffTimer_Remaining(t *testing.T) {
	base := time.Date(2026, 8, 18, 10, 0, 0, 0, time.UTC)
	timer := newAutoOffTimer(AutoOffConfig{Enabled: true, After: time.Minute})

	if timer.Remaining(base) != nil {
		t.Fatalf("remaining reported while switch is off")
	}

	timer.SwitchOn(base)
	if got := timer.Remaining(base.Add(20 * time.Second)); got == nil || *got != 40 {
		t.Fatalf("remaining = %v, want 40", got)
	}
	if got := timer.Remaining(base.Add(2 * time.Minute)); got == nil || *got != 0 {
		t.Fatalf("remaining past deadline = %v, want 0", got)
	}

	timer.SwitchOff()
	if timer.Remaining(base) != nil {
		t.Fatalf("remaining reported after switch-off")
	}
}
