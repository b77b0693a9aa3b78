package engine

import "time"

// pending is a candidate level change waiting out its debounce delay.
type pending struct {
	level int
	since time.Time
}

// debouncer commits level changes only after the qualifying condition has held
// continuously for the delay the mode machine assigns to that transition.
// A candidate that changes mid-wait restarts the timer; a candidate that
// reverts to the committed level is dropped. This is the same
// pending/stable scheme used for contact debouncing, generalized to multiple
// levels with per-transition delays.
type debouncer struct {
	committed int
	pend      *pending
	delayFor  func(from, to int) time.Duration
}

func newDebouncer(delayFor func(from, to int) time.Duration) *debouncer {
	return &debouncer{delayFor: delayFor}
}

// Observe feeds the instantaneous candidate level at the given time and
// returns the committed level plus whether a transition was committed on this
// call.
func (d *debouncer) Observe(candidate int, now time.Time) (level int, transitioned bool) {
	if candidate == d.committed {
		// Condition reverted before the delay elapsed: intentional noise rejection.
		d.pend = nil
		return d.committed, false
	}

	if d.pend == nil || d.pend.level != candidate {
		d.pend = &pending{level: candidate, since: now}
	}

	if now.Sub(d.pend.since) >= d.delayFor(d.committed, candidate) {
		d.committed = candidate
		d.pend = nil
		return d.committed, true
	}

	return d.committed, false
}

// Level returns the committed level without observing anything.
func (d *debouncer) Level() int {
	return d.committed
}

// Reset discards the pending candidate and forces the committed level.
func (d *debouncer) Reset(level int) {
	d.committed = level
	d.pend = nil
}
