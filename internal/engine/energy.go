package engine

// energyAccumulator converts a cumulative, reset-prone meter into safe
// non-negative deltas. A drop in the counter is treated as a meter restart
// from zero: only the post-reset value is added, never a negative delta, and
// the pre-reset energy is not double-counted.
type energyAccumulator struct {
	lastSeen float64
	seeded   bool
}

// Observe feeds the current counter value and returns the energy consumed
// since the previous observation (zero for the first one).
func (a *energyAccumulator) Observe(counterKWh float64) float64 {
	if !a.seeded {
		a.lastSeen = counterKWh
		a.seeded = true
		return 0
	}

	var delta float64
	if counterKWh >= a.lastSeen {
		delta = counterKWh - a.lastSeen
	} else {
		delta = counterKWh // counter reset, assume it restarted from zero
	}
	a.lastSeen = counterKWh
	return delta
}
