package engine

import "testing"

func TestEnergyAccumulator_SeedsOnFirstObservation(t *testing.T) {
	var a energyAccumulator
	if got := a.Observe(12.5); got != 0 {
		t.Fatalf("first observation delta = %v, want 0", got)
	}
	if got := a.Observe(13.0); !almostEqual(got, 0.5, 1e-9) {
		t.Fatalf("delta = %v, want 0.5", got)
	}
}

func TestEnergyAccumulator_CounterReset(t *testing.T) {
	var a energyAccumulator
	a.Observe(40.0)
	a.Observe(40.2)

	// A dropped counter means the meter restarted from zero: the post-reset
	// value is the consumption, never a negative delta.
	if got := a.Observe(0.3); !almostEqual(got, 0.3, 1e-9) {
		t.Fatalf("post-reset delta = %v, want 0.3", got)
	}
	if got := a.Observe(0.5); !almostEqual(got, 0.2, 1e-9) {
		t.Fatalf("delta after re-baseline = %v, want 0.2", got)
	}
}

func TestEnergyAccumulator_TotalNeverNegative(t *testing.T) {
	var a energyAccumulator
	values := []float64{5, 5.5, 0.1, 0.4, 0.2, 0.9}
	var total float64
	for _, v := range values {
		d := a.Observe(v)
		if d < 0 {
			t.Fatalf("negative delta %v for counter %v", d, v)
		}
		total += d
	}
	// 0.5 + 0.1 + 0.3 + 0.2 + 0.7
	if !almostEqual(total, 1.8, 1e-9) {
		t.Fatalf("accumulated total = %v, want 1.8", total)
	}
}
