package engine

import "time"

type powerSample struct {
	at time.Time
	w  float64
}

// smoother keeps a time-weighted moving average of raw power over a trailing
// window. Each sample is weighted by the time until the next sample (or until
// "now" for the latest one), so irregular sampling intervals are handled
// correctly. A zero window passes raw values through unchanged.
type smoother struct {
	window  time.Duration
	samples []powerSample
	last    float64
}

func newSmoother(window time.Duration) *smoother {
	return &smoother{window: window}
}

// Add records a sample and returns the smoothed value as of its timestamp.
// Timestamps must be non-decreasing; the caller validates ordering.
func (s *smoother) Add(at time.Time, powerW float64) float64 {
	s.last = powerW
	if s.window <= 0 {
		return powerW
	}

	s.samples = append(s.samples, powerSample{at: at, w: powerW})
	s.evict(at)
	return s.average(at)
}

// Value returns the smoothed value as of now without recording a sample.
func (s *smoother) Value(now time.Time) float64 {
	if s.window <= 0 {
		return s.last
	}
	s.evict(now)
	return s.average(now)
}

// evict drops samples that no longer contribute to the window. The newest
// sample at or before the cutoff is kept so the step function still covers
// the start of the window.
func (s *smoother) evict(now time.Time) {
	cutoff := now.Add(-s.window)
	i := 0
	for i < len(s.samples)-1 && !s.samples[i+1].at.After(cutoff) {
		i++
	}
	if i > 0 {
		s.samples = append(s.samples[:0], s.samples[i:]...)
	}
}

func (s *smoother) average(now time.Time) float64 {
	if len(s.samples) == 0 {
		return s.last
	}

	cutoff := now.Add(-s.window)
	var weighted, covered float64
	for i, smp := range s.samples {
		start := smp.at
		if start.Before(cutoff) {
			start = cutoff
		}
		end := now
		if i < len(s.samples)-1 {
			end = s.samples[i+1].at
		}
		if !end.After(start) {
			continue
		}
		dt := end.Sub(start).Seconds()
		weighted += smp.w * dt
		covered += dt
	}
	if covered <= 0 {
		// All samples share the latest instant.
		return s.samples[len(s.samples)-1].w
	}
	return weighted / covered
}
