package service

import (
	"context"
	"time"
)

// RunnerService is the periodic clock the host owes the engine: debounce,
// grace, auto-off, schedule and day-rollover deadlines must be evaluated even
// when no reading arrives.
type RunnerService struct {
	tracker Tracker
}

func NewRunnerService(tracker Tracker) *RunnerService {
	return &RunnerService{tracker: tracker}
}

// Run ticks at the given interval until ctx is canceled. Tick errors are
// persistence-side and transient; the next tick retries.
func (s *RunnerService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			_, _ = s.tracker.Tick(ctx, now)
		}
	}
}
