package models

import "time"

// TrackerEvent is a single append-only log entry.
type TrackerEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // TRANSITION | SESSION_END | COMMAND | SCHEDULE | RESET
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
