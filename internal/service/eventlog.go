package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hoizi89/advanced-switches/internal/models"
	"github.com/hoizi89/advanced-switches/internal/repository"
)

// LogFilter supports event history filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "TRANSITION", "SESSION_END", "COMMAND", "SCHEDULE", "RESET"
}

var errInvalidTimeRange = errors.New("invalid time range: From must be <= To")

type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.TrackerEvent, error) {
	from, to := normalizeToUTC(f.From), normalizeToUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, errInvalidTimeRange
	}
	return s.eventRepo.List(ctx, from, to, strings.TrimSpace(strings.ToUpper(f.Type)))
}
