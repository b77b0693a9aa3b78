package service

import (
	"context"
	"errors"
	"time"

	"github.com/hoizi89/advanced-switches/internal/models"
	"github.com/hoizi89/advanced-switches/internal/repository"
)

// SessionFilter narrows session history queries.
type SessionFilter struct {
	From        time.Time // inclusive; zero means no lower bound
	To          time.Time // inclusive; zero means no upper bound
	CountedOnly bool      // drop below-minimum discarded cycles
}

var errInvalidSessionRange = errors.New("invalid time range: From must be <= To")

type SessionLogService struct {
	sessionRepo repository.SessionRepo
}

func NewSessionLogService(sessionRepo repository.SessionRepo) *SessionLogService {
	return &SessionLogService{sessionRepo: sessionRepo}
}

func (s *SessionLogService) List(ctx context.Context, f SessionFilter) ([]models.SessionRecord, error) {
	from, to := normalizeToUTC(f.From), normalizeToUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, errInvalidSessionRange
	}
	return s.sessionRepo.List(ctx, from, to, f.CountedOnly)
}

// normalizeToUTC returns t in UTC, preserving zero values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
