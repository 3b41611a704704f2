package service

import (
	"context"
	"time"

	"pyra-workspace/internal/core/domain"
	"pyra-workspace/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type activityService struct {
	repo ports.ActivityRepository
	log  zerolog.Logger
}

// NewActivityService creates a new activity service.
func NewActivityService(repo ports.ActivityRepository, log zerolog.Logger) ports.ActivityService {
	return &activityService{repo: repo, log: log}
}

// Record appends one audit entry. It never fails the caller: persistence
// errors are logged and swallowed so business operations do not depend on
// the audit trail being writable.
func (s *activityService) Record(ctx context.Context, actorID *uuid.UUID, action, entityType string, entityID *uuid.UUID, detail string) {
	entry := &domain.ActivityLog{
		ID:         uuid.New(),
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     detail,
		CreatedAt:  time.Now().UTC(),
	}

	s.log.Info().
		Str("action", action).
		Str("entity_type", entityType).
		Msg("activity")

	if err := s.repo.Create(ctx, entry); err != nil {
		s.log.Warn().Err(err).Str("action", action).Msg("failed to persist activity log")
	}
}

// List returns a page of the audit feed.
func (s *activityService) List(ctx context.Context, params ports.ActivityListParams) ([]domain.ActivityLog, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}
	return s.repo.List(ctx, params)
}
