package service

import (
	"context"
	"fmt"

	"pyra-workspace/internal/core/ports"
	"pyra-workspace/pkg/apperror"

	"github.com/google/uuid"
)

type settingsService struct {
	settingsRepo ports.SettingsRepository
	activitySvc  ports.ActivityService
}

// NewSettingsService creates a new settings service.
func NewSettingsService(settingsRepo ports.SettingsRepository, activitySvc ports.ActivityService) ports.SettingsService {
	return &settingsService{settingsRepo: settingsRepo, activitySvc: activitySvc}
}

func (s *settingsService) Get(ctx context.Context, key string) (string, error) {
	value, err := s.settingsRepo.Get(ctx, key)
	if err != nil {
		return "", apperror.InternalError(fmt.Errorf("get setting: %w", err))
	}
	return value, nil
}

func (s *settingsService) Set(ctx context.Context, key, value string, actorID *uuid.UUID) error {
	if key == "" {
		return apperror.Validation("setting key is required")
	}

	if err := s.settingsRepo.Set(ctx, key, value); err != nil {
		return apperror.InternalError(fmt.Errorf("set setting: %w", err))
	}

	s.activitySvc.Record(ctx, actorID, "settings.updated", "settings", nil, key)
	return nil
}

func (s *settingsService) All(ctx context.Context) (map[string]string, error) {
	settings, err := s.settingsRepo.All(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list settings: %w", err))
	}
	return settings, nil
}
