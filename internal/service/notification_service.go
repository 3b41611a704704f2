package service

import (
	"context"
	"fmt"
	"time"

	"pyra-workspace/internal/core/domain"
	"pyra-workspace/internal/core/ports"
	"pyra-workspace/pkg/apperror"

	"github.com/google/uuid"
)

type notificationService struct {
	repo ports.NotificationRepository
}

// NewNotificationService creates a new notification service.
func NewNotificationService(repo ports.NotificationRepository) ports.NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) Notify(ctx context.Context, n *domain.Notification) error {
	if n.TitleAr == "" {
		return apperror.Validation("arabic title is required")
	}

	n.ID = uuid.New()
	n.ReadAt = nil
	n.CreatedAt = time.Now().UTC()

	if err := s.repo.Create(ctx, n); err != nil {
		return apperror.InternalError(fmt.Errorf("create notification: %w", err))
	}
	return nil
}

func (s *notificationService) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Notification, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}
	notifications, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list notifications: %w", err))
	}
	return notifications, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("count unread: %w", err))
	}
	return count, nil
}

// MarkRead is scoped to the owning user so one account cannot touch
// another account's notifications.
func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, userID, notificationID); err != nil {
		return apperror.InternalError(fmt.Errorf("mark read: %w", err))
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return apperror.InternalError(fmt.Errorf("mark all read: %w", err))
	}
	return nil
}
