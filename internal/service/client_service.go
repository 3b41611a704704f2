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

type clientService struct {
	clientRepo  ports.ClientRepository
	activitySvc ports.ActivityService
}

// NewClientService creates a new client service.
func NewClientService(clientRepo ports.ClientRepository, activitySvc ports.ActivityService) ports.ClientService {
	return &clientService{clientRepo: clientRepo, activitySvc: activitySvc}
}

func (s *clientService) Create(ctx context.Context, client *domain.Client, actorID *uuid.UUID) error {
	if client.Name == "" {
		return apperror.Validation("client name is required")
	}

	now := time.Now().UTC()
	client.ID = uuid.New()
	client.CreatedAt = now
	client.UpdatedAt = now

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return apperror.InternalError(fmt.Errorf("create client: %w", err))
	}

	s.activitySvc.Record(ctx, actorID, "client.created", "client", &client.ID, client.Name)
	return nil
}

func (s *clientService) Get(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get client: %w", err))
	}
	if client == nil {
		return nil, apperror.ErrNotFound("Client")
	}
	return client, nil
}

func (s *clientService) List(ctx context.Context) ([]domain.Client, error) {
	clients, err := s.clientRepo.List(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list clients: %w", err))
	}
	return clients, nil
}

func (s *clientService) Update(ctx context.Context, client *domain.Client, actorID *uuid.UUID) error {
	existing, err := s.Get(ctx, client.ID)
	if err != nil {
		return err
	}

	existing.Name = client.Name
	existing.Company = client.Company
	existing.Email = client.Email
	existing.Phone = client.Phone
	existing.Notes = client.Notes
	existing.UpdatedAt = time.Now().UTC()

	if err := s.clientRepo.Update(ctx, existing); err != nil {
		return apperror.InternalError(fmt.Errorf("update client: %w", err))
	}
	*client = *existing

	s.activitySvc.Record(ctx, actorID, "client.updated", "client", &client.ID, client.Name)
	return nil
}

func (s *clientService) Delete(ctx context.Context, id uuid.UUID, actorID *uuid.UUID) error {
	client, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.clientRepo.Delete(ctx, id); err != nil {
		return apperror.InternalError(fmt.Errorf("delete client: %w", err))
	}

	s.activitySvc.Record(ctx, actorID, "client.deleted", "client", &id, client.Name)
	return nil
}
