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

type projectService struct {
	projectRepo ports.ProjectRepository
	clientRepo  ports.ClientRepository
	webhookSvc  ports.WebhookService
	activitySvc ports.ActivityService
}

// NewProjectService creates a new project service.
func NewProjectService(
	projectRepo ports.ProjectRepository,
	clientRepo ports.ClientRepository,
	webhookSvc ports.WebhookService,
	activitySvc ports.ActivityService,
) ports.ProjectService {
	return &projectService{
		projectRepo: projectRepo,
		clientRepo:  clientRepo,
		webhookSvc:  webhookSvc,
		activitySvc: activitySvc,
	}
}

func (s *projectService) Create(ctx context.Context, project *domain.Project, actorID *uuid.UUID) error {
	if project.Title == "" {
		return apperror.Validation("project title is required")
	}

	client, err := s.clientRepo.GetByID(ctx, project.ClientID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("check client: %w", err))
	}
	if client == nil {
		return apperror.ErrNotFound("Client")
	}

	now := time.Now().UTC()
	project.ID = uuid.New()
	project.Status = domain.ProjectStatusPlanning
	project.CreatedAt = now
	project.UpdatedAt = now

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return apperror.InternalError(fmt.Errorf("create project: %w", err))
	}

	s.webhookSvc.Dispatch(ctx, domain.EventProjectCreated, project)
	s.activitySvc.Record(ctx, actorID, domain.EventProjectCreated, "project", &project.ID, project.Title)
	return nil
}

func (s *projectService) Get(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get project: %w", err))
	}
	if project == nil {
		return nil, apperror.ErrNotFound("Project")
	}
	return project, nil
}

func (s *projectService) List(ctx context.Context, params ports.ProjectListParams) ([]domain.Project, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}
	return s.projectRepo.List(ctx, params)
}

// Update changes title, description and due date. Status moves go through
// ChangeStatus so the transition rules apply.
func (s *projectService) Update(ctx context.Context, project *domain.Project, actorID *uuid.UUID) error {
	existing, err := s.Get(ctx, project.ID)
	if err != nil {
		return err
	}

	existing.Title = project.Title
	existing.Description = project.Description
	existing.DueAt = project.DueAt
	existing.UpdatedAt = time.Now().UTC()

	if err := s.projectRepo.Update(ctx, existing); err != nil {
		return apperror.InternalError(fmt.Errorf("update project: %w", err))
	}
	*project = *existing

	s.activitySvc.Record(ctx, actorID, "project.updated", "project", &project.ID, project.Title)
	return nil
}

func (s *projectService) ChangeStatus(ctx context.Context, id uuid.UUID, target domain.ProjectStatus, actorID *uuid.UUID) (*domain.Project, error) {
	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !project.CanTransitionTo(target) {
		return nil, apperror.Validation(fmt.Sprintf("cannot move project from %s to %s", project.Status, target))
	}

	from := project.Status
	project.Status = target
	project.UpdatedAt = time.Now().UTC()

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update project status: %w", err))
	}

	s.webhookSvc.Dispatch(ctx, domain.EventProjectStatusChanged, project)
	s.activitySvc.Record(ctx, actorID, domain.EventProjectStatusChanged, "project", &project.ID,
		fmt.Sprintf("%s -> %s", from, target))

	return project, nil
}
