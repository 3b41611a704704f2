package handler

import (
	"pyra-workspace/internal/adapter/http/dto"
	"pyra-workspace/internal/core/domain"
	"pyra-workspace/internal/core/ports"
	"pyra-workspace/pkg/apperror"
	"pyra-workspace/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProjectHandler handles project endpoints for both the admin dashboard
// and the client portal.
type ProjectHandler struct {
	projectSvc ports.ProjectService
	userRepo   ports.UserRepository
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectSvc ports.ProjectService, userRepo ports.UserRepository) *ProjectHandler {
	return &ProjectHandler{projectSvc: projectSvc, userRepo: userRepo}
}

// Create handles POST /api/v1/admin/projects.
func (h *ProjectHandler) Create(c *gin.Context) {
	var req dto.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid client_id"))
		return
	}

	project := &domain.Project{
		ClientID:    clientID,
		Title:       req.Title,
		Description: req.Description,
		DueAt:       req.DueAt,
	}
	if err := h.projectSvc.Create(c.Request.Context(), project, actorID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, project)
}

// List handles GET /api/v1/projects. Admins see everything and may filter
// by client_id and status; portal users are pinned to their own client.
func (h *ProjectHandler) List(c *gin.Context) {
	params := ports.ProjectListParams{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
	}

	if raw := c.Query("status"); raw != "" {
		status := domain.ProjectStatus(raw)
		params.Status = &status
	}

	if isAdmin(c) {
		if raw := c.Query("client_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				response.Error(c, apperror.Validation("invalid client_id"))
				return
			}
			params.ClientID = &id
		}
	} else {
		clientID, err := h.portalClientID(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		params.ClientID = clientID
	}

	projects, total, err := h.projectSvc.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ProjectListResponse{
		Items:      projects,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages(total, params.PageSize),
	})
}

// Get handles GET /api/v1/projects/:id.
func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		response.Error(c, apperror.Validation("invalid project id"))
		return
	}

	project, err := h.projectSvc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	if !isAdmin(c) {
		clientID, err := h.portalClientID(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		if clientID == nil || project.ClientID != *clientID {
			response.Error(c, apperror.ErrForbidden())
			return
		}
	}

	response.OK(c, project)
}

// Update handles PUT /api/v1/admin/projects/:id.
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		response.Error(c, apperror.Validation("invalid project id"))
		return
	}

	var req dto.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	project := &domain.Project{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		DueAt:       req.DueAt,
	}
	if err := h.projectSvc.Update(c.Request.Context(), project, actorID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, project)
}

// ChangeStatus handles PATCH /api/v1/admin/projects/:id/status.
func (h *ProjectHandler) ChangeStatus(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		response.Error(c, apperror.Validation("invalid project id"))
		return
	}

	var req dto.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	project, err := h.projectSvc.ChangeStatus(c.Request.Context(), id, domain.ProjectStatus(req.Status), actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, project)
}

// portalClientID resolves the client the authenticated portal user
// belongs to. A portal account without a client link sees nothing.
func (h *ProjectHandler) portalClientID(c *gin.Context) (*uuid.UUID, error) {
	uid := actorID(c)
	if uid == nil {
		return nil, apperror.ErrInvalidToken()
	}
	user, err := h.userRepo.GetByID(c.Request.Context(), *uid)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if user == nil || user.ClientID == nil {
		return nil, apperror.ErrForbidden()
	}
	return user.ClientID, nil
}
