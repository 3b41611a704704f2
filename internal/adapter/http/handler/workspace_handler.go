package handler

import (
	"pyra-workspace/internal/adapter/http/dto"
	"pyra-workspace/internal/core/ports"
	"pyra-workspace/pkg/apperror"
	"pyra-workspace/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WorkspaceHandler handles the activity feed and workspace settings.
type WorkspaceHandler struct {
	activitySvc ports.ActivityService
	settingsSvc ports.SettingsService
}

// NewWorkspaceHandler creates a new WorkspaceHandler.
func NewWorkspaceHandler(activitySvc ports.ActivityService, settingsSvc ports.SettingsService) *WorkspaceHandler {
	return &WorkspaceHandler{activitySvc: activitySvc, settingsSvc: settingsSvc}
}

// ListActivity handles GET /api/v1/admin/activity.
func (h *WorkspaceHandler) ListActivity(c *gin.Context) {
	params := ports.ActivityListParams{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
	}
	if raw := c.Query("entity_type"); raw != "" {
		params.EntityType = &raw
	}
	if raw := c.Query("actor_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Error(c, apperror.Validation("invalid actor_id"))
			return
		}
		params.ActorID = &id
	}

	entries, total, err := h.activitySvc.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ActivityListResponse{
		Items:      entries,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages(total, params.PageSize),
	})
}

// ListSettings handles GET /api/v1/admin/settings.
func (h *WorkspaceHandler) ListSettings(c *gin.Context) {
	settings, err := h.settingsSvc.All(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, settings)
}

// GetSetting handles GET /api/v1/admin/settings/:key.
func (h *WorkspaceHandler) GetSetting(c *gin.Context) {
	key := c.Param("key")
	value, err := h.settingsSvc.Get(c.Request.Context(), key)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"key": key, "value": value})
}

// PutSetting handles PUT /api/v1/admin/settings/:key.
func (h *WorkspaceHandler) PutSetting(c *gin.Context) {
	var req dto.SettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	key := c.Param("key")
	if err := h.settingsSvc.Set(c.Request.Context(), key, req.Value, actorID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"key": key, "value": req.Value})
}
