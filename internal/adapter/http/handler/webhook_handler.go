package handler

import (
	"pyra-workspace/internal/adapter/http/dto"
	"pyra-workspace/internal/core/domain"
	"pyra-workspace/internal/core/ports"
	"pyra-workspace/pkg/apperror"
	"pyra-workspace/pkg/response"

	"github.com/gin-gonic/gin"
)

// WebhookHandler handles webhook registration and delivery endpoints.
type WebhookHandler struct {
	webhookSvc ports.WebhookService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(webhookSvc ports.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookSvc: webhookSvc}
}

// Create handles POST /api/v1/admin/webhooks.
func (h *WebhookHandler) Create(c *gin.Context) {
	var req dto.WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	if req.Secret == "" {
		response.Error(c, apperror.Validation("secret is required"))
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	webhook := &domain.Webhook{
		Name:    req.Name,
		URL:     req.URL,
		Secret:  req.Secret,
		Events:  req.Events,
		Enabled: enabled,
	}
	if err := h.webhookSvc.CreateWebhook(c.Request.Context(), webhook, actorID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, webhook)
}

// List handles GET /api/v1/admin/webhooks.
func (h *WebhookHandler) List(c *gin.Context) {
	webhooks, err := h.webhookSvc.ListWebhooks(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, webhooks)
}

// Get handles GET /api/v1/admin/webhooks/:id.
func (h *WebhookHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		response.Error(c, apperror.Validation("invalid webhook id"))
		return
	}

	webhook, err := h.webhookSvc.GetWebhook(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, webhook)
}

// Update handles PUT /api/v1/admin/webhooks/:id. An empty secret keeps
// the existing signing key.
func (h *WebhookHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		response.Error(c, apperror.Validation("invalid webhook id"))
		return
	}

	var req dto.WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	webhook := &domain.Webhook{
		ID:      id,
		Name:    req.Name,
		URL:     req.URL,
		Secret:  req.Secret,
		Events:  req.Events,
		Enabled: enabled,
	}
	if err := h.webhookSvc.UpdateWebhook(c.Request.Context(), webhook, actorID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, webhook)
}

// SetEnabled handles PATCH /api/v1/admin/webhooks/:id/enabled.
func (h *WebhookHandler) SetEnabled(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		response.Error(c, apperror.Validation("invalid webhook id"))
		return
	}

	var req dto.EnabledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	webhook, err := h.webhookSvc.SetEnabled(c.Request.Context(), id, *req.Enabled, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, webhook)
}

// Delete handles DELETE /api/v1/admin/webhooks/:id.
func (h *WebhookHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		response.Error(c, apperror.Validation("invalid webhook id"))
		return
	}

	if err := h.webhookSvc.DeleteWebhook(c.Request.Context(), id, actorID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListDeliveries handles GET /api/v1/admin/webhooks/:id/deliveries.
func (h *WebhookHandler) ListDeliveries(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		response.Error(c, apperror.Validation("invalid webhook id"))
		return
	}

	deliveries, err := h.webhookSvc.ListDeliveries(c.Request.Context(), id, queryInt(c, "limit", 50))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, deliveries)
}

// RunRetries handles POST /api/v1/admin/webhooks/retries/run. It performs
// one retry sweep and reports how many deliveries were attempted. The
// worker runs the same sweep on a timer; this endpoint exists for manual
// operation.
func (h *WebhookHandler) RunRetries(c *gin.Context) {
	attempted, err := h.webhookSvc.ProcessRetries(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"attempted": attempted})
}
