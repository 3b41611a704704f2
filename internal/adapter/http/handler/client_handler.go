package handler

import (
	"pyra-workspace/internal/adapter/http/dto"
	"pyra-workspace/internal/core/domain"
	"pyra-workspace/internal/core/ports"
	"pyra-workspace/pkg/apperror"
	"pyra-workspace/pkg/response"

	"github.com/gin-gonic/gin"
)

// ClientHandler handles agency-client management endpoints.
type ClientHandler struct {
	clientSvc ports.ClientService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(clientSvc ports.ClientService) *ClientHandler {
	return &ClientHandler{clientSvc: clientSvc}
}

// Create handles POST /api/v1/admin/clients.
func (h *ClientHandler) Create(c *gin.Context) {
	var req dto.ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	client := &domain.Client{
		Name:    req.Name,
		Company: req.Company,
		Email:   req.Email,
		Phone:   req.Phone,
		Notes:   req.Notes,
	}
	if err := h.clientSvc.Create(c.Request.Context(), client, actorID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, client)
}

// List handles GET /api/v1/admin/clients.
func (h *ClientHandler) List(c *gin.Context) {
	clients, err := h.clientSvc.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, clients)
}

// Get handles GET /api/v1/admin/clients/:id.
func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		response.Error(c, apperror.Validation("invalid client id"))
		return
	}

	client, err := h.clientSvc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, client)
}

// Update handles PUT /api/v1/admin/clients/:id.
func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		response.Error(c, apperror.Validation("invalid client id"))
		return
	}

	var req dto.ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	client := &domain.Client{
		ID:      id,
		Name:    req.Name,
		Company: req.Company,
		Email:   req.Email,
		Phone:   req.Phone,
		Notes:   req.Notes,
	}
	if err := h.clientSvc.Update(c.Request.Context(), client, actorID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, client)
}

// Delete handles DELETE /api/v1/admin/clients/:id.
func (h *ClientHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		response.Error(c, apperror.Validation("invalid client id"))
		return
	}

	if err := h.clientSvc.Delete(c.Request.Context(), id, actorID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
