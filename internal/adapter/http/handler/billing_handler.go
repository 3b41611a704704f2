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

// BillingHandler handles quote and invoice endpoints.
type BillingHandler struct {
	billingSvc ports.BillingService
	userRepo   ports.UserRepository
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(billingSvc ports.BillingService, userRepo ports.UserRepository) *BillingHandler {
	return &BillingHandler{billingSvc: billingSvc, userRepo: userRepo}
}

// CreateQuote handles POST /api/v1/admin/quotes.
func (h *BillingHandler) CreateQuote(c *gin.Context) {
	h.create(c, domain.DocumentTypeQuote)
}

// CreateInvoice handles POST /api/v1/admin/invoices.
func (h *BillingHandler) CreateInvoice(c *gin.Context) {
	h.create(c, domain.DocumentTypeInvoice)
}

func (h *BillingHandler) create(c *gin.Context, docType domain.DocumentType) {
	var req dto.DocumentRequest
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

	var projectID *uuid.UUID
	if req.ProjectID != nil {
		id, err := uuid.Parse(*req.ProjectID)
		if err != nil {
			response.Error(c, apperror.Validation("invalid project_id"))
			return
		}
		projectID = &id
	}

	items := make([]domain.LineItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = domain.LineItem{
			DescriptionAr: item.DescriptionAr,
			DescriptionEn: item.DescriptionEn,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
		}
	}

	doc, err := h.billingSvc.CreateDocument(c.Request.Context(), ports.CreateDocumentRequest{
		DocType:      docType,
		ClientID:     clientID,
		ProjectID:    projectID,
		Items:        items,
		TaxRate:      req.TaxRate,
		Notes:        req.Notes,
		DueAt:        req.DueAt,
		NumberPrefix: req.NumberPrefix,
		ActorID:      actorID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, doc)
}

// List handles GET /api/v1/documents. Portal users are pinned to their
// own client; admins may filter freely.
func (h *BillingHandler) List(c *gin.Context) {
	params := ports.DocumentListParams{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
	}

	if raw := c.Query("type"); raw != "" {
		docType := domain.DocumentType(raw)
		params.DocType = &docType
	}
	if raw := c.Query("status"); raw != "" {
		status := domain.DocumentStatus(raw)
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

	docs, total, err := h.billingSvc.ListDocuments(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.DocumentListResponse{
		Items:      docs,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages(total, params.PageSize),
	})
}

// Get handles GET /api/v1/documents/:id.
func (h *BillingHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		response.Error(c, apperror.Validation("invalid document id"))
		return
	}

	doc, err := h.billingSvc.GetDocument(c.Request.Context(), id)
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
		if clientID == nil || doc.ClientID != *clientID {
			response.Error(c, apperror.ErrForbidden())
			return
		}
	}

	response.OK(c, doc)
}

// ChangeStatus handles PATCH /api/v1/admin/documents/:id/status.
func (h *BillingHandler) ChangeStatus(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		response.Error(c, apperror.Validation("invalid document id"))
		return
	}

	var req dto.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	doc, err := h.billingSvc.ChangeStatus(c.Request.Context(), id, domain.DocumentStatus(req.Status), actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, doc)
}

// ConvertQuote handles POST /api/v1/admin/quotes/:id/convert.
func (h *BillingHandler) ConvertQuote(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		response.Error(c, apperror.Validation("invalid document id"))
		return
	}

	invoice, err := h.billingSvc.ConvertQuote(c.Request.Context(), id, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, invoice)
}

func (h *BillingHandler) portalClientID(c *gin.Context) (*uuid.UUID, error) {
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
