package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pyra-workspace/internal/core/domain"
	"pyra-workspace/internal/core/ports"
	"pyra-workspace/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

const pgUniqueViolation = "23505"

type billingService struct {
	docRepo     ports.DocumentRepository
	sequenceSvc ports.SequenceService
	webhookSvc  ports.WebhookService
	activitySvc ports.ActivityService
	log         zerolog.Logger
}

// NewBillingService creates a new billing service.
func NewBillingService(
	docRepo ports.DocumentRepository,
	sequenceSvc ports.SequenceService,
	webhookSvc ports.WebhookService,
	activitySvc ports.ActivityService,
	log zerolog.Logger,
) ports.BillingService {
	return &billingService{
		docRepo:     docRepo,
		sequenceSvc: sequenceSvc,
		webhookSvc:  webhookSvc,
		activitySvc: activitySvc,
		log:         log,
	}
}

// CreateDocument creates a quote or invoice. Totals are computed server
// side from the line items; client-supplied totals are ignored.
func (s *billingService) CreateDocument(ctx context.Context, req ports.CreateDocumentRequest) (*domain.Document, error) {
	if len(req.Items) == 0 {
		return nil, apperror.Validation("document requires at least one line item")
	}
	if req.TaxRate < 0 {
		return nil, apperror.Validation("tax rate cannot be negative")
	}

	items := make([]domain.LineItem, len(req.Items))
	var subtotal int64
	for i, item := range req.Items {
		if item.Quantity <= 0 || item.UnitPrice < 0 {
			return nil, apperror.Validation("line item quantity must be positive and unit price non-negative")
		}
		item.Total = item.Quantity * item.UnitPrice
		items[i] = item
		subtotal += item.Total
	}
	tax := subtotal * req.TaxRate / 10000

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:        uuid.New(),
		DocType:   req.DocType,
		Number:    s.sequenceSvc.NextNumber(ctx, req.DocType, req.NumberPrefix),
		ClientID:  req.ClientID,
		ProjectID: req.ProjectID,
		Items:     items,
		Subtotal:  subtotal,
		TaxRate:   req.TaxRate,
		Tax:       tax,
		Total:     subtotal + tax,
		Status:    domain.DocumentStatusDraft,
		Notes:     req.Notes,
		IssuedAt:  now,
		DueAt:     req.DueAt,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, apperror.ErrDuplicateNumber(err)
		}
		return nil, apperror.InternalError(fmt.Errorf("create document: %w", err))
	}

	event := domain.EventQuoteCreated
	if doc.DocType == domain.DocumentTypeInvoice {
		event = domain.EventInvoiceCreated
	}
	s.webhookSvc.Dispatch(ctx, event, doc)
	s.activitySvc.Record(ctx, req.ActorID, event, "document", &doc.ID, doc.Number)

	s.log.Info().
		Str("document_id", doc.ID.String()).
		Str("number", doc.Number).
		Str("doc_type", string(doc.DocType)).
		Int64("total", doc.Total).
		Msg("document created")

	return doc, nil
}

func (s *billingService) GetDocument(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get document: %w", err))
	}
	if doc == nil {
		return nil, apperror.ErrDocumentNotFound()
	}
	return doc, nil
}

func (s *billingService) ListDocuments(ctx context.Context, params ports.DocumentListParams) ([]domain.Document, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}
	return s.docRepo.List(ctx, params)
}

// ChangeStatus moves a document through its lifecycle and emits the
// matching event for terminal transitions.
func (s *billingService) ChangeStatus(ctx context.Context, id uuid.UUID, target domain.DocumentStatus, actorID *uuid.UUID) (*domain.Document, error) {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	if !doc.CanTransitionTo(target) {
		return nil, apperror.ErrInvalidDocumentStatus(string(doc.Status), string(target))
	}

	if err := s.docRepo.UpdateStatus(ctx, id, target); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update document status: %w", err))
	}
	doc.Status = target
	doc.UpdatedAt = time.Now().UTC()

	if event := statusEvent(doc.DocType, target); event != "" {
		s.webhookSvc.Dispatch(ctx, event, doc)
	}
	s.activitySvc.Record(ctx, actorID, "document.status_changed", "document", &doc.ID,
		fmt.Sprintf("%s -> %s", doc.Number, target))

	return doc, nil
}

// ConvertQuote turns an accepted quote into a draft invoice. The line
// items and amounts are copied; the invoice gets a fresh number from the
// invoice sequence.
func (s *billingService) ConvertQuote(ctx context.Context, quoteID uuid.UUID, actorID *uuid.UUID) (*domain.Document, error) {
	quote, err := s.GetDocument(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if !quote.IsConvertible() {
		return nil, apperror.ErrQuoteNotConvertible()
	}

	now := time.Now().UTC()
	invoice := &domain.Document{
		ID:        uuid.New(),
		DocType:   domain.DocumentTypeInvoice,
		Number:    s.sequenceSvc.NextNumber(ctx, domain.DocumentTypeInvoice, ""),
		ClientID:  quote.ClientID,
		ProjectID: quote.ProjectID,
		Items:     append([]domain.LineItem(nil), quote.Items...),
		Subtotal:  quote.Subtotal,
		TaxRate:   quote.TaxRate,
		Tax:       quote.Tax,
		Total:     quote.Total,
		Status:    domain.DocumentStatusDraft,
		Notes:     quote.Notes,
		IssuedAt:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.docRepo.Create(ctx, invoice); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, apperror.ErrDuplicateNumber(err)
		}
		return nil, apperror.InternalError(fmt.Errorf("create invoice from quote: %w", err))
	}

	s.webhookSvc.Dispatch(ctx, domain.EventInvoiceCreated, invoice)
	s.activitySvc.Record(ctx, actorID, "quote.converted", "document", &invoice.ID,
		fmt.Sprintf("%s -> %s", quote.Number, invoice.Number))

	s.log.Info().
		Str("quote_number", quote.Number).
		Str("invoice_number", invoice.Number).
		Msg("quote converted to invoice")

	return invoice, nil
}

func statusEvent(docType domain.DocumentType, status domain.DocumentStatus) string {
	if docType == domain.DocumentTypeQuote {
		switch status {
		case domain.DocumentStatusAccepted:
			return domain.EventQuoteAccepted
		case domain.DocumentStatusRejected:
			return domain.EventQuoteRejected
		}
		return ""
	}
	if status == domain.DocumentStatusPaid {
		return domain.EventInvoicePaid
	}
	return ""
}
