package service

import (
	"context"
	"io"
	"testing"

	"pyra-workspace/internal/core/domain"
	"pyra-workspace/internal/core/ports"
	"pyra-workspace/internal/core/ports/mocks"
	"pyra-workspace/pkg/apperror"
	"pyra-workspace/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type billingFixture struct {
	docRepo     *mocks.MockDocumentRepository
	sequenceSvc *mocks.MockSequenceService
	webhookSvc  *mocks.MockWebhookService
	activitySvc *mocks.MockActivityService
	svc         ports.BillingService
}

func newBillingFixture(t *testing.T) *billingFixture {
	ctrl := gomock.NewController(t)
	f := &billingFixture{
		docRepo:     mocks.NewMockDocumentRepository(ctrl),
		sequenceSvc: mocks.NewMockSequenceService(ctrl),
		webhookSvc:  mocks.NewMockWebhookService(ctrl),
		activitySvc: mocks.NewMockActivityService(ctrl),
	}
	f.svc = NewBillingService(f.docRepo, f.sequenceSvc, f.webhookSvc, f.activitySvc,
		logger.NewWithWriter("error", io.Discard))
	return f
}

func quoteRequest() ports.CreateDocumentRequest {
	return ports.CreateDocumentRequest{
		DocType:  domain.DocumentTypeQuote,
		ClientID: uuid.New(),
		Items: []domain.LineItem{
			{DescriptionAr: "تصميم هوية بصرية", DescriptionEn: "Brand identity design", Quantity: 1, UnitPrice: 500000},
			{DescriptionAr: "إدارة حسابات التواصل", Quantity: 2, UnitPrice: 150000},
		},
		TaxRate: 1500,
	}
}

func TestBillingService_CreateDocument_ComputesTotals(t *testing.T) {
	f := newBillingFixture(t)
	req := quoteRequest()

	f.sequenceSvc.EXPECT().
		NextNumber(gomock.Any(), domain.DocumentTypeQuote, "").
		Return("QT-0007")

	var created *domain.Document
	f.docRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, doc *domain.Document) error {
			created = doc
			return nil
		})
	f.webhookSvc.EXPECT().Dispatch(gomock.Any(), domain.EventQuoteCreated, gomock.Any())
	f.activitySvc.EXPECT().Record(gomock.Any(), gomock.Any(), domain.EventQuoteCreated, "document", gomock.Any(), "QT-0007")

	doc, err := f.svc.CreateDocument(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, "QT-0007", doc.Number)
	assert.Equal(t, domain.DocumentStatusDraft, doc.Status)
	// 500000 + 2*150000 = 800000, 15% tax = 120000
	assert.Equal(t, int64(800000), doc.Subtotal)
	assert.Equal(t, int64(120000), doc.Tax)
	assert.Equal(t, int64(920000), doc.Total)
	assert.Equal(t, int64(300000), doc.Items[1].Total)
}

func TestBillingService_CreateDocument_RejectsEmptyItems(t *testing.T) {
	f := newBillingFixture(t)
	req := quoteRequest()
	req.Items = nil

	_, err := f.svc.CreateDocument(context.Background(), req)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VAL_001", appErr.Code)
}

func TestBillingService_CreateDocument_DuplicateNumber(t *testing.T) {
	f := newBillingFixture(t)
	req := quoteRequest()

	f.sequenceSvc.EXPECT().
		NextNumber(gomock.Any(), domain.DocumentTypeQuote, "").
		Return("QT-0007")
	f.docRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(&pgconn.PgError{Code: "23505", ConstraintName: "documents_number_key"})

	_, err := f.svc.CreateDocument(context.Background(), req)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "DOC_002", appErr.Code)
}

func TestBillingService_ChangeStatus_EmitsInvoicePaid(t *testing.T) {
	f := newBillingFixture(t)
	doc := &domain.Document{
		ID:      uuid.New(),
		DocType: domain.DocumentTypeInvoice,
		Number:  "INV-0042",
		Status:  domain.DocumentStatusSent,
	}

	f.docRepo.EXPECT().GetByID(gomock.Any(), doc.ID).Return(doc, nil)
	f.docRepo.EXPECT().UpdateStatus(gomock.Any(), doc.ID, domain.DocumentStatusPaid).Return(nil)
	f.webhookSvc.EXPECT().Dispatch(gomock.Any(), domain.EventInvoicePaid, gomock.Any())
	f.activitySvc.EXPECT().Record(gomock.Any(), gomock.Any(), "document.status_changed", "document", gomock.Any(), gomock.Any())

	updated, err := f.svc.ChangeStatus(context.Background(), doc.ID, domain.DocumentStatusPaid, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentStatusPaid, updated.Status)
}

func TestBillingService_ChangeStatus_RejectsIllegalTransition(t *testing.T) {
	f := newBillingFixture(t)
	doc := &domain.Document{
		ID:      uuid.New(),
		DocType: domain.DocumentTypeQuote,
		Number:  "QT-0001",
		Status:  domain.DocumentStatusDraft,
	}

	f.docRepo.EXPECT().GetByID(gomock.Any(), doc.ID).Return(doc, nil)

	_, err := f.svc.ChangeStatus(context.Background(), doc.ID, domain.DocumentStatusAccepted, nil)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "DOC_003", appErr.Code)
}

func TestBillingService_ChangeStatus_NotFound(t *testing.T) {
	f := newBillingFixture(t)
	id := uuid.New()

	f.docRepo.EXPECT().GetByID(gomock.Any(), id).Return(nil, nil)

	_, err := f.svc.ChangeStatus(context.Background(), id, domain.DocumentStatusSent, nil)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "DOC_001", appErr.Code)
}

func TestBillingService_ConvertQuote(t *testing.T) {
	f := newBillingFixture(t)
	quote := &domain.Document{
		ID:       uuid.New(),
		DocType:  domain.DocumentTypeQuote,
		Number:   "QT-0007",
		ClientID: uuid.New(),
		Items: []domain.LineItem{
			{DescriptionAr: "حملة إعلانية", Quantity: 1, UnitPrice: 800000, Total: 800000},
		},
		Subtotal: 800000,
		TaxRate:  1500,
		Tax:      120000,
		Total:    920000,
		Status:   domain.DocumentStatusAccepted,
	}

	f.docRepo.EXPECT().GetByID(gomock.Any(), quote.ID).Return(quote, nil)
	f.sequenceSvc.EXPECT().
		NextNumber(gomock.Any(), domain.DocumentTypeInvoice, "").
		Return("INV-0001")

	var created *domain.Document
	f.docRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, doc *domain.Document) error {
			created = doc
			return nil
		})
	f.webhookSvc.EXPECT().Dispatch(gomock.Any(), domain.EventInvoiceCreated, gomock.Any())
	f.activitySvc.EXPECT().Record(gomock.Any(), gomock.Any(), "quote.converted", "document", gomock.Any(), "QT-0007 -> INV-0001")

	invoice, err := f.svc.ConvertQuote(context.Background(), quote.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, domain.DocumentTypeInvoice, invoice.DocType)
	assert.Equal(t, "INV-0001", invoice.Number)
	assert.Equal(t, domain.DocumentStatusDraft, invoice.Status)
	assert.Equal(t, quote.Total, invoice.Total)
	assert.Equal(t, quote.ClientID, invoice.ClientID)
	require.Len(t, invoice.Items, 1)
	assert.NotEqual(t, quote.ID, invoice.ID)
}

func TestBillingService_ConvertQuote_NotConvertible(t *testing.T) {
	f := newBillingFixture(t)
	quote := &domain.Document{
		ID:      uuid.New(),
		DocType: domain.DocumentTypeQuote,
		Number:  "QT-0008",
		Status:  domain.DocumentStatusSent,
	}

	f.docRepo.EXPECT().GetByID(gomock.Any(), quote.ID).Return(quote, nil)

	_, err := f.svc.ConvertQuote(context.Background(), quote.ID, nil)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "DOC_004", appErr.Code)
}
