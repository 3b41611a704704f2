package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"pyra-workspace/internal/core/domain"
	"pyra-workspace/internal/core/ports"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDocument() *domain.Document {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Document{
		ID:       uuid.New(),
		DocType:  domain.DocumentTypeQuote,
		Number:   "QT-0007",
		ClientID: uuid.New(),
		Items: []domain.LineItem{
			{DescriptionAr: "تصميم هوية بصرية", DescriptionEn: "Brand identity design", Quantity: 1, UnitPrice: 500000, Total: 500000},
		},
		Subtotal:  500000,
		TaxRate:   1500,
		Tax:       75000,
		Total:     575000,
		Status:    domain.DocumentStatusDraft,
		IssuedAt:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func documentColumnNames() []string {
	return []string{"id", "doc_type", "number", "client_id", "project_id", "items", "subtotal", "tax_rate", "tax", "total", "status", "notes", "issued_at", "due_at", "created_at", "updated_at"}
}

func documentRow(t *testing.T, d *domain.Document) *pgxmock.Rows {
	t.Helper()
	items, err := json.Marshal(d.Items)
	require.NoError(t, err)
	return pgxmock.NewRows(documentColumnNames()).AddRow(
		d.ID, string(d.DocType), d.Number, d.ClientID, d.ProjectID, items,
		d.Subtotal, d.TaxRate, d.Tax, d.Total, string(d.Status), d.Notes,
		d.IssuedAt, d.DueAt, d.CreatedAt, d.UpdatedAt,
	)
}

func TestDocumentRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewDocumentRepo(mock)
	d := newTestDocument()
	items, err := json.Marshal(d.Items)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO documents").
		WithArgs(d.ID, string(d.DocType), d.Number, d.ClientID, d.ProjectID, items,
			d.Subtotal, d.TaxRate, d.Tax, d.Total, string(d.Status), d.Notes,
			d.IssuedAt, d.DueAt, d.CreatedAt, d.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), d)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewDocumentRepo(mock)
	d := newTestDocument()

	mock.ExpectQuery("SELECT .+ FROM documents WHERE id").
		WithArgs(d.ID).
		WillReturnRows(documentRow(t, d))

	result, err := repo.GetByID(context.Background(), d.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, d.Number, result.Number)
	assert.Equal(t, d.DocType, result.DocType)
	require.Len(t, result.Items, 1)
	assert.Equal(t, d.Items[0].DescriptionAr, result.Items[0].DescriptionAr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewDocumentRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM documents WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(documentColumnNames()))

	result, err := repo.GetByID(context.Background(), id)
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepo_List_FiltersByTypeAndStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewDocumentRepo(mock)
	d := newTestDocument()
	docType := domain.DocumentTypeQuote
	status := domain.DocumentStatusDraft

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM documents").
		WithArgs(string(docType), string(status)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT .+ FROM documents WHERE doc_type").
		WithArgs(string(docType), string(status), 20, 0).
		WillReturnRows(documentRow(t, d))

	docs, total, err := repo.List(context.Background(), ports.DocumentListParams{
		DocType:  &docType,
		Status:   &status,
		Page:     1,
		PageSize: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, docs, 1)
	assert.Equal(t, d.Number, docs[0].Number)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepo_UpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewDocumentRepo(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE documents SET status").
		WithArgs(string(domain.DocumentStatusSent), id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.UpdateStatus(context.Background(), id, domain.DocumentStatusSent)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepo_HighestNumber(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewDocumentRepo(mock)

	mock.ExpectQuery("SELECT number FROM documents WHERE number LIKE").
		WithArgs("QT-%").
		WillReturnRows(pgxmock.NewRows([]string{"number"}).AddRow("QT-0042"))

	number, err := repo.HighestNumber(context.Background(), "QT")
	require.NoError(t, err)
	assert.Equal(t, "QT-0042", number)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepo_HighestNumber_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewDocumentRepo(mock)

	mock.ExpectQuery("SELECT number FROM documents WHERE number LIKE").
		WithArgs("INV-%").
		WillReturnRows(pgxmock.NewRows([]string{"number"}))

	number, err := repo.HighestNumber(context.Background(), "INV")
	require.NoError(t, err)
	assert.Equal(t, "", number)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepo_NumberExists(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewDocumentRepo(mock)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("QT-0042").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.NumberExists(context.Background(), "QT-0042")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
