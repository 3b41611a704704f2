package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"pyra-workspace/internal/core/domain"
	"pyra-workspace/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DocumentRepo implements ports.DocumentRepository for quotes and invoices.
// The documents.number column carries a UNIQUE constraint; the sequence
// generator's probe loop only reduces how often inserts hit it.
type DocumentRepo struct {
	pool Pool
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(pool Pool) *DocumentRepo {
	return &DocumentRepo{pool: pool}
}

const documentColumns = `id, doc_type, number, client_id, project_id, items, subtotal, tax_rate, tax, total, status, notes, issued_at, due_at, created_at, updated_at`

// Create inserts a new document. Line items are stored as a JSONB array.
func (r *DocumentRepo) Create(ctx context.Context, d *domain.Document) error {
	items, err := json.Marshal(d.Items)
	if err != nil {
		return fmt.Errorf("marshal line items: %w", err)
	}

	query := `INSERT INTO documents (id, doc_type, number, client_id, project_id, items, subtotal, tax_rate, tax, total, status, notes, issued_at, due_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err = r.pool.Exec(ctx, query,
		d.ID, string(d.DocType), d.Number, d.ClientID, d.ProjectID, items,
		d.Subtotal, d.TaxRate, d.Tax, d.Total, string(d.Status), d.Notes,
		d.IssuedAt, d.DueAt, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// GetByID fetches a document by its UUID.
func (r *DocumentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`

	d, err := scanDocument(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document by id: %w", err)
	}
	return d, nil
}

// List returns a filtered, paginated page of documents plus the total count.
func (r *DocumentRepo) List(ctx context.Context, params ports.DocumentListParams) ([]domain.Document, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if params.DocType != nil {
		conditions = append(conditions, fmt.Sprintf("doc_type = $%d", argIdx))
		args = append(args, string(*params.DocType))
		argIdx++
	}
	if params.ClientID != nil {
		conditions = append(conditions, fmt.Sprintf("client_id = $%d", argIdx))
		args = append(args, *params.ClientID)
		argIdx++
	}
	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, string(*params.Status))
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM documents %s", where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT %s FROM documents %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		documentColumns, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *d)
	}
	return docs, total, rows.Err()
}

// UpdateStatus moves a document to a new lifecycle status.
func (r *DocumentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.DocumentStatus) error {
	query := `UPDATE documents SET status=$1, updated_at=NOW() WHERE id=$2`
	if _, err := r.pool.Exec(ctx, query, string(status), id); err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return nil
}

// HighestNumber returns the lexicographically greatest number matching
// "{prefix}-%", or "" when the prefix has no documents yet.
func (r *DocumentRepo) HighestNumber(ctx context.Context, prefix string) (string, error) {
	query := `SELECT number FROM documents WHERE number LIKE $1 ORDER BY number DESC LIMIT 1`

	var number string
	err := r.pool.QueryRow(ctx, query, prefix+"-%").Scan(&number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("highest number for %q: %w", prefix, err)
	}
	return number, nil
}

// NumberExists checks a candidate document number by exact match.
func (r *DocumentRepo) NumberExists(ctx context.Context, number string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM documents WHERE number = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, number).Scan(&exists); err != nil {
		return false, fmt.Errorf("number exists %q: %w", number, err)
	}
	return exists, nil
}

func scanDocument(row pgx.Row) (*domain.Document, error) {
	d := &domain.Document{}
	var docType, status string
	var items []byte
	err := row.Scan(
		&d.ID, &docType, &d.Number, &d.ClientID, &d.ProjectID, &items,
		&d.Subtotal, &d.TaxRate, &d.Tax, &d.Total, &status, &d.Notes,
		&d.IssuedAt, &d.DueAt, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.DocType = domain.DocumentType(docType)
	d.Status = domain.DocumentStatus(status)
	if len(items) > 0 {
		if err := json.Unmarshal(items, &d.Items); err != nil {
			return nil, fmt.Errorf("unmarshal line items: %w", err)
		}
	}
	return d, nil
}
