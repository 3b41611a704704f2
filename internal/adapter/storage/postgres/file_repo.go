package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pyra-workspace/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// FileRepo implements ports.FileRepository.
type FileRepo struct {
	pool Pool
}

// NewFileRepo creates a new FileRepo.
func NewFileRepo(pool Pool) *FileRepo {
	return &FileRepo{pool: pool}
}

const fileColumns = `id, project_id, name, object_key, size, content_type, status, uploaded_by, created_at, updated_at`

// Create inserts a file metadata row.
func (r *FileRepo) Create(ctx context.Context, f *domain.StoredFile) error {
	query := `INSERT INTO files (id, project_id, name, object_key, size, content_type, status, uploaded_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		f.ID, f.ProjectID, f.Name, f.ObjectKey, f.Size, f.ContentType,
		string(f.Status), f.UploadedBy, f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	return nil
}

// GetByID fetches a file metadata row.
func (r *FileRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.StoredFile, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1`

	f := &domain.StoredFile{}
	var status string
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&f.ID, &f.ProjectID, &f.Name, &f.ObjectKey, &f.Size, &f.ContentType,
		&status, &f.UploadedBy, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get file by id: %w", err)
	}
	f.Status = domain.FileStatus(status)
	return f, nil
}

// ListByProject returns ready files for one project.
func (r *FileRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.StoredFile, error) {
	query := `SELECT ` + fileColumns + ` FROM files
		WHERE project_id = $1 AND status = $2 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, projectID, string(domain.FileStatusReady))
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var files []domain.StoredFile
	for rows.Next() {
		var f domain.StoredFile
		var status string
		if err := rows.Scan(
			&f.ID, &f.ProjectID, &f.Name, &f.ObjectKey, &f.Size, &f.ContentType,
			&status, &f.UploadedBy, &f.CreatedAt, &f.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		f.Status = domain.FileStatus(status)
		files = append(files, f)
	}
	return files, rows.Err()
}

// Update updates a file metadata row.
func (r *FileRepo) Update(ctx context.Context, f *domain.StoredFile) error {
	f.UpdatedAt = time.Now().UTC()
	query := `UPDATE files SET name=$1, status=$2, size=$3, updated_at=$4 WHERE id=$5`

	_, err := r.pool.Exec(ctx, query, f.Name, string(f.Status), f.Size, f.UpdatedAt, f.ID)
	if err != nil {
		return fmt.Errorf("update file: %w", err)
	}
	return nil
}

// Delete removes a file metadata row.
func (r *FileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM files WHERE id=$1`, id); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}
