package service

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"pyra-workspace/internal/core/domain"
	"pyra-workspace/internal/core/ports"
	"pyra-workspace/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const maxFileSize = 100 << 20 // 100 MiB

type fileService struct {
	fileRepo    ports.FileRepository
	objectStore ports.ObjectStore
	webhookSvc  ports.WebhookService
	activitySvc ports.ActivityService
	log         zerolog.Logger
}

// NewFileService creates a new file service.
func NewFileService(
	fileRepo ports.FileRepository,
	objectStore ports.ObjectStore,
	webhookSvc ports.WebhookService,
	activitySvc ports.ActivityService,
	log zerolog.Logger,
) ports.FileService {
	return &fileService{
		fileRepo:    fileRepo,
		objectStore: objectStore,
		webhookSvc:  webhookSvc,
		activitySvc: activitySvc,
		log:         log,
	}
}

// InitiateUpload records an uploading row and returns a presigned PUT URL.
// The browser uploads directly to the object store; file bytes never pass
// through the API.
func (s *fileService) InitiateUpload(ctx context.Context, req ports.InitiateUploadRequest) (*domain.StoredFile, string, error) {
	name := sanitizeFileName(req.Name)
	if name == "" {
		return nil, "", apperror.Validation("file name is required")
	}
	if req.Size <= 0 || req.Size > maxFileSize {
		return nil, "", apperror.Validation("file size must be between 1 byte and 100 MiB")
	}
	if req.ContentType == "" {
		req.ContentType = "application/octet-stream"
	}

	now := time.Now().UTC()
	id := uuid.New()
	file := &domain.StoredFile{
		ID:          id,
		ProjectID:   req.ProjectID,
		Name:        name,
		ObjectKey:   objectKey(req.ProjectID, id, name),
		Size:        req.Size,
		ContentType: req.ContentType,
		Status:      domain.FileStatusUploading,
		UploadedBy:  req.UploadedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	uploadURL, err := s.objectStore.PresignUpload(ctx, file.ObjectKey, file.ContentType)
	if err != nil {
		return nil, "", apperror.ErrStorageError(fmt.Errorf("presign upload: %w", err))
	}

	if err := s.fileRepo.Create(ctx, file); err != nil {
		return nil, "", apperror.InternalError(fmt.Errorf("create file record: %w", err))
	}

	return file, uploadURL, nil
}

// CompleteUpload flips the row to ready after the browser finished its PUT.
func (s *fileService) CompleteUpload(ctx context.Context, fileID, actorID uuid.UUID) (*domain.StoredFile, error) {
	file, err := s.getFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file.Status == domain.FileStatusReady {
		return file, nil
	}

	file.Status = domain.FileStatusReady
	file.UpdatedAt = time.Now().UTC()

	if err := s.fileRepo.Update(ctx, file); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update file record: %w", err))
	}

	s.webhookSvc.Dispatch(ctx, domain.EventFileUploaded, file)
	s.activitySvc.Record(ctx, &actorID, domain.EventFileUploaded, "file", &file.ID, file.Name)
	return file, nil
}

func (s *fileService) DownloadURL(ctx context.Context, fileID uuid.UUID) (string, error) {
	file, err := s.getFile(ctx, fileID)
	if err != nil {
		return "", err
	}
	if file.Status != domain.FileStatusReady {
		return "", apperror.ErrNotFound("File")
	}

	url, err := s.objectStore.PresignDownload(ctx, file.ObjectKey)
	if err != nil {
		return "", apperror.ErrStorageError(fmt.Errorf("presign download: %w", err))
	}
	return url, nil
}

func (s *fileService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.StoredFile, error) {
	files, err := s.fileRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list files: %w", err))
	}
	return files, nil
}

// Delete removes the object first, then the metadata row. A missing
// object is tolerated so half-finished uploads can still be cleaned up.
func (s *fileService) Delete(ctx context.Context, fileID uuid.UUID, actorID *uuid.UUID) error {
	file, err := s.getFile(ctx, fileID)
	if err != nil {
		return err
	}

	if err := s.objectStore.Delete(ctx, file.ObjectKey); err != nil {
		s.log.Warn().Err(err).Str("file_id", fileID.String()).Msg("failed to delete object, removing record anyway")
	}

	if err := s.fileRepo.Delete(ctx, fileID); err != nil {
		return apperror.InternalError(fmt.Errorf("delete file record: %w", err))
	}

	s.activitySvc.Record(ctx, actorID, "file.deleted", "file", &fileID, file.Name)
	return nil
}

func (s *fileService) getFile(ctx context.Context, id uuid.UUID) (*domain.StoredFile, error) {
	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get file: %w", err))
	}
	if file == nil {
		return nil, apperror.ErrNotFound("File")
	}
	return file, nil
}

// objectKey namespaces objects by project to keep bucket listings usable.
func objectKey(projectID *uuid.UUID, fileID uuid.UUID, name string) string {
	scope := "workspace"
	if projectID != nil {
		scope = "projects/" + projectID.String()
	}
	return fmt.Sprintf("%s/%s/%s", scope, fileID, name)
}

func sanitizeFileName(name string) string {
	name = path.Base(strings.TrimSpace(name))
	if name == "." || name == "/" {
		return ""
	}
	return name
}
