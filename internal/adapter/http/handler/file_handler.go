package handler

import (
	"pyra-workspace/internal/adapter/http/dto"
	"pyra-workspace/internal/core/ports"
	"pyra-workspace/pkg/apperror"
	"pyra-workspace/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FileHandler handles the presigned upload/download handshake.
type FileHandler struct {
	fileSvc ports.FileService
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(fileSvc ports.FileService) *FileHandler {
	return &FileHandler{fileSvc: fileSvc}
}

// InitiateUpload handles POST /api/v1/admin/files. It returns the file
// row plus a presigned PUT URL; the browser uploads the bytes directly
// to the object store.
func (h *FileHandler) InitiateUpload(c *gin.Context) {
	var req dto.InitiateUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	uid := actorID(c)
	if uid == nil {
		response.Error(c, apperror.ErrInvalidToken())
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

	file, uploadURL, err := h.fileSvc.InitiateUpload(c.Request.Context(), ports.InitiateUploadRequest{
		ProjectID:   projectID,
		Name:        req.Name,
		Size:        req.Size,
		ContentType: req.ContentType,
		UploadedBy:  *uid,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.InitiateUploadResponse{
		File:      file,
		UploadURL: uploadURL,
	})
}

// CompleteUpload handles POST /api/v1/admin/files/:id/complete.
func (h *FileHandler) CompleteUpload(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		response.Error(c, apperror.Validation("invalid file id"))
		return
	}

	uid := actorID(c)
	if uid == nil {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	file, err := h.fileSvc.CompleteUpload(c.Request.Context(), id, *uid)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, file)
}

// DownloadURL handles GET /api/v1/files/:id/download.
func (h *FileHandler) DownloadURL(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		response.Error(c, apperror.Validation("invalid file id"))
		return
	}

	url, err := h.fileSvc.DownloadURL(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.DownloadURLResponse{URL: url})
}

// ListByProject handles GET /api/v1/projects/:id/files.
func (h *FileHandler) ListByProject(c *gin.Context) {
	projectID, ok := pathUUID(c, "id")
	if !ok {
		response.Error(c, apperror.Validation("invalid project id"))
		return
	}

	files, err := h.fileSvc.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, files)
}

// Delete handles DELETE /api/v1/admin/files/:id.
func (h *FileHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		response.Error(c, apperror.Validation("invalid file id"))
		return
	}

	if err := h.fileSvc.Delete(c.Request.Context(), id, actorID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
