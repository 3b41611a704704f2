package domain

import (
	"time"

	"github.com/google/uuid"
)

// FileStatus tracks the upload handshake: a row is created before the
// client uploads to the presigned URL and flipped to ready on completion.
type FileStatus string

const (
	FileStatusUploading FileStatus = "uploading"
	FileStatusReady     FileStatus = "ready"
)

// StoredFile is the metadata row for one object in the file store.
type StoredFile struct {
	ID          uuid.UUID  `json:"id"`
	ProjectID   *uuid.UUID `json:"project_id,omitempty"`
	Name        string     `json:"name"`
	ObjectKey   string     `json:"-"` // Bucket-internal path, not exposed
	Size        int64      `json:"size"`
	ContentType string     `json:"content_type"`
	Status      FileStatus `json:"status"`
	UploadedBy  uuid.UUID  `json:"uploaded_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
