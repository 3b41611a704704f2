package service

import (
	"context"
	"io"
	"strings"
	"testing"

	"pyra-workspace/internal/core/domain"
	"pyra-workspace/internal/core/ports"
	"pyra-workspace/internal/core/ports/mocks"
	"pyra-workspace/pkg/apperror"
	"pyra-workspace/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fileFixture struct {
	fileRepo    *mocks.MockFileRepository
	objectStore *mocks.MockObjectStore
	webhookSvc  *mocks.MockWebhookService
	activitySvc *mocks.MockActivityService
	svc         ports.FileService
}

func newFileFixture(t *testing.T) *fileFixture {
	ctrl := gomock.NewController(t)
	f := &fileFixture{
		fileRepo:    mocks.NewMockFileRepository(ctrl),
		objectStore: mocks.NewMockObjectStore(ctrl),
		webhookSvc:  mocks.NewMockWebhookService(ctrl),
		activitySvc: mocks.NewMockActivityService(ctrl),
	}
	f.svc = NewFileService(f.fileRepo, f.objectStore, f.webhookSvc, f.activitySvc,
		logger.NewWithWriter("error", io.Discard))
	return f
}

func TestFileService_InitiateUpload(t *testing.T) {
	f := newFileFixture(t)
	projectID := uuid.New()

	f.objectStore.EXPECT().
		PresignUpload(gomock.Any(), gomock.Any(), "application/pdf").
		DoAndReturn(func(_ context.Context, key, _ string) (string, error) {
			assert.True(t, strings.HasPrefix(key, "projects/"+projectID.String()+"/"))
			assert.True(t, strings.HasSuffix(key, "/brief.pdf"))
			return "https://s3.example.com/put?sig=abc", nil
		})

	var created *domain.StoredFile
	f.fileRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, file *domain.StoredFile) error {
			created = file
			return nil
		})

	file, url, err := f.svc.InitiateUpload(context.Background(), ports.InitiateUploadRequest{
		ProjectID:   &projectID,
		Name:        "brief.pdf",
		Size:        1024,
		ContentType: "application/pdf",
		UploadedBy:  uuid.New(),
	})
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, "https://s3.example.com/put?sig=abc", url)
	assert.Equal(t, domain.FileStatusUploading, file.Status)
	assert.Equal(t, "brief.pdf", file.Name)
}

func TestFileService_InitiateUpload_StripsPathTraversal(t *testing.T) {
	f := newFileFixture(t)

	f.objectStore.EXPECT().
		PresignUpload(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("https://s3.example.com/put", nil)
	f.fileRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	file, _, err := f.svc.InitiateUpload(context.Background(), ports.InitiateUploadRequest{
		Name:       "../../etc/passwd",
		Size:       10,
		UploadedBy: uuid.New(),
	})
	require.NoError(t, err)
	assert.Equal(t, "passwd", file.Name)
	assert.NotContains(t, file.ObjectKey, "..")
}

func TestFileService_InitiateUpload_RejectsOversize(t *testing.T) {
	f := newFileFixture(t)

	_, _, err := f.svc.InitiateUpload(context.Background(), ports.InitiateUploadRequest{
		Name:       "huge.zip",
		Size:       maxFileSize + 1,
		UploadedBy: uuid.New(),
	})
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VAL_001", appErr.Code)
}

func TestFileService_CompleteUpload(t *testing.T) {
	f := newFileFixture(t)
	actorID := uuid.New()
	file := &domain.StoredFile{
		ID:     uuid.New(),
		Name:   "brief.pdf",
		Status: domain.FileStatusUploading,
	}

	f.fileRepo.EXPECT().GetByID(gomock.Any(), file.ID).Return(file, nil)
	f.fileRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
	f.webhookSvc.EXPECT().Dispatch(gomock.Any(), domain.EventFileUploaded, gomock.Any())
	f.activitySvc.EXPECT().Record(gomock.Any(), gomock.Any(), domain.EventFileUploaded, "file", gomock.Any(), "brief.pdf")

	updated, err := f.svc.CompleteUpload(context.Background(), file.ID, actorID)
	require.NoError(t, err)
	assert.Equal(t, domain.FileStatusReady, updated.Status)
}

func TestFileService_CompleteUpload_Idempotent(t *testing.T) {
	f := newFileFixture(t)
	file := &domain.StoredFile{
		ID:     uuid.New(),
		Status: domain.FileStatusReady,
	}

	f.fileRepo.EXPECT().GetByID(gomock.Any(), file.ID).Return(file, nil)

	updated, err := f.svc.CompleteUpload(context.Background(), file.ID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, domain.FileStatusReady, updated.Status)
}

func TestFileService_DownloadURL_RejectsPendingUpload(t *testing.T) {
	f := newFileFixture(t)
	file := &domain.StoredFile{
		ID:     uuid.New(),
		Status: domain.FileStatusUploading,
	}

	f.fileRepo.EXPECT().GetByID(gomock.Any(), file.ID).Return(file, nil)

	_, err := f.svc.DownloadURL(context.Background(), file.ID)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "RES_001", appErr.Code)
}

func TestFileService_Delete_ToleratesMissingObject(t *testing.T) {
	f := newFileFixture(t)
	file := &domain.StoredFile{
		ID:        uuid.New(),
		Name:      "old.png",
		ObjectKey: "workspace/abc/old.png",
		Status:    domain.FileStatusReady,
	}

	f.fileRepo.EXPECT().GetByID(gomock.Any(), file.ID).Return(file, nil)
	f.objectStore.EXPECT().Delete(gomock.Any(), file.ObjectKey).Return(assert.AnError)
	f.fileRepo.EXPECT().Delete(gomock.Any(), file.ID).Return(nil)
	f.activitySvc.EXPECT().Record(gomock.Any(), gomock.Any(), "file.deleted", "file", gomock.Any(), "old.png")

	err := f.svc.Delete(context.Background(), file.ID, nil)
	assert.NoError(t, err)
}
