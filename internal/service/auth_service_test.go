package service

import (
	"context"
	"testing"
	"time"

	"pyra-workspace/internal/core/domain"
	"pyra-workspace/internal/core/ports"
	"pyra-workspace/internal/core/ports/mocks"
	"pyra-workspace/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type authFixture struct {
	userRepo *mocks.MockUserRepository
	hashSvc  *mocks.MockHashService
	tokenSvc *mocks.MockTokenService
	sessions *mocks.MockSessionStore
	svc      *AuthServiceImpl
}

func newAuthFixture(t *testing.T) *authFixture {
	ctrl := gomock.NewController(t)
	f := &authFixture{
		userRepo: mocks.NewMockUserRepository(ctrl),
		hashSvc:  mocks.NewMockHashService(ctrl),
		tokenSvc: mocks.NewMockTokenService(ctrl),
		sessions: mocks.NewMockSessionStore(ctrl),
	}
	f.svc = NewAuthService(f.userRepo, f.hashSvc, f.tokenSvc, f.sessions, 24*time.Hour)
	return f
}

func TestAuthService_Register(t *testing.T) {
	f := newAuthFixture(t)

	f.userRepo.EXPECT().GetByEmail(gomock.Any(), "noura@pyra.sa").Return(nil, nil)
	f.hashSvc.EXPECT().Hash("s3cret-password").Return("$argon2id$hash", nil)

	var created *domain.User
	f.userRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *domain.User) error {
			created = u
			return nil
		})

	user, err := f.svc.Register(context.Background(), ports.RegisterRequest{
		Email:    " Noura@Pyra.sa ",
		Password: "s3cret-password",
		Name:     "نورة",
		Role:     domain.RoleAdmin,
	})
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, "noura@pyra.sa", user.Email)
	assert.Equal(t, "$argon2id$hash", user.PasswordHash)
	assert.Equal(t, domain.RoleAdmin, user.Role)
	assert.Equal(t, "ar", user.Locale)
}

func TestAuthService_Register_EmailExists(t *testing.T) {
	f := newAuthFixture(t)

	f.userRepo.EXPECT().
		GetByEmail(gomock.Any(), "taken@pyra.sa").
		Return(&domain.User{ID: uuid.New(), Email: "taken@pyra.sa"}, nil)

	_, err := f.svc.Register(context.Background(), ports.RegisterRequest{
		Email:    "taken@pyra.sa",
		Password: "whatever",
	})
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "AUTH_002", appErr.Code)
}

func TestAuthService_Register_DefaultsToClientRole(t *testing.T) {
	f := newAuthFixture(t)

	f.userRepo.EXPECT().GetByEmail(gomock.Any(), "sara@client.sa").Return(nil, nil)
	f.hashSvc.EXPECT().Hash(gomock.Any()).Return("hash", nil)
	f.userRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	user, err := f.svc.Register(context.Background(), ports.RegisterRequest{
		Email:    "sara@client.sa",
		Password: "pw",
		Role:     "superuser",
		Locale:   "en",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleClient, user.Role)
	assert.Equal(t, "en", user.Locale)
}

func TestAuthService_Login(t *testing.T) {
	f := newAuthFixture(t)
	user := &domain.User{
		ID:           uuid.New(),
		Email:        "noura@pyra.sa",
		PasswordHash: "$argon2id$hash",
		Role:         domain.RoleAdmin,
	}
	expiresAt := time.Now().Add(24 * time.Hour)

	f.userRepo.EXPECT().GetByEmail(gomock.Any(), "noura@pyra.sa").Return(user, nil)
	f.hashSvc.EXPECT().Verify("s3cret-password", user.PasswordHash).Return(true, nil)

	var savedSession string
	f.tokenSvc.EXPECT().
		Generate(user.ID, domain.RoleAdmin, gomock.Any()).
		DoAndReturn(func(_ uuid.UUID, _ domain.UserRole, sessionID string) (string, time.Time, error) {
			savedSession = sessionID
			return "jwt-token", expiresAt, nil
		})
	f.sessions.EXPECT().
		Save(gomock.Any(), gomock.Any(), user.ID, 24*time.Hour).
		DoAndReturn(func(_ context.Context, sessionID string, _ uuid.UUID, _ time.Duration) error {
			assert.Equal(t, savedSession, sessionID)
			return nil
		})

	token, exp, got, err := f.svc.Login(context.Background(), "noura@pyra.sa", "s3cret-password")
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", token)
	assert.Equal(t, expiresAt, exp)
	assert.Equal(t, user.ID, got.ID)
	assert.NotEmpty(t, savedSession)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	user := &domain.User{ID: uuid.New(), Email: "noura@pyra.sa", PasswordHash: "hash"}

	f.userRepo.EXPECT().GetByEmail(gomock.Any(), "noura@pyra.sa").Return(user, nil)
	f.hashSvc.EXPECT().Verify("wrong", "hash").Return(false, nil)

	_, _, _, err := f.svc.Login(context.Background(), "noura@pyra.sa", "wrong")
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "AUTH_001", appErr.Code)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	f.userRepo.EXPECT().GetByEmail(gomock.Any(), "ghost@pyra.sa").Return(nil, nil)

	_, _, _, err := f.svc.Login(context.Background(), "ghost@pyra.sa", "pw")
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "AUTH_001", appErr.Code)
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture(t)

	f.sessions.EXPECT().Delete(gomock.Any(), "session-123").Return(nil)

	err := f.svc.Logout(context.Background(), "session-123")
	assert.NoError(t, err)
}
