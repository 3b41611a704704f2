package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pyra-workspace/internal/core/domain"
	"pyra-workspace/internal/core/ports"
	"pyra-workspace/pkg/apperror"

	"github.com/google/uuid"
)

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	userRepo    ports.UserRepository
	hashSvc     ports.HashService
	tokenSvc    ports.TokenService
	sessions    ports.SessionStore
	tokenExpiry time.Duration
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	userRepo ports.UserRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
	sessions ports.SessionStore,
	tokenExpiry time.Duration,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		userRepo:    userRepo,
		hashSvc:     hashSvc,
		tokenSvc:    tokenSvc,
		sessions:    sessions,
		tokenExpiry: tokenExpiry,
	}
}

// Register creates a new workspace account.
func (s *AuthServiceImpl) Register(ctx context.Context, req ports.RegisterRequest) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check email: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrEmailExists()
	}

	passwordHash, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	locale := req.Locale
	if locale != "en" {
		locale = "ar"
	}
	role := req.Role
	if role != domain.RoleAdmin {
		role = domain.RoleClient
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         req.Name,
		Role:         role,
		ClientID:     req.ClientID,
		Locale:       locale,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create user: %w", err))
	}
	return user, nil
}

// Login verifies credentials and issues a JWT backed by a revocable
// session.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, time.Time, *domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", time.Time{}, nil, apperror.InternalError(fmt.Errorf("get user: %w", err))
	}
	if user == nil {
		return "", time.Time{}, nil, apperror.ErrInvalidCredentials()
	}

	ok, err := s.hashSvc.Verify(password, user.PasswordHash)
	if err != nil || !ok {
		return "", time.Time{}, nil, apperror.ErrInvalidCredentials()
	}

	sessionID := uuid.New().String()
	token, expiresAt, err := s.tokenSvc.Generate(user.ID, user.Role, sessionID)
	if err != nil {
		return "", time.Time{}, nil, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	if err := s.sessions.Save(ctx, sessionID, user.ID, s.tokenExpiry); err != nil {
		return "", time.Time{}, nil, apperror.InternalError(fmt.Errorf("save session: %w", err))
	}

	return token, expiresAt, user, nil
}

// Logout revokes the session behind a token. The JWT itself stays
// syntactically valid until expiry; the session check rejects it.
func (s *AuthServiceImpl) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return apperror.InternalError(fmt.Errorf("delete session: %w", err))
	}
	return nil
}
