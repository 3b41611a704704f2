package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=cache.go -destination=mocks/cache.go -package=mocks

// SessionStore tracks live login sessions so tokens can be revoked before
// they expire. Keys are opaque session IDs embedded in the JWT.
type SessionStore interface {
	Save(ctx context.Context, sessionID string, userID uuid.UUID, ttl time.Duration) error
	Exists(ctx context.Context, sessionID string) (bool, error)
	Delete(ctx context.Context, sessionID string) error
}

// RateLimitResult holds the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   int64 // Unix timestamp
}

// RateLimiter answers whether a request identified by key is within its
// fixed-window budget.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (*RateLimitResult, error)
}
