package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserRole separates dashboard admins from client-portal users.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleClient UserRole = "client"
)

// User represents a workspace account. Client-portal users are linked to
// the agency client they belong to.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Never expose
	Name         string     `json:"name"`
	Role         UserRole   `json:"role"`
	ClientID     *uuid.UUID `json:"client_id,omitempty"` // Set for portal users
	Locale       string     `json:"locale"`              // "ar" (default) or "en"
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsAdmin returns true for dashboard administrators.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
