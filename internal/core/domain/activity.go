package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActivityLog is one append-only audit row. Actor is nil for actions
// performed by background jobs.
type ActivityLog struct {
	ID         uuid.UUID  `json:"id"`
	ActorID    *uuid.UUID `json:"actor_id,omitempty"`
	Action     string     `json:"action"` // e.g. "invoice.created", "webhook.updated"
	EntityType string     `json:"entity_type"`
	EntityID   *uuid.UUID `json:"entity_id,omitempty"`
	Detail     string     `json:"detail,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
