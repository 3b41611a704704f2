package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification is one in-app message for one user.
type Notification struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	TitleAr   string     `json:"title_ar"`
	TitleEn   string     `json:"title_en,omitempty"`
	BodyAr    string     `json:"body_ar"`
	BodyEn    string     `json:"body_en,omitempty"`
	Link      string     `json:"link,omitempty"` // In-app route, e.g. /invoices/{id}
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// IsRead returns true once the user has opened the notification.
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}
