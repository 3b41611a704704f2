package domain

import (
	"time"

	"github.com/google/uuid"
)

// WildcardEvent subscribes a webhook to every event.
const WildcardEvent = "*"

// Domain event names carried in X-Pyra-Event headers.
const (
	EventQuoteCreated         = "quote.created"
	EventQuoteAccepted        = "quote.accepted"
	EventQuoteRejected        = "quote.rejected"
	EventInvoiceCreated       = "invoice.created"
	EventInvoicePaid          = "invoice.paid"
	EventProjectCreated       = "project.created"
	EventProjectStatusChanged = "project.status_changed"
	EventFileUploaded         = "file.uploaded"
	EventArticlePublished     = "article.published"
)

// Webhook represents an admin-registered external endpoint.
type Webhook struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Secret    string    `json:"-"` // HMAC signing key, never exposed
	Events    []string  `json:"events"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Matches reports whether the webhook subscribes to the given event.
// A webhook with an empty event list matches nothing: subscriptions are
// explicit, either by event name or via the "*" wildcard.
func (w *Webhook) Matches(event string) bool {
	for _, e := range w.Events {
		if e == event || e == WildcardEvent {
			return true
		}
	}
	return false
}

// DeliveryStatus represents the state of one webhook delivery chain.
type DeliveryStatus string

const (
	DeliveryStatusSuccess  DeliveryStatus = "success"
	DeliveryStatusRetrying DeliveryStatus = "retrying"
	DeliveryStatusFailed   DeliveryStatus = "failed"
)

// WebhookDelivery records the attempt chain for one event sent to one
// webhook. It is created on the first attempt and updated in place on each
// retry; rows are never deleted by the delivery path.
type WebhookDelivery struct {
	ID           uuid.UUID      `json:"id"`
	WebhookID    uuid.UUID      `json:"webhook_id"`
	Event        string         `json:"event"`
	Payload      string         `json:"payload"` // Serialized request body
	HTTPStatus   *int           `json:"http_status,omitempty"`
	ResponseBody *string        `json:"response_body,omitempty"` // Truncated to 500 chars
	Attempt      int            `json:"attempt"`
	Status       DeliveryStatus `json:"status"`
	NextRetryAt  *time.Time     `json:"next_retry_at,omitempty"`
	LastError    *string        `json:"last_error,omitempty"`
	DeliveredAt  *time.Time     `json:"delivered_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
