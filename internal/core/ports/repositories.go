package ports

import (
	"context"
	"time"

	"pyra-workspace/internal/core/domain"

	"github.com/google/uuid"
)

//go:generate mockgen -source=repositories.go -destination=mocks/repositories.go -package=mocks

// UserRepository defines persistence operations for workspace accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// ClientRepository defines persistence operations for agency clients.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	List(ctx context.Context) ([]domain.Client, error)
	Update(ctx context.Context, client *domain.Client) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProjectListParams holds filter + pagination for listing projects.
type ProjectListParams struct {
	ClientID *uuid.UUID
	Status   *domain.ProjectStatus
	Page     int
	PageSize int
}

// ProjectRepository defines persistence operations for projects.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	List(ctx context.Context, params ProjectListParams) ([]domain.Project, int64, error)
	Update(ctx context.Context, project *domain.Project) error
}

// DocumentListParams holds filter + pagination for listing quotes/invoices.
type DocumentListParams struct {
	DocType  *domain.DocumentType
	ClientID *uuid.UUID
	Status   *domain.DocumentStatus
	Page     int
	PageSize int
}

// DocumentRepository defines persistence operations for quotes and
// invoices. HighestNumber and NumberExists back the sequence generator;
// the documents.number column carries a UNIQUE constraint as the final
// guard against concurrent allocation.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	List(ctx context.Context, params DocumentListParams) ([]domain.Document, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.DocumentStatus) error
	// HighestNumber returns the lexicographically greatest number matching
	// "{prefix}-%", or "" when no document carries the prefix.
	HighestNumber(ctx context.Context, prefix string) (string, error)
	// NumberExists checks a candidate number by exact match.
	NumberExists(ctx context.Context, number string) (bool, error)
}

// WebhookRepository defines persistence operations for webhook
// registrations.
type WebhookRepository interface {
	Create(ctx context.Context, webhook *domain.Webhook) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Webhook, error)
	List(ctx context.Context) ([]domain.Webhook, error)
	ListEnabled(ctx context.Context) ([]domain.Webhook, error)
	Update(ctx context.Context, webhook *domain.Webhook) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// WebhookDeliveryRepository defines persistence for delivery attempt
// chains. Rows are created on first attempt and mutated in place on
// retries; the delivery path never deletes them.
type WebhookDeliveryRepository interface {
	Create(ctx context.Context, delivery *domain.WebhookDelivery) error
	Update(ctx context.Context, delivery *domain.WebhookDelivery) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.WebhookDelivery, error)
	ListByWebhook(ctx context.Context, webhookID uuid.UUID, limit int) ([]domain.WebhookDelivery, error)
	// ListDue returns retrying deliveries whose next_retry_at has elapsed.
	ListDue(ctx context.Context, now time.Time, limit int) ([]domain.WebhookDelivery, error)
}

// NotificationRepository defines persistence for in-app notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}

// ActivityListParams holds filter + pagination for the activity feed.
type ActivityListParams struct {
	EntityType *string
	ActorID    *uuid.UUID
	Page       int
	PageSize   int
}

// ActivityRepository defines persistence for the append-only audit feed.
type ActivityRepository interface {
	Create(ctx context.Context, entry *domain.ActivityLog) error
	List(ctx context.Context, params ActivityListParams) ([]domain.ActivityLog, int64, error)
}

// ArticleRepository defines persistence for knowledge-base articles.
type ArticleRepository interface {
	Create(ctx context.Context, article *domain.Article) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Article, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Article, error)
	List(ctx context.Context, publishedOnly bool, category string) ([]domain.Article, error)
	Update(ctx context.Context, article *domain.Article) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// FileRepository defines persistence for stored-file metadata.
type FileRepository interface {
	Create(ctx context.Context, file *domain.StoredFile) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.StoredFile, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.StoredFile, error)
	Update(ctx context.Context, file *domain.StoredFile) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SettingsRepository defines the key-value settings lookup. Get returns
// "" when the key is absent.
type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	All(ctx context.Context) (map[string]string, error)
}

