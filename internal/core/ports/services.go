package ports

import (
	"context"
	"time"

	"pyra-workspace/internal/core/domain"

	"github.com/google/uuid"
)

//go:generate mockgen -source=services.go -destination=mocks/services.go -package=mocks

// SignatureService handles HMAC-SHA256 signing of webhook payloads.
type SignatureService interface {
	Sign(secret string, payload []byte) string
	Verify(secret string, payload []byte, signature string) bool
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations. Each token carries a random
// session ID so individual logins can be revoked.
type TokenService interface {
	Generate(userID uuid.UUID, role domain.UserRole, sessionID string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID    uuid.UUID
	Role      domain.UserRole
	SessionID string
}

// ObjectStore abstracts the S3-compatible file store. URLs are presigned
// and handed to the browser; file bytes never pass through this service.
type ObjectStore interface {
	PresignUpload(ctx context.Context, key, contentType string) (string, error)
	PresignDownload(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// SequenceService produces unique human-readable document numbers of the
// form {prefix}-{NNNN}. It never fails: when the padded retry loop is
// exhausted it degrades to a timestamp-based fallback number.
type SequenceService interface {
	NextNumber(ctx context.Context, docType domain.DocumentType, prefixOverride string) string
}

// --- Service Ports (Business Logic) ---

// AuthService defines registration, login and session revocation.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, time.Time, *domain.User, error)
	Logout(ctx context.Context, sessionID string) error
}

// RegisterRequest holds input for account creation.
type RegisterRequest struct {
	Email    string
	Password string
	Name     string
	Role     domain.UserRole
	ClientID *uuid.UUID
	Locale   string
}

// CreateDocumentRequest holds validated input for quote/invoice creation.
type CreateDocumentRequest struct {
	DocType      domain.DocumentType
	ClientID     uuid.UUID
	ProjectID    *uuid.UUID
	Items        []domain.LineItem
	TaxRate      int64 // Basis points
	Notes        string
	DueAt        *time.Time
	NumberPrefix string // Optional override; settings/default otherwise
	ActorID      *uuid.UUID
}

// BillingService defines quote and invoice business logic.
type BillingService interface {
	CreateDocument(ctx context.Context, req CreateDocumentRequest) (*domain.Document, error)
	GetDocument(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	ListDocuments(ctx context.Context, params DocumentListParams) ([]domain.Document, int64, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, target domain.DocumentStatus, actorID *uuid.UUID) (*domain.Document, error)
	// ConvertQuote creates an invoice from an accepted quote, copying its
	// line items and assigning a fresh invoice number.
	ConvertQuote(ctx context.Context, quoteID uuid.UUID, actorID *uuid.UUID) (*domain.Document, error)
}

// ProjectService defines project business logic.
type ProjectService interface {
	Create(ctx context.Context, project *domain.Project, actorID *uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	List(ctx context.Context, params ProjectListParams) ([]domain.Project, int64, error)
	Update(ctx context.Context, project *domain.Project, actorID *uuid.UUID) error
	ChangeStatus(ctx context.Context, id uuid.UUID, target domain.ProjectStatus, actorID *uuid.UUID) (*domain.Project, error)
}

// ClientService defines agency-client management.
type ClientService interface {
	Create(ctx context.Context, client *domain.Client, actorID *uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	List(ctx context.Context) ([]domain.Client, error)
	Update(ctx context.Context, client *domain.Client, actorID *uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID, actorID *uuid.UUID) error
}

// ArticleService defines knowledge-base management.
type ArticleService interface {
	Create(ctx context.Context, article *domain.Article, actorID *uuid.UUID) error
	Update(ctx context.Context, article *domain.Article, actorID *uuid.UUID) error
	Publish(ctx context.Context, id uuid.UUID, actorID *uuid.UUID) (*domain.Article, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Article, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Article, error)
	List(ctx context.Context, publishedOnly bool, category string) ([]domain.Article, error)
	Delete(ctx context.Context, id uuid.UUID, actorID *uuid.UUID) error
}

// NotificationService defines in-app notification logic.
type NotificationService interface {
	Notify(ctx context.Context, n *domain.Notification) error
	ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Notification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}

// ActivityService records and lists audit entries. Record never fails the
// caller: persistence errors are logged and swallowed.
type ActivityService interface {
	Record(ctx context.Context, actorID *uuid.UUID, action, entityType string, entityID *uuid.UUID, detail string)
	List(ctx context.Context, params ActivityListParams) ([]domain.ActivityLog, int64, error)
}

// InitiateUploadRequest holds input for the presigned-upload handshake.
type InitiateUploadRequest struct {
	ProjectID   *uuid.UUID
	Name        string
	Size        int64
	ContentType string
	UploadedBy  uuid.UUID
}

// FileService defines file storage business logic.
type FileService interface {
	InitiateUpload(ctx context.Context, req InitiateUploadRequest) (*domain.StoredFile, string, error)
	CompleteUpload(ctx context.Context, fileID, actorID uuid.UUID) (*domain.StoredFile, error)
	DownloadURL(ctx context.Context, fileID uuid.UUID) (string, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.StoredFile, error)
	Delete(ctx context.Context, fileID uuid.UUID, actorID *uuid.UUID) error
}

// SettingsService defines workspace settings access.
type SettingsService interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, actorID *uuid.UUID) error
	All(ctx context.Context) (map[string]string, error)
}

// DeliveryOutcome is the structured result of one delivery attempt. All
// failure paths (non-2xx, network error, timeout) are converted into this
// value; delivery never returns an error.
type DeliveryOutcome struct {
	Success    bool
	HTTPStatus *int
	Body       *string // First 500 chars of the response body
	Error      *string
}

// WebhookService defines webhook registration management, event dispatch
// and retry processing.
type WebhookService interface {
	// Dispatch fans an event out to all subscribed webhooks. It is
	// fire-and-forget: the call returns immediately and failures are only
	// logged and recorded as delivery rows.
	Dispatch(ctx context.Context, event string, data interface{})
	// ProcessRetries redelivers due retrying deliveries and returns how
	// many were attempted.
	ProcessRetries(ctx context.Context) (int, error)

	CreateWebhook(ctx context.Context, webhook *domain.Webhook, actorID *uuid.UUID) error
	GetWebhook(ctx context.Context, id uuid.UUID) (*domain.Webhook, error)
	ListWebhooks(ctx context.Context) ([]domain.Webhook, error)
	UpdateWebhook(ctx context.Context, webhook *domain.Webhook, actorID *uuid.UUID) error
	SetEnabled(ctx context.Context, id uuid.UUID, enabled bool, actorID *uuid.UUID) (*domain.Webhook, error)
	DeleteWebhook(ctx context.Context, id uuid.UUID, actorID *uuid.UUID) error
	ListDeliveries(ctx context.Context, webhookID uuid.UUID, limit int) ([]domain.WebhookDelivery, error)
}
