package dto

import (
	"time"

	"pyra-workspace/internal/core/domain"
)

// RegisterRequest is the request body for account creation.
type RegisterRequest struct {
	Email    string  `json:"email" binding:"required,email,max=255"`
	Password string  `json:"password" binding:"required,min=8,max=128"`
	Name     string  `json:"name" binding:"required,min=1,max=100"`
	Role     string  `json:"role" binding:"omitempty,oneof=admin client"`
	ClientID *string `json:"client_id,omitempty" binding:"omitempty,uuid"`
	Locale   string  `json:"locale" binding:"omitempty,oneof=ar en"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string       `json:"token"`
	Expiry int64        `json:"expiry"` // Unix timestamp
	User   *domain.User `json:"user"`
}

// ClientRequest is the request body for creating or updating an agency
// client.
type ClientRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=200"`
	Company string `json:"company" binding:"max=200"`
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone" binding:"max=30"`
	Notes   string `json:"notes" binding:"max=2000"`
}

// ProjectRequest is the request body for creating or updating a project.
type ProjectRequest struct {
	ClientID    string     `json:"client_id" binding:"required,uuid"`
	Title       string     `json:"title" binding:"required,min=1,max=300"`
	Description string     `json:"description" binding:"max=5000"`
	DueAt       *time.Time `json:"due_at,omitempty"`
}

// StatusRequest carries a target lifecycle status.
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// LineItemRequest is one billable row in a document request.
type LineItemRequest struct {
	DescriptionAr string `json:"description_ar" binding:"required,max=500"`
	DescriptionEn string `json:"description_en" binding:"max=500"`
	Quantity      int64  `json:"quantity" binding:"required,gt=0"`
	UnitPrice     int64  `json:"unit_price" binding:"gte=0"`
}

// DocumentRequest is the request body for creating a quote or invoice.
// Amounts are in halalas; tax_rate is in basis points.
type DocumentRequest struct {
	ClientID     string            `json:"client_id" binding:"required,uuid"`
	ProjectID    *string           `json:"project_id,omitempty" binding:"omitempty,uuid"`
	Items        []LineItemRequest `json:"items" binding:"required,min=1,dive"`
	TaxRate      int64             `json:"tax_rate" binding:"gte=0,lte=10000"`
	Notes        string            `json:"notes" binding:"max=2000"`
	DueAt        *time.Time        `json:"due_at,omitempty"`
	NumberPrefix string            `json:"number_prefix" binding:"omitempty,max=10"`
}

// DocumentListResponse wraps a paginated document list.
type DocumentListResponse struct {
	Items      []domain.Document `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// ProjectListResponse wraps a paginated project list.
type ProjectListResponse struct {
	Items      []domain.Project `json:"items"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// ActivityListResponse wraps a page of the audit feed.
type ActivityListResponse struct {
	Items      []domain.ActivityLog `json:"items"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
	TotalPages int                  `json:"total_pages"`
}

// InitiateUploadRequest is the request body for the presigned-upload
// handshake.
type InitiateUploadRequest struct {
	ProjectID   *string `json:"project_id,omitempty" binding:"omitempty,uuid"`
	Name        string  `json:"name" binding:"required,min=1,max=255"`
	Size        int64   `json:"size" binding:"required,gt=0"`
	ContentType string  `json:"content_type" binding:"max=150"`
}

// InitiateUploadResponse returns the created file row and the presigned
// PUT URL the browser uploads to.
type InitiateUploadResponse struct {
	File      *domain.StoredFile `json:"file"`
	UploadURL string             `json:"upload_url"`
}

// DownloadURLResponse carries a presigned GET URL.
type DownloadURLResponse struct {
	URL string `json:"url"`
}

// ArticleRequest is the request body for knowledge-base articles.
type ArticleRequest struct {
	Slug     string `json:"slug" binding:"required,min=1,max=200"`
	TitleAr  string `json:"title_ar" binding:"required,max=300"`
	TitleEn  string `json:"title_en" binding:"max=300"`
	BodyAr   string `json:"body_ar" binding:"required"`
	BodyEn   string `json:"body_en"`
	Category string `json:"category" binding:"max=100"`
}

// WebhookRequest is the request body for registering or updating a
// webhook. The secret is write-only; it never appears in responses.
type WebhookRequest struct {
	Name    string   `json:"name" binding:"required,min=1,max=100"`
	URL     string   `json:"url" binding:"required,safe_url,max=2000"`
	Secret  string   `json:"secret" binding:"omitempty,min=16,max=200"`
	Events  []string `json:"events" binding:"required"`
	Enabled *bool    `json:"enabled,omitempty"`
}

// EnabledRequest toggles a webhook on or off.
type EnabledRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// SettingRequest is the request body for writing one workspace setting.
type SettingRequest struct {
	Value string `json:"value" binding:"max=2000"`
}

// NotificationRequest is the request body for sending an in-app
// notification to one user.
type NotificationRequest struct {
	UserID  string `json:"user_id" binding:"required,uuid"`
	TitleAr string `json:"title_ar" binding:"required,max=300"`
	TitleEn string `json:"title_en" binding:"max=300"`
	BodyAr  string `json:"body_ar" binding:"max=2000"`
	BodyEn  string `json:"body_en" binding:"max=2000"`
	Link    string `json:"link" binding:"max=500"`
}

// UnreadCountResponse carries the unread notification badge count.
type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}
