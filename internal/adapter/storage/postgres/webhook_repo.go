package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pyra-workspace/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WebhookRepo implements ports.WebhookRepository.
type WebhookRepo struct {
	pool Pool
}

// NewWebhookRepo creates a new WebhookRepo.
func NewWebhookRepo(pool Pool) *WebhookRepo {
	return &WebhookRepo{pool: pool}
}

const webhookColumns = `id, name, url, secret, events, enabled, created_at, updated_at`

// Create inserts a new webhook registration.
func (r *WebhookRepo) Create(ctx context.Context, w *domain.Webhook) error {
	query := `INSERT INTO webhooks (id, name, url, secret, events, enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		w.ID, w.Name, w.URL, w.Secret, w.Events, w.Enabled,
		w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert webhook: %w", err)
	}
	return nil
}

// GetByID fetches a webhook by its UUID.
func (r *WebhookRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Webhook, error) {
	query := `SELECT ` + webhookColumns + ` FROM webhooks WHERE id = $1`

	w := &domain.Webhook{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&w.ID, &w.Name, &w.URL, &w.Secret, &w.Events, &w.Enabled,
		&w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get webhook by id: %w", err)
	}
	return w, nil
}

// List returns all webhook registrations.
func (r *WebhookRepo) List(ctx context.Context) ([]domain.Webhook, error) {
	return r.list(ctx, `SELECT `+webhookColumns+` FROM webhooks ORDER BY created_at`)
}

// ListEnabled returns only enabled webhooks, as read by the dispatcher.
func (r *WebhookRepo) ListEnabled(ctx context.Context) ([]domain.Webhook, error) {
	return r.list(ctx, `SELECT `+webhookColumns+` FROM webhooks WHERE enabled = true ORDER BY created_at`)
}

func (r *WebhookRepo) list(ctx context.Context, query string) ([]domain.Webhook, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list webhooks: %w", err)
	}
	defer rows.Close()

	var webhooks []domain.Webhook
	for rows.Next() {
		var w domain.Webhook
		if err := rows.Scan(
			&w.ID, &w.Name, &w.URL, &w.Secret, &w.Events, &w.Enabled,
			&w.CreatedAt, &w.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan webhook: %w", err)
		}
		webhooks = append(webhooks, w)
	}
	return webhooks, rows.Err()
}

// Update updates a webhook registration.
func (r *WebhookRepo) Update(ctx context.Context, w *domain.Webhook) error {
	w.UpdatedAt = time.Now().UTC()
	query := `UPDATE webhooks
		SET name=$1, url=$2, secret=$3, events=$4, enabled=$5, updated_at=$6
		WHERE id=$7`

	_, err := r.pool.Exec(ctx, query,
		w.Name, w.URL, w.Secret, w.Events, w.Enabled, w.UpdatedAt, w.ID,
	)
	if err != nil {
		return fmt.Errorf("update webhook: %w", err)
	}
	return nil
}

// Delete removes a webhook registration. Its delivery history is removed
// by the ON DELETE CASCADE on webhook_deliveries.
func (r *WebhookRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM webhooks WHERE id=$1`, id); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	return nil
}
