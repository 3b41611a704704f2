package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"pyra-workspace/internal/core/domain"
	"pyra-workspace/internal/core/ports"
	"pyra-workspace/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// webhookBackoff is the retry delay schedule. Attempts beyond the schedule
// reuse the last entry.
var webhookBackoff = []time.Duration{
	60 * time.Second,
	300 * time.Second,
	900 * time.Second,
}

const (
	webhookUserAgent   = "Pyra-Workspace/1.0"
	responseBodyLimit  = 500
	retrySweepBatchCap = 50
)

// eventPayload is the JSON body POSTed to webhook endpoints.
type eventPayload struct {
	Event     string      `json:"event"`
	Timestamp string      `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// webhookService implements ports.WebhookService.
type webhookService struct {
	webhookRepo  ports.WebhookRepository
	deliveryRepo ports.WebhookDeliveryRepository
	sigSvc       ports.SignatureService
	activitySvc  ports.ActivityService
	httpClient   HTTPClient
	timeout      time.Duration
	maxAttempts  int
	log          zerolog.Logger
}

// NewWebhookService creates a new webhook service. timeout bounds a single
// delivery attempt; maxAttempts caps the whole retry chain.
func NewWebhookService(
	webhookRepo ports.WebhookRepository,
	deliveryRepo ports.WebhookDeliveryRepository,
	sigSvc ports.SignatureService,
	activitySvc ports.ActivityService,
	httpClient HTTPClient,
	timeout time.Duration,
	maxAttempts int,
	log zerolog.Logger,
) ports.WebhookService {
	return &webhookService{
		webhookRepo:  webhookRepo,
		deliveryRepo: deliveryRepo,
		sigSvc:       sigSvc,
		activitySvc:  activitySvc,
		httpClient:   httpClient,
		timeout:      timeout,
		maxAttempts:  maxAttempts,
		log:          log,
	}
}

// Dispatch fans an event out to all enabled webhooks subscribed to it.
// It returns immediately; loading registrations and delivering both happen
// in a detached goroutine, so a slow registrations query never delays the
// triggering request. All failures end up as delivery rows or log lines,
// never as errors to the caller.
func (s *webhookService) Dispatch(ctx context.Context, event string, data interface{}) {
	// The request context dies with the HTTP response; deliveries continue
	// on their own context.
	go s.fanOut(context.Background(), event, data)
}

func (s *webhookService) fanOut(ctx context.Context, event string, data interface{}) {
	body, err := json.Marshal(eventPayload{
		Event:     event,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      data,
	})
	if err != nil {
		s.log.Error().Err(err).Str("event", event).Msg("webhook: failed to marshal event payload")
		return
	}

	webhooks, err := s.webhookRepo.ListEnabled(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("event", event).Msg("webhook: failed to list enabled webhooks")
		return
	}

	for i := range webhooks {
		w := webhooks[i]
		if !w.Matches(event) {
			continue
		}
		outcome := s.deliver(ctx, &w, event, body)

		now := time.Now().UTC()
		delivery := &domain.WebhookDelivery{
			ID:           uuid.New(),
			WebhookID:    w.ID,
			Event:        event,
			Payload:      string(body),
			HTTPStatus:   outcome.HTTPStatus,
			ResponseBody: outcome.Body,
			Attempt:      1,
			Status:       domain.DeliveryStatusSuccess,
			LastError:    outcome.Error,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if outcome.Success {
			delivery.DeliveredAt = &now
		} else {
			delivery.Status = domain.DeliveryStatusRetrying
			retryAt := now.Add(backoffDelay(1))
			delivery.NextRetryAt = &retryAt

			s.log.Warn().
				Str("webhook_id", w.ID.String()).
				Str("event", event).
				Str("error", strOrEmpty(outcome.Error)).
				Msg("webhook: delivery failed, scheduled for retry")
		}

		if err := s.deliveryRepo.Create(ctx, delivery); err != nil {
			s.log.Error().Err(err).Str("webhook_id", w.ID.String()).Msg("webhook: failed to record delivery")
		}
	}
}

// deliver performs one HTTP POST to a webhook endpoint. Every failure mode
// is folded into the returned outcome; it never returns an error.
func (s *webhookService) deliver(ctx context.Context, w *domain.Webhook, event string, body []byte) ports.DeliveryOutcome {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return failureOutcome(nil, nil, err.Error())
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", webhookUserAgent)
	req.Header.Set("X-Pyra-Signature", s.sigSvc.Sign(w.Secret, body))
	req.Header.Set("X-Pyra-Timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	req.Header.Set("X-Pyra-Event", event)
	req.Header.Set("X-Pyra-Webhook-Id", w.ID.String())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return failureOutcome(nil, nil, err.Error())
	}
	defer resp.Body.Close()

	excerpt := readExcerpt(resp.Body)
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return ports.DeliveryOutcome{Success: true, HTTPStatus: &resp.StatusCode, Body: &excerpt}
	}
	return failureOutcome(&resp.StatusCode, &excerpt, fmt.Sprintf("HTTP %d", resp.StatusCode))
}

// ProcessRetries redelivers every due retrying delivery once and returns
// how many were attempted. Called by the worker sweep and the admin
// endpoint.
func (s *webhookService) ProcessRetries(ctx context.Context) (int, error) {
	due, err := s.deliveryRepo.ListDue(ctx, time.Now().UTC(), retrySweepBatchCap)
	if err != nil {
		return 0, fmt.Errorf("listing due deliveries: %w", err)
	}

	processed := 0
	for i := range due {
		d := due[i]
		if err := s.retryDelivery(ctx, &d); err != nil {
			s.log.Error().Err(err).Str("delivery_id", d.ID.String()).Msg("webhook: retry processing failed")
			continue
		}
		processed++
	}
	return processed, nil
}

func (s *webhookService) retryDelivery(ctx context.Context, d *domain.WebhookDelivery) error {
	w, err := s.webhookRepo.GetByID(ctx, d.WebhookID)
	if err != nil {
		return err
	}
	if w == nil || !w.Enabled {
		// Endpoint removed or switched off mid-chain; the chain cannot
		// complete.
		d.Status = domain.DeliveryStatusFailed
		d.NextRetryAt = nil
		reason := "webhook disabled or deleted"
		d.LastError = &reason
		return s.deliveryRepo.Update(ctx, d)
	}

	outcome := s.deliver(ctx, w, d.Event, []byte(d.Payload))
	d.Attempt++
	d.HTTPStatus = outcome.HTTPStatus
	d.ResponseBody = outcome.Body
	d.LastError = outcome.Error

	now := time.Now().UTC()
	if outcome.Success {
		d.Status = domain.DeliveryStatusSuccess
		d.DeliveredAt = &now
		d.NextRetryAt = nil
	} else if d.Attempt >= s.maxAttempts {
		d.Status = domain.DeliveryStatusFailed
		d.NextRetryAt = nil
		s.log.Warn().
			Str("delivery_id", d.ID.String()).
			Int("attempts", d.Attempt).
			Msg("webhook: delivery permanently failed")
	} else {
		d.Status = domain.DeliveryStatusRetrying
		retryAt := now.Add(backoffDelay(d.Attempt))
		d.NextRetryAt = &retryAt
	}

	return s.deliveryRepo.Update(ctx, d)
}

// backoffDelay returns the wait before the attempt after attempt N.
func backoffDelay(attempt int) time.Duration {
	idx := attempt - 1
	if idx >= len(webhookBackoff) {
		idx = len(webhookBackoff) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return webhookBackoff[idx]
}

// readExcerpt keeps the first 500 characters of a response body. The limit
// counts runes, not bytes, so Arabic bodies are never cut mid-character.
func readExcerpt(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, responseBodyLimit*utf8.UTFMax+utf8.UTFMax))
	if err != nil {
		return ""
	}
	runes := []rune(string(b))
	if len(runes) > responseBodyLimit {
		runes = runes[:responseBodyLimit]
	}
	return string(runes)
}

func failureOutcome(status *int, body *string, message string) ports.DeliveryOutcome {
	return ports.DeliveryOutcome{Success: false, HTTPStatus: status, Body: body, Error: &message}
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// --- Registration management ---

// CreateWebhook registers a new endpoint.
func (s *webhookService) CreateWebhook(ctx context.Context, webhook *domain.Webhook, actorID *uuid.UUID) error {
	now := time.Now().UTC()
	webhook.ID = uuid.New()
	webhook.CreatedAt = now
	webhook.UpdatedAt = now

	if err := s.webhookRepo.Create(ctx, webhook); err != nil {
		return fmt.Errorf("creating webhook: %w", err)
	}
	s.activitySvc.Record(ctx, actorID, "webhook.created", "webhook", &webhook.ID, webhook.Name)
	return nil
}

// GetWebhook fetches one registration.
func (s *webhookService) GetWebhook(ctx context.Context, id uuid.UUID) (*domain.Webhook, error) {
	w, err := s.webhookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting webhook: %w", err)
	}
	if w == nil {
		return nil, apperror.ErrWebhookNotFound()
	}
	return w, nil
}

// ListWebhooks returns all registrations.
func (s *webhookService) ListWebhooks(ctx context.Context) ([]domain.Webhook, error) {
	return s.webhookRepo.List(ctx)
}

// UpdateWebhook rewrites a registration's mutable fields.
func (s *webhookService) UpdateWebhook(ctx context.Context, webhook *domain.Webhook, actorID *uuid.UUID) error {
	existing, err := s.webhookRepo.GetByID(ctx, webhook.ID)
	if err != nil {
		return fmt.Errorf("getting webhook: %w", err)
	}
	if existing == nil {
		return apperror.ErrWebhookNotFound()
	}
	if webhook.Secret == "" {
		webhook.Secret = existing.Secret
	}
	webhook.CreatedAt = existing.CreatedAt

	if err := s.webhookRepo.Update(ctx, webhook); err != nil {
		return fmt.Errorf("updating webhook: %w", err)
	}
	s.activitySvc.Record(ctx, actorID, "webhook.updated", "webhook", &webhook.ID, webhook.Name)
	return nil
}

// SetEnabled toggles a webhook on or off.
func (s *webhookService) SetEnabled(ctx context.Context, id uuid.UUID, enabled bool, actorID *uuid.UUID) (*domain.Webhook, error) {
	w, err := s.webhookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting webhook: %w", err)
	}
	if w == nil {
		return nil, apperror.ErrWebhookNotFound()
	}

	w.Enabled = enabled
	if err := s.webhookRepo.Update(ctx, w); err != nil {
		return nil, fmt.Errorf("updating webhook: %w", err)
	}

	action := "webhook.disabled"
	if enabled {
		action = "webhook.enabled"
	}
	s.activitySvc.Record(ctx, actorID, action, "webhook", &w.ID, w.Name)
	return w, nil
}

// DeleteWebhook removes a registration and its delivery history.
func (s *webhookService) DeleteWebhook(ctx context.Context, id uuid.UUID, actorID *uuid.UUID) error {
	w, err := s.webhookRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("getting webhook: %w", err)
	}
	if w == nil {
		return apperror.ErrWebhookNotFound()
	}

	if err := s.webhookRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting webhook: %w", err)
	}
	s.activitySvc.Record(ctx, actorID, "webhook.deleted", "webhook", &id, w.Name)
	return nil
}

// ListDeliveries returns the recent delivery history for one webhook.
func (s *webhookService) ListDeliveries(ctx context.Context, webhookID uuid.UUID, limit int) ([]domain.WebhookDelivery, error) {
	if _, err := s.GetWebhook(ctx, webhookID); err != nil {
		return nil, err
	}
	return s.deliveryRepo.ListByWebhook(ctx, webhookID, limit)
}
