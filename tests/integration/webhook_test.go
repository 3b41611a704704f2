package integration

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"pyra-workspace/internal/core/domain"
	"pyra-workspace/internal/service"
	"pyra-workspace/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const webhookTestSecret = "whsec_integration_test_key"

// flakyEndpoint is a webhook receiver that fails until told to recover,
// capturing the signature headers of every request it sees.
type flakyEndpoint struct {
	healthy   atomic.Bool
	hits      atomic.Int32
	signature atomic.Value // string
	payload   atomic.Value // []byte
}

func (e *flakyEndpoint) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e.hits.Add(1)
		body, _ := io.ReadAll(r.Body)
		e.payload.Store(body)
		e.signature.Store(r.Header.Get("X-Pyra-Signature"))

		if !e.healthy.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func TestWebhookDelivery_RetryChainRecovers(t *testing.T) {
	endpoint := &flakyEndpoint{}
	receiver := httptest.NewServer(endpoint.handler())
	defer receiver.Close()

	log := logger.NewWithWriter("error", io.Discard)
	webhookRepo := newInMemoryWebhookRepo()
	deliveryRepo := newInMemoryDeliveryRepo()
	sigSvc := service.NewHMACSignatureService()
	activitySvc := service.NewActivityService(newInMemoryActivityRepo(), log)
	webhookSvc := service.NewWebhookService(webhookRepo, deliveryRepo, sigSvc, activitySvc,
		&http.Client{Timeout: 2 * time.Second}, 2*time.Second, 10, log)

	ctx := context.Background()
	webhook := &domain.Webhook{
		Name:    "accounting-bridge",
		URL:     receiver.URL,
		Secret:  webhookTestSecret,
		Events:  []string{domain.WildcardEvent},
		Enabled: true,
	}
	require.NoError(t, webhookSvc.CreateWebhook(ctx, webhook, nil))

	// First attempt lands while the receiver is down.
	webhookSvc.Dispatch(ctx, domain.EventInvoicePaid, map[string]string{"number": "INV-0042"})

	var delivery domain.WebhookDelivery
	require.Eventually(t, func() bool {
		rows, err := deliveryRepo.ListByWebhook(ctx, webhook.ID, 10)
		if err != nil || len(rows) == 0 {
			return false
		}
		delivery = rows[0]
		return true
	}, 3*time.Second, 20*time.Millisecond, "delivery row never recorded")

	require.Equal(t, domain.DeliveryStatusRetrying, delivery.Status)
	require.Equal(t, 1, delivery.Attempt)
	require.NotNil(t, delivery.NextRetryAt)
	require.True(t, delivery.NextRetryAt.After(time.Now()), "first retry should be scheduled in the future")

	// Nothing is due yet, so a sweep attempts nothing.
	attempted, err := webhookSvc.ProcessRetries(ctx)
	require.NoError(t, err)
	require.Zero(t, attempted)

	// Receiver recovers; pull the retry forward and sweep again.
	endpoint.healthy.Store(true)
	past := time.Now().UTC().Add(-time.Minute)
	delivery.NextRetryAt = &past
	require.NoError(t, deliveryRepo.Update(ctx, &delivery))

	attempted, err = webhookSvc.ProcessRetries(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, attempted)

	final, err := deliveryRepo.GetByID(ctx, delivery.ID)
	require.NoError(t, err)
	require.Equal(t, domain.DeliveryStatusSuccess, final.Status)
	require.Equal(t, 2, final.Attempt)
	require.NotNil(t, final.DeliveredAt)
	require.Nil(t, final.NextRetryAt)
	require.GreaterOrEqual(t, endpoint.hits.Load(), int32(2))

	// The receiver can authenticate the payload with the shared secret.
	sig, _ := endpoint.signature.Load().(string)
	payload, _ := endpoint.payload.Load().([]byte)
	require.NotEmpty(t, sig)
	require.True(t, sigSvc.Verify(webhookTestSecret, payload, sig))
}

func TestWebhookDelivery_DisabledWebhookFailsChain(t *testing.T) {
	log := logger.NewWithWriter("error", io.Discard)
	webhookRepo := newInMemoryWebhookRepo()
	deliveryRepo := newInMemoryDeliveryRepo()
	activitySvc := service.NewActivityService(newInMemoryActivityRepo(), log)
	webhookSvc := service.NewWebhookService(webhookRepo, deliveryRepo,
		service.NewHMACSignatureService(), activitySvc,
		&http.Client{Timeout: time.Second}, time.Second, 10, log)

	ctx := context.Background()
	webhookID := uuid.New()
	past := time.Now().UTC().Add(-time.Minute)
	delivery := &domain.WebhookDelivery{
		ID:          uuid.New(),
		WebhookID:   webhookID, // No matching registration exists
		Event:       domain.EventQuoteAccepted,
		Payload:     `{"event":"quote.accepted"}`,
		Attempt:     2,
		Status:      domain.DeliveryStatusRetrying,
		NextRetryAt: &past,
	}
	require.NoError(t, deliveryRepo.Create(ctx, delivery))

	attempted, err := webhookSvc.ProcessRetries(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, attempted)

	final, err := deliveryRepo.GetByID(ctx, delivery.ID)
	require.NoError(t, err)
	require.Equal(t, domain.DeliveryStatusFailed, final.Status)
	require.Nil(t, final.NextRetryAt)
	require.NotNil(t, final.LastError)
}

func TestWebhookAdminAPI_RegisterAndRunRetries(t *testing.T) {
	app := newTestApp(t)
	token := app.registerAndLogin(t, "admin@pyra.sa", "admin", nil)

	status, env := app.request(t, http.MethodPost, "/api/v1/admin/webhooks", token,
		map[string]interface{}{
			"name":   "zapier-bridge",
			"url":    "https://hooks.example.sa/pyra",
			"secret": webhookTestSecret,
			"events": []string{"invoice.paid"},
		})
	require.Equal(t, http.StatusCreated, status, "body: %s", env.Message)

	var created domain.Webhook
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.True(t, created.Enabled)

	// Nothing due: the manual sweep reports zero attempts.
	status, env = app.request(t, http.MethodPost, "/api/v1/admin/webhooks/retries/run", token, nil)
	require.Equal(t, http.StatusOK, status)

	var result struct {
		Attempted int `json:"attempted"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	require.Zero(t, result.Attempted)
}
