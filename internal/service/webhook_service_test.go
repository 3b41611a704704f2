package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"pyra-workspace/internal/core/domain"
	"pyra-workspace/internal/core/ports"
	"pyra-workspace/internal/core/ports/mocks"
	"pyra-workspace/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type webhookFixture struct {
	webhookRepo  *mocks.MockWebhookRepository
	deliveryRepo *mocks.MockWebhookDeliveryRepository
	activitySvc  *mocks.MockActivityService
	svc          ports.WebhookService
}

func newWebhookFixture(t *testing.T, maxAttempts int) *webhookFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &webhookFixture{
		webhookRepo:  mocks.NewMockWebhookRepository(ctrl),
		deliveryRepo: mocks.NewMockWebhookDeliveryRepository(ctrl),
		activitySvc:  mocks.NewMockActivityService(ctrl),
	}
	f.svc = NewWebhookService(
		f.webhookRepo, f.deliveryRepo,
		NewHMACSignatureService(), f.activitySvc,
		&http.Client{}, 10*time.Second, maxAttempts,
		logger.NewWithWriter("error", io.Discard),
	)
	return f
}

func enabledWebhook(url string, events ...string) domain.Webhook {
	now := time.Now().UTC()
	return domain.Webhook{
		ID:        uuid.New(),
		Name:      "test-endpoint",
		URL:       url,
		Secret:    "whsec_test",
		Events:    events,
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestWebhookService_Dispatch_DeliversAndSigns(t *testing.T) {
	sig := NewHMACSignatureService()

	var gotBody []byte
	var gotReq *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(context.Background())
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	f := newWebhookFixture(t, 10)
	webhook := enabledWebhook(server.URL, domain.EventInvoiceCreated)

	f.webhookRepo.EXPECT().ListEnabled(gomock.Any()).Return([]domain.Webhook{webhook}, nil)

	recorded := make(chan *domain.WebhookDelivery, 1)
	f.deliveryRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, d *domain.WebhookDelivery) error {
			recorded <- d
			return nil
		})

	f.svc.Dispatch(context.Background(), domain.EventInvoiceCreated, map[string]string{"number": "INV-0001"})

	var delivery *domain.WebhookDelivery
	select {
	case delivery = <-recorded:
	case <-time.After(5 * time.Second):
		t.Fatal("delivery was not recorded")
	}

	assert.Equal(t, domain.DeliveryStatusSuccess, delivery.Status)
	assert.Equal(t, 1, delivery.Attempt)
	require.NotNil(t, delivery.HTTPStatus)
	assert.Equal(t, http.StatusOK, *delivery.HTTPStatus)
	assert.NotNil(t, delivery.DeliveredAt)
	assert.Nil(t, delivery.NextRetryAt)

	require.NotNil(t, gotReq)
	assert.Equal(t, domain.EventInvoiceCreated, gotReq.Header.Get("X-Pyra-Event"))
	assert.Equal(t, webhook.ID.String(), gotReq.Header.Get("X-Pyra-Webhook-Id"))
	assert.Equal(t, "Pyra-Workspace/1.0", gotReq.Header.Get("User-Agent"))
	assert.Equal(t, "application/json", gotReq.Header.Get("Content-Type"))
	assert.NotEmpty(t, gotReq.Header.Get("X-Pyra-Timestamp"))

	// Signature must verify against the exact bytes that arrived.
	assert.True(t, sig.Verify(webhook.Secret, gotBody, gotReq.Header.Get("X-Pyra-Signature")))
	assert.JSONEq(t, delivery.Payload, string(gotBody))
	assert.Contains(t, string(gotBody), `"event":"invoice.created"`)
}

func TestWebhookService_Dispatch_NoSubscriberNoDelivery(t *testing.T) {
	f := newWebhookFixture(t, 10)

	// Subscribed to a different event, plus one with an empty list, which
	// matches nothing.
	other := enabledWebhook("http://unused.invalid", domain.EventQuoteCreated)
	silent := enabledWebhook("http://unused.invalid")

	loaded := make(chan struct{})
	f.webhookRepo.EXPECT().ListEnabled(gomock.Any()).
		DoAndReturn(func(context.Context) ([]domain.Webhook, error) {
			close(loaded)
			return []domain.Webhook{other, silent}, nil
		})

	f.svc.Dispatch(context.Background(), domain.EventInvoicePaid, nil)

	select {
	case <-loaded:
	case <-time.After(5 * time.Second):
		t.Fatal("registrations were never loaded")
	}
	// Give the detached fan-out a moment to (wrongly) record anything; a
	// Create call would fail the controller, which has no expectation for it.
	time.Sleep(100 * time.Millisecond)
}

// newDeliverService returns the concrete service so single-delivery
// classification can be exercised directly.
func newDeliverService(t *testing.T, timeout time.Duration) *webhookService {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := NewWebhookService(
		mocks.NewMockWebhookRepository(ctrl),
		mocks.NewMockWebhookDeliveryRepository(ctrl),
		NewHMACSignatureService(),
		mocks.NewMockActivityService(ctrl),
		&http.Client{}, timeout, 10,
		logger.NewWithWriter("error", io.Discard),
	)
	return svc.(*webhookService)
}

func TestWebhookService_Deliver_ClassifiesStatusCodes(t *testing.T) {
	cases := []struct {
		name        string
		status      int
		wantSuccess bool
	}{
		{"created", 201, true},
		{"top of 2xx", 299, true},
		{"redirect is not success", 300, false},
		{"server error", 500, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer server.Close()

			svc := newDeliverService(t, 2*time.Second)
			webhook := enabledWebhook(server.URL, domain.WildcardEvent)

			outcome := svc.deliver(context.Background(), &webhook, domain.EventInvoicePaid, []byte(`{}`))
			assert.Equal(t, tc.wantSuccess, outcome.Success)
			require.NotNil(t, outcome.HTTPStatus)
			assert.Equal(t, tc.status, *outcome.HTTPStatus)
			if !tc.wantSuccess {
				require.NotNil(t, outcome.Error)
				assert.Equal(t, fmt.Sprintf("HTTP %d", tc.status), *outcome.Error)
			}
		})
	}
}

func TestWebhookService_Deliver_TimesOutHangingEndpoint(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	svc := newDeliverService(t, 200*time.Millisecond)
	webhook := enabledWebhook(server.URL, domain.WildcardEvent)

	start := time.Now()
	outcome := svc.deliver(context.Background(), &webhook, domain.EventQuoteCreated, []byte(`{}`))
	elapsed := time.Since(start)

	assert.False(t, outcome.Success)
	assert.Nil(t, outcome.HTTPStatus)
	require.NotNil(t, outcome.Error)
	assert.Contains(t, *outcome.Error, "context deadline exceeded")
	// The attempt is aborted at the configured timeout, not left hanging.
	assert.Less(t, elapsed, 5*time.Second)
}

func TestWebhookService_Deliver_NetworkErrorPopulated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	svc := newDeliverService(t, time.Second)
	webhook := enabledWebhook(url, domain.WildcardEvent)

	outcome := svc.deliver(context.Background(), &webhook, domain.EventFileUploaded, []byte(`{}`))
	assert.False(t, outcome.Success)
	assert.Nil(t, outcome.HTTPStatus)
	require.NotNil(t, outcome.Error)
	assert.NotEmpty(t, *outcome.Error)
}

func TestWebhookService_Deliver_ExcerptTruncatesOnRunes(t *testing.T) {
	long := strings.Repeat("م", 800)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, long, http.StatusBadGateway)
	}))
	defer server.Close()

	svc := newDeliverService(t, 2*time.Second)
	webhook := enabledWebhook(server.URL, domain.WildcardEvent)

	outcome := svc.deliver(context.Background(), &webhook, domain.EventInvoicePaid, []byte(`{}`))
	require.NotNil(t, outcome.Body)
	assert.Equal(t, 500, utf8.RuneCountInString(*outcome.Body))
	assert.True(t, utf8.ValidString(*outcome.Body), "excerpt must not cut an Arabic character in half")
}

func TestWebhookService_Dispatch_FailureSchedulesRetry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream busy", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	f := newWebhookFixture(t, 10)
	webhook := enabledWebhook(server.URL, domain.WildcardEvent)

	f.webhookRepo.EXPECT().ListEnabled(gomock.Any()).Return([]domain.Webhook{webhook}, nil)

	recorded := make(chan *domain.WebhookDelivery, 1)
	f.deliveryRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, d *domain.WebhookDelivery) error {
			recorded <- d
			return nil
		})

	before := time.Now().UTC()
	f.svc.Dispatch(context.Background(), domain.EventProjectCreated, nil)

	var delivery *domain.WebhookDelivery
	select {
	case delivery = <-recorded:
	case <-time.After(5 * time.Second):
		t.Fatal("delivery was not recorded")
	}

	assert.Equal(t, domain.DeliveryStatusRetrying, delivery.Status)
	require.NotNil(t, delivery.LastError)
	assert.Equal(t, "HTTP 503", *delivery.LastError)
	require.NotNil(t, delivery.ResponseBody)
	assert.Contains(t, *delivery.ResponseBody, "upstream busy")

	// First retry lands about 60s out.
	require.NotNil(t, delivery.NextRetryAt)
	delay := delivery.NextRetryAt.Sub(before)
	assert.InDelta(t, float64(60*time.Second), float64(delay), float64(5*time.Second))
}

func TestWebhookService_ProcessRetries_SucceedsAndCompletes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	f := newWebhookFixture(t, 10)
	webhook := enabledWebhook(server.URL, domain.WildcardEvent)
	retryAt := time.Now().UTC().Add(-time.Minute)
	due := domain.WebhookDelivery{
		ID:          uuid.New(),
		WebhookID:   webhook.ID,
		Event:       domain.EventQuoteAccepted,
		Payload:     `{"event":"quote.accepted","data":{}}`,
		Attempt:     2,
		Status:      domain.DeliveryStatusRetrying,
		NextRetryAt: &retryAt,
	}

	f.deliveryRepo.EXPECT().ListDue(gomock.Any(), gomock.Any(), gomock.Any()).Return([]domain.WebhookDelivery{due}, nil)
	f.webhookRepo.EXPECT().GetByID(gomock.Any(), webhook.ID).Return(&webhook, nil)

	var updated *domain.WebhookDelivery
	f.deliveryRepo.EXPECT().Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, d *domain.WebhookDelivery) error {
			updated = d
			return nil
		})

	processed, err := f.svc.ProcessRetries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	require.NotNil(t, updated)
	assert.Equal(t, domain.DeliveryStatusSuccess, updated.Status)
	assert.Equal(t, 3, updated.Attempt)
	assert.NotNil(t, updated.DeliveredAt)
	assert.Nil(t, updated.NextRetryAt)
}

func TestWebhookService_ProcessRetries_FailsPermanentlyAtCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f := newWebhookFixture(t, 10)
	webhook := enabledWebhook(server.URL, domain.WildcardEvent)
	retryAt := time.Now().UTC().Add(-time.Minute)
	due := domain.WebhookDelivery{
		ID:          uuid.New(),
		WebhookID:   webhook.ID,
		Event:       domain.EventFileUploaded,
		Payload:     `{"event":"file.uploaded","data":{}}`,
		Attempt:     9,
		Status:      domain.DeliveryStatusRetrying,
		NextRetryAt: &retryAt,
	}

	f.deliveryRepo.EXPECT().ListDue(gomock.Any(), gomock.Any(), gomock.Any()).Return([]domain.WebhookDelivery{due}, nil)
	f.webhookRepo.EXPECT().GetByID(gomock.Any(), webhook.ID).Return(&webhook, nil)

	var updated *domain.WebhookDelivery
	f.deliveryRepo.EXPECT().Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, d *domain.WebhookDelivery) error {
			updated = d
			return nil
		})

	_, err := f.svc.ProcessRetries(context.Background())
	require.NoError(t, err)

	require.NotNil(t, updated)
	assert.Equal(t, domain.DeliveryStatusFailed, updated.Status)
	assert.Equal(t, 10, updated.Attempt)
	assert.Nil(t, updated.NextRetryAt)
	require.NotNil(t, updated.LastError)
	assert.Equal(t, "HTTP 500", *updated.LastError)
}

func TestWebhookService_ProcessRetries_DeletedWebhookFailsChain(t *testing.T) {
	f := newWebhookFixture(t, 10)
	retryAt := time.Now().UTC().Add(-time.Minute)
	due := domain.WebhookDelivery{
		ID:          uuid.New(),
		WebhookID:   uuid.New(),
		Event:       domain.EventArticlePublished,
		Payload:     `{}`,
		Attempt:     1,
		Status:      domain.DeliveryStatusRetrying,
		NextRetryAt: &retryAt,
	}

	f.deliveryRepo.EXPECT().ListDue(gomock.Any(), gomock.Any(), gomock.Any()).Return([]domain.WebhookDelivery{due}, nil)
	f.webhookRepo.EXPECT().GetByID(gomock.Any(), due.WebhookID).Return(nil, nil)

	var updated *domain.WebhookDelivery
	f.deliveryRepo.EXPECT().Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, d *domain.WebhookDelivery) error {
			updated = d
			return nil
		})

	_, err := f.svc.ProcessRetries(context.Background())
	require.NoError(t, err)

	require.NotNil(t, updated)
	assert.Equal(t, domain.DeliveryStatusFailed, updated.Status)
}

func TestBackoffDelay_Schedule(t *testing.T) {
	assert.Equal(t, 60*time.Second, backoffDelay(1))
	assert.Equal(t, 300*time.Second, backoffDelay(2))
	assert.Equal(t, 900*time.Second, backoffDelay(3))
	// Caps at the last entry for every later attempt.
	assert.Equal(t, 900*time.Second, backoffDelay(4))
	assert.Equal(t, 900*time.Second, backoffDelay(9))
}

func TestWebhookService_SetEnabled(t *testing.T) {
	f := newWebhookFixture(t, 10)
	webhook := enabledWebhook("https://example.com/hook", domain.WildcardEvent)

	f.webhookRepo.EXPECT().GetByID(gomock.Any(), webhook.ID).Return(&webhook, nil)
	f.webhookRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
	f.activitySvc.EXPECT().Record(gomock.Any(), gomock.Any(), "webhook.disabled", "webhook", gomock.Any(), webhook.Name)

	updated, err := f.svc.SetEnabled(context.Background(), webhook.ID, false, nil)
	require.NoError(t, err)
	assert.False(t, updated.Enabled)
}

func TestWebhookService_GetWebhook_NotFound(t *testing.T) {
	f := newWebhookFixture(t, 10)
	id := uuid.New()

	f.webhookRepo.EXPECT().GetByID(gomock.Any(), id).Return(nil, nil)

	_, err := f.svc.GetWebhook(context.Background(), id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WH_001")
}
