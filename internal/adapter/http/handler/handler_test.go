package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pyra-workspace/internal/adapter/http/dto"
	"pyra-workspace/internal/adapter/http/middleware"
	"pyra-workspace/internal/core/domain"
	"pyra-workspace/internal/core/ports"
	"pyra-workspace/internal/core/ports/mocks"
	"pyra-workspace/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func jsonRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func asAdmin(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CtxUserID, userID)
		c.Set(middleware.CtxUserRole, domain.RoleAdmin)
		c.Next()
	}
}

func asPortalUser(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CtxUserID, userID)
		c.Set(middleware.CtxUserRole, domain.RoleClient)
		c.Next()
	}
}

// --- Auth handler ---

func TestLogin_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	user := &domain.User{ID: uuid.New(), Email: "noura@pyra.sa", Role: domain.RoleAdmin}
	expiry := time.Now().Add(24 * time.Hour)
	mockAuth.EXPECT().
		Login(gomock.Any(), "noura@pyra.sa", "password123").
		Return("jwt-token", expiry, user, nil)

	router := gin.New()
	router.POST("/login", h.Login)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/login", dto.LoginRequest{
		Email:    "noura@pyra.sa",
		Password: "password123",
	}))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "jwt-token", data["token"])
	assert.Equal(t, float64(expiry.Unix()), data["expiry"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().
		Login(gomock.Any(), "noura@pyra.sa", "wrong").
		Return("", time.Time{}, nil, apperror.ErrInvalidCredentials())

	router := gin.New()
	router.POST("/login", h.Login)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/login", dto.LoginRequest{
		Email:    "noura@pyra.sa",
		Password: "wrong",
	}))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "AUTH_001", resp["error_code"])
}

func TestRegister_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewAuthHandler(mocks.NewMockAuthService(ctrl))

	router := gin.New()
	router.POST("/register", h.Register)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/register", map[string]string{
		"email": "not-an-email",
	}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Billing handler ---

func TestCreateQuote_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	billingSvc := mocks.NewMockBillingService(ctrl)
	userRepo := mocks.NewMockUserRepository(ctrl)
	h := NewBillingHandler(billingSvc, userRepo)

	adminID := uuid.New()
	clientID := uuid.New()
	doc := &domain.Document{
		ID:      uuid.New(),
		DocType: domain.DocumentTypeQuote,
		Number:  "QT-0001",
		Status:  domain.DocumentStatusDraft,
	}

	billingSvc.EXPECT().
		CreateDocument(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, req ports.CreateDocumentRequest) (*domain.Document, error) {
			assert.Equal(t, domain.DocumentTypeQuote, req.DocType)
			assert.Equal(t, clientID, req.ClientID)
			assert.Equal(t, int64(1500), req.TaxRate)
			require.Len(t, req.Items, 1)
			return doc, nil
		})

	router := gin.New()
	router.POST("/quotes", asAdmin(adminID), h.CreateQuote)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/quotes", dto.DocumentRequest{
		ClientID: clientID.String(),
		Items: []dto.LineItemRequest{
			{DescriptionAr: "تصميم شعار", Quantity: 1, UnitPrice: 250000},
		},
		TaxRate: 1500,
	}))

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "QT-0001", data["number"])
}

func TestListDocuments_PortalUserPinnedToOwnClient(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	billingSvc := mocks.NewMockBillingService(ctrl)
	userRepo := mocks.NewMockUserRepository(ctrl)
	h := NewBillingHandler(billingSvc, userRepo)

	userID := uuid.New()
	clientID := uuid.New()
	otherClient := uuid.New()

	userRepo.EXPECT().GetByID(gomock.Any(), userID).Return(&domain.User{
		ID:       userID,
		Role:     domain.RoleClient,
		ClientID: &clientID,
	}, nil)

	billingSvc.EXPECT().
		ListDocuments(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, params ports.DocumentListParams) ([]domain.Document, int64, error) {
			require.NotNil(t, params.ClientID)
			assert.Equal(t, clientID, *params.ClientID)
			return nil, 0, nil
		})

	router := gin.New()
	router.GET("/documents", asPortalUser(userID), h.List)

	// The query filter is ignored for portal users.
	req := httptest.NewRequest(http.MethodGet, "/documents?client_id="+otherClient.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetDocument_PortalUserForbiddenOnForeignDoc(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	billingSvc := mocks.NewMockBillingService(ctrl)
	userRepo := mocks.NewMockUserRepository(ctrl)
	h := NewBillingHandler(billingSvc, userRepo)

	userID := uuid.New()
	clientID := uuid.New()
	doc := &domain.Document{ID: uuid.New(), ClientID: uuid.New()} // other client

	billingSvc.EXPECT().GetDocument(gomock.Any(), doc.ID).Return(doc, nil)
	userRepo.EXPECT().GetByID(gomock.Any(), userID).Return(&domain.User{
		ID:       userID,
		Role:     domain.RoleClient,
		ClientID: &clientID,
	}, nil)

	router := gin.New()
	router.GET("/documents/:id", asPortalUser(userID), h.Get)

	req := httptest.NewRequest(http.MethodGet, "/documents/"+doc.ID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

// --- Webhook handler ---

func TestCreateWebhook_RequiresSecret(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewWebhookHandler(mocks.NewMockWebhookService(ctrl))

	router := gin.New()
	router.POST("/webhooks", asAdmin(uuid.New()), h.Create)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/webhooks", dto.WebhookRequest{
		Name:   "crm-sync",
		URL:    "https://crm.example.com/hooks",
		Events: []string{"invoice.created"},
	}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunRetries(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	webhookSvc := mocks.NewMockWebhookService(ctrl)
	h := NewWebhookHandler(webhookSvc)

	webhookSvc.EXPECT().ProcessRetries(gomock.Any()).Return(3, nil)

	router := gin.New()
	router.POST("/webhooks/retries/run", asAdmin(uuid.New()), h.RunRetries)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webhooks/retries/run", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["attempted"])
}

// --- Article handler ---

func TestGetArticleBySlug_PortalGetsLocalizedView(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	articleSvc := mocks.NewMockArticleService(ctrl)
	h := NewArticleHandler(articleSvc)

	article := &domain.Article{
		ID:        uuid.New(),
		Slug:      "faq",
		TitleAr:   "الأسئلة الشائعة",
		TitleEn:   "FAQ",
		BodyAr:    "نص عربي",
		Published: true,
	}
	articleSvc.EXPECT().GetBySlug(gomock.Any(), "faq").Return(article, nil)

	router := gin.New()
	router.GET("/kb/:slug", asPortalUser(uuid.New()), middleware.Locale(), h.GetBySlug)

	req := httptest.NewRequest(http.MethodGet, "/kb/faq?lang=en", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "FAQ", data["title"])
	// English body missing, Arabic fallback served.
	assert.Equal(t, "نص عربي", data["body"])
}

func TestGetArticleBySlug_UnpublishedHiddenFromPortal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	articleSvc := mocks.NewMockArticleService(ctrl)
	h := NewArticleHandler(articleSvc)

	articleSvc.EXPECT().GetBySlug(gomock.Any(), "draft-post").Return(&domain.Article{
		ID:        uuid.New(),
		Slug:      "draft-post",
		TitleAr:   "مسودة",
		Published: false,
	}, nil)

	router := gin.New()
	router.GET("/kb/:slug", asPortalUser(uuid.New()), middleware.Locale(), h.GetBySlug)

	req := httptest.NewRequest(http.MethodGet, "/kb/draft-post", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- File handler ---

func TestInitiateUpload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fileSvc := mocks.NewMockFileService(ctrl)
	h := NewFileHandler(fileSvc)

	adminID := uuid.New()
	file := &domain.StoredFile{ID: uuid.New(), Name: "brief.pdf", Status: domain.FileStatusUploading}

	fileSvc.EXPECT().
		InitiateUpload(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, req ports.InitiateUploadRequest) (*domain.StoredFile, string, error) {
			assert.Equal(t, adminID, req.UploadedBy)
			assert.Equal(t, "brief.pdf", req.Name)
			return file, "https://s3.example.com/put?sig=abc", nil
		})

	router := gin.New()
	router.POST("/files", asAdmin(adminID), h.InitiateUpload)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/files", dto.InitiateUploadRequest{
		Name: "brief.pdf",
		Size: 2048,
	}))

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "https://s3.example.com/put?sig=abc", data["upload_url"])
}

// --- Health ---

func TestHealthCheck_Degraded(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	healthy := mocks.NewMockHealthChecker(ctrl)
	healthy.EXPECT().Ping(gomock.Any()).Return(nil)
	healthy.EXPECT().Name().Return("postgres").AnyTimes()

	broken := mocks.NewMockHealthChecker(ctrl)
	broken.EXPECT().Ping(gomock.Any()).Return(assert.AnError)
	broken.EXPECT().Name().Return("redis").AnyTimes()

	router := gin.New()
	router.GET("/health", HealthCheck(healthy, broken))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp["status"])
}
