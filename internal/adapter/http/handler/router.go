package handler

import (
	"pyra-workspace/internal/adapter/http/middleware"
	"pyra-workspace/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc         ports.AuthService
	ClientSvc       ports.ClientService
	ProjectSvc      ports.ProjectService
	BillingSvc      ports.BillingService
	FileSvc         ports.FileService
	ArticleSvc      ports.ArticleService
	NotificationSvc ports.NotificationService
	ActivitySvc     ports.ActivityService
	SettingsSvc     ports.SettingsService
	WebhookSvc      ports.WebhookService
	TokenSvc        ports.TokenService
	Sessions        ports.SessionStore
	UserRepo        ports.UserRepository
	RateLimiter     ports.RateLimiter // nil = rate limiting disabled
	HealthCheckers  []ports.HealthChecker
	Logger          zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit
	r.Use(middleware.Locale())

	// Health check (deep, verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if a limiter is available,
	// else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimiter == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimiter, group, rule, deps.Logger)
	}

	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	// --- Authenticated routes (dashboard + portal) ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Sessions, deps.Logger)

	projectHandler := NewProjectHandler(deps.ProjectSvc, deps.UserRepo)
	billingHandler := NewBillingHandler(deps.BillingSvc, deps.UserRepo)
	fileHandler := NewFileHandler(deps.FileSvc)
	articleHandler := NewArticleHandler(deps.ArticleSvc)
	notificationHandler := NewNotificationHandler(deps.NotificationSvc)

	authed := v1.Group("", jwtAuth, rl("api"))
	{
		authed.POST("/auth/logout", authHandler.Logout)

		authed.GET("/projects", projectHandler.List)
		authed.GET("/projects/:id", projectHandler.Get)
		authed.GET("/projects/:id/files", fileHandler.ListByProject)

		authed.GET("/documents", billingHandler.List)
		authed.GET("/documents/:id", billingHandler.Get)

		authed.GET("/files/:id/download", fileHandler.DownloadURL)

		authed.GET("/kb", articleHandler.List)
		authed.GET("/kb/:slug", articleHandler.GetBySlug)

		authed.GET("/notifications", notificationHandler.List)
		authed.GET("/notifications/unread", notificationHandler.UnreadCount)
		authed.POST("/notifications/:id/read", notificationHandler.MarkRead)
		authed.POST("/notifications/read-all", notificationHandler.MarkAllRead)
	}

	// --- Admin routes ---
	clientHandler := NewClientHandler(deps.ClientSvc)
	webhookHandler := NewWebhookHandler(deps.WebhookSvc)
	workspaceHandler := NewWorkspaceHandler(deps.ActivitySvc, deps.SettingsSvc)

	admin := v1.Group("/admin", jwtAuth, middleware.AdminOnly(), rl("api"))
	{
		admin.POST("/clients", clientHandler.Create)
		admin.GET("/clients", clientHandler.List)
		admin.GET("/clients/:id", clientHandler.Get)
		admin.PUT("/clients/:id", clientHandler.Update)
		admin.DELETE("/clients/:id", clientHandler.Delete)

		admin.POST("/projects", projectHandler.Create)
		admin.PUT("/projects/:id", projectHandler.Update)
		admin.PATCH("/projects/:id/status", projectHandler.ChangeStatus)

		admin.POST("/quotes", billingHandler.CreateQuote)
		admin.POST("/quotes/:id/convert", billingHandler.ConvertQuote)
		admin.POST("/invoices", billingHandler.CreateInvoice)
		admin.PATCH("/documents/:id/status", billingHandler.ChangeStatus)

		admin.POST("/files", rl("uploads"), fileHandler.InitiateUpload)
		admin.POST("/files/:id/complete", fileHandler.CompleteUpload)
		admin.DELETE("/files/:id", fileHandler.Delete)

		admin.POST("/kb", articleHandler.Create)
		admin.PUT("/kb/:id", articleHandler.Update)
		admin.POST("/kb/:id/publish", articleHandler.Publish)
		admin.DELETE("/kb/:id", articleHandler.Delete)

		admin.POST("/webhooks", webhookHandler.Create)
		admin.GET("/webhooks", webhookHandler.List)
		admin.POST("/webhooks/retries/run", webhookHandler.RunRetries)
		admin.GET("/webhooks/:id", webhookHandler.Get)
		admin.PUT("/webhooks/:id", webhookHandler.Update)
		admin.PATCH("/webhooks/:id/enabled", webhookHandler.SetEnabled)
		admin.DELETE("/webhooks/:id", webhookHandler.Delete)
		admin.GET("/webhooks/:id/deliveries", webhookHandler.ListDeliveries)

		admin.POST("/notifications", notificationHandler.Send)

		admin.GET("/activity", workspaceHandler.ListActivity)

		admin.GET("/settings", workspaceHandler.ListSettings)
		admin.GET("/settings/:key", workspaceHandler.GetSetting)
		admin.PUT("/settings/:key", workspaceHandler.PutSetting)
	}

	return r
}
