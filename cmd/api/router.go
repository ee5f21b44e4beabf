package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"novelhub-backend/internal/shared/middleware"
	"novelhub-backend/pkg/container"
)

// rateLimiters giữ các limiter đã tạo để dừng janitor khi shutdown
type rateLimiters []*middleware.IPRateLimiter

func (r rateLimiters) Stop() {
	for _, l := range r {
		l.Stop()
	}
}

func SetupRouter(c *container.Container) (*gin.Engine, rateLimiters) {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(c.Config.App.FrontendURL),
		middleware.ClientIPMiddleware(),
	)

	// Auth, webhook và vote mỗi nhóm một bucket riêng
	rl := c.Config.RateLimit
	authLimiter := middleware.NewIPRateLimiter(rl.RequestsPerSecond, rl.Burst, 10*time.Minute)
	webhookLimiter := middleware.NewIPRateLimiter(rl.RequestsPerSecond*2, rl.Burst*2, 10*time.Minute)
	voteLimiter := middleware.NewIPRateLimiter(rl.RequestsPerSecond, rl.Burst, 10*time.Minute)

	api := router.Group("/api")
	{
		api.GET("/health", healthCheckHandler(c))

		setupAuthRoutes(api, c, authLimiter)
		setupUserRoutes(api, c)
		setupNovelRoutes(api, c)
		setupChapterRoutes(api, c)
		setupCoinRoutes(api, c)
		setupSubscriptionRoutes(api, c)
		setupPaymentRoutes(api, c)
		setupWebhookRoutes(api, c, webhookLimiter)
		setupForumRoutes(api, c, voteLimiter)
		setupBookmarkRoutes(api, c)
		setupCommentRoutes(api, c)
		setupNotificationRoutes(api, c)
		setupDriveRoutes(api, c)
		setupAnalyticsRoutes(api, c)
		setupAdminRoutes(api, c)
	}

	return router, rateLimiters{authLimiter, webhookLimiter, voteLimiter}
}

// ========================================
// AUTH ROUTES
// ========================================
func setupAuthRoutes(api *gin.RouterGroup, c *container.Container, limiter *middleware.IPRateLimiter) {
	auth := api.Group("/auth")
	auth.Use(limiter.Middleware())
	{
		auth.POST("/register", c.UserHandler.Register)
		auth.POST("/login", c.UserHandler.Login)
		auth.POST("/refresh", c.UserHandler.Refresh)
	}
}

// ========================================
// USER ROUTES
// ========================================
func setupUserRoutes(api *gin.RouterGroup, c *container.Container) {
	users := api.Group("/users")
	{
		users.GET("/:username", c.UserHandler.GetPublicProfile)
	}

	me := api.Group("/users/me")
	me.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		me.GET("", c.UserHandler.GetMe)
		me.PUT("", c.UserHandler.UpdateMe)
		me.POST("/become-author", c.UserHandler.BecomeAuthor)
	}
}

// ========================================
// NOVEL ROUTES
// ========================================
func setupNovelRoutes(api *gin.RouterGroup, c *container.Container) {
	optional := middleware.OptionalAuthMiddleware(c.JWTManager)

	api.GET("/tags", c.NovelHandler.ListTags)
	api.GET("/authors/:id/novels", optional, c.NovelHandler.ListByAuthor)
	api.GET("/authors/:id/tier", c.SubscriptionHandler.GetTier)

	novels := api.Group("/novels")
	{
		novels.GET("", optional, c.NovelHandler.ListNovels)
		novels.GET("/:slug", optional, c.NovelHandler.GetNovel)
		novels.GET("/id/:id", optional, c.NovelHandler.GetNovelByID)
	}

	authoring := api.Group("/novels")
	authoring.Use(middleware.AuthMiddleware(c.JWTManager), middleware.RequireRole("author", "admin"))
	{
		authoring.POST("", c.NovelHandler.CreateNovel)
		authoring.PUT("/id/:id", c.NovelHandler.UpdateNovel)
		authoring.DELETE("/id/:id", c.NovelHandler.DeleteNovel)
		authoring.POST("/:slug/cover", c.NovelHandler.UploadCover)
	}
}

// ========================================
// CHAPTER ROUTES
// ========================================
func setupChapterRoutes(api *gin.RouterGroup, c *container.Container) {
	optional := middleware.OptionalAuthMiddleware(c.JWTManager)

	api.GET("/novels/:slug/chapters", optional, c.ChapterHandler.ListChapters)
	api.GET("/novels/:slug/chapters/:number", optional, c.ChapterHandler.ReadChapter)

	authoring := api.Group("")
	authoring.Use(middleware.AuthMiddleware(c.JWTManager), middleware.RequireRole("author", "admin"))
	{
		authoring.POST("/novels/:slug/chapters", c.ChapterHandler.CreateChapter)
		authoring.GET("/chapters/:id", c.ChapterHandler.GetChapter)
		authoring.PUT("/chapters/:id", c.ChapterHandler.UpdateChapter)
		authoring.DELETE("/chapters/:id", c.ChapterHandler.DeleteChapter)
	}
}

// ========================================
// COIN ROUTES
// ========================================
func setupCoinRoutes(api *gin.RouterGroup, c *container.Container) {
	api.GET("/coins/packages", c.CoinHandler.ListPackages)

	coins := api.Group("/coins")
	coins.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		coins.GET("/balance", c.CoinHandler.GetBalance)
		coins.GET("/transactions", c.CoinHandler.ListTransactions)
		coins.POST("/unlock/:chapter_id", c.CoinHandler.UnlockChapter)
		coins.POST("/donate", c.CoinHandler.Donate)
		coins.POST("/add", middleware.AdminMiddleware(), c.CoinHandler.AddCoins)
	}
}

// ========================================
// SUBSCRIPTION ROUTES
// ========================================
func setupSubscriptionRoutes(api *gin.RouterGroup, c *container.Container) {
	subs := api.Group("/subscriptions")
	subs.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		subs.GET("", c.SubscriptionHandler.ListMine)
		subs.POST("/:author_id", c.SubscriptionHandler.Subscribe)
		subs.DELETE("/:author_id", c.SubscriptionHandler.Cancel)

		author := subs.Group("")
		author.Use(middleware.RequireRole("author", "admin"))
		author.GET("/subscribers", c.SubscriptionHandler.ListSubscribers)
		author.PUT("/tier", c.SubscriptionHandler.SetTier)
	}
}

// ========================================
// PAYMENT ROUTES
// ========================================
func setupPaymentRoutes(api *gin.RouterGroup, c *container.Container) {
	payments := api.Group("/payments")
	payments.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		payments.POST("/create-order", c.PaymentHandler.CreateOrder)
		payments.POST("/capture-order", c.PaymentHandler.CaptureOrder)
		payments.POST("/cancel-order", c.PaymentHandler.CancelOrder)
		payments.GET("/orders", c.PaymentHandler.ListOrders)
	}
}

// ========================================
// WEBHOOK ROUTES (no auth, token trong payload)
// ========================================
func setupWebhookRoutes(api *gin.RouterGroup, c *container.Container, limiter *middleware.IPRateLimiter) {
	webhooks := api.Group("/webhooks")
	webhooks.Use(limiter.Middleware())
	{
		webhooks.POST("/kofi", c.PaymentHandler.KofiWebhook)
	}
}

// ========================================
// FORUM ROUTES
// ========================================
func setupForumRoutes(api *gin.RouterGroup, c *container.Container, voteLimiter *middleware.IPRateLimiter) {
	optional := middleware.OptionalAuthMiddleware(c.JWTManager)
	auth := middleware.AuthMiddleware(c.JWTManager)

	forum := api.Group("/forum")
	{
		forum.GET("/categories", c.ForumHandler.ListCategories)
		forum.GET("/threads", optional, c.ForumHandler.ListThreads)
		forum.GET("/threads/:slug", optional, c.ForumHandler.GetThread)
		forum.GET("/threads/:slug/messages", optional, c.ForumHandler.ListMessages)

		forum.POST("/threads", auth, c.ForumHandler.CreateThread)
		forum.PUT("/threads/:slug", auth, c.ForumHandler.UpdateThread)
		forum.DELETE("/threads/:slug", auth, c.ForumHandler.DeleteThread)
		forum.POST("/threads/:slug/messages", auth, c.ForumHandler.CreateMessage)
		forum.PUT("/messages/:id", auth, c.ForumHandler.UpdateMessage)
		forum.DELETE("/messages/:id", auth, c.ForumHandler.DeleteMessage)
		forum.POST("/vote", voteLimiter.Middleware(), auth, c.ForumHandler.Vote)
		forum.POST("/attachments", auth, c.ForumHandler.UploadAttachment)
	}
}

// ========================================
// BOOKMARK ROUTES
// ========================================
func setupBookmarkRoutes(api *gin.RouterGroup, c *container.Container) {
	bookmarks := api.Group("/bookmarks")
	bookmarks.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		bookmarks.GET("", c.BookmarkHandler.ListBookmarks)
		bookmarks.GET("/:novel_id", c.BookmarkHandler.GetStatus)
		bookmarks.POST("/:novel_id", c.BookmarkHandler.AddBookmark)
		bookmarks.DELETE("/:novel_id", c.BookmarkHandler.RemoveBookmark)
	}
}

// ========================================
// COMMENT ROUTES
// ========================================
func setupCommentRoutes(api *gin.RouterGroup, c *container.Container) {
	auth := middleware.AuthMiddleware(c.JWTManager)

	api.GET("/chapters/:id/comments", c.CommentHandler.ListComments)
	api.GET("/chapters/:id/comments/counts", c.CommentHandler.ParagraphCounts)
	api.POST("/chapters/:id/comments", auth, c.CommentHandler.CreateComment)
	api.PUT("/comments/:id", auth, c.CommentHandler.UpdateComment)
	api.DELETE("/comments/:id", auth, c.CommentHandler.DeleteComment)
}

// ========================================
// NOTIFICATION ROUTES
// ========================================
func setupNotificationRoutes(api *gin.RouterGroup, c *container.Container) {
	notifications := api.Group("/notifications")
	notifications.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		notifications.GET("", c.NotificationHandler.ListNotifications)
		notifications.GET("/unread-count", c.NotificationHandler.GetUnreadCount)
		notifications.POST("/read", c.NotificationHandler.MarkRead)
		notifications.POST("/read-all", c.NotificationHandler.MarkAllRead)
		notifications.DELETE("/:id", c.NotificationHandler.DeleteNotification)
	}
}

// ========================================
// GOOGLE DRIVE ROUTES
// ========================================
func setupDriveRoutes(api *gin.RouterGroup, c *container.Container) {
	// Google redirect về callback không kèm bearer token
	api.GET("/gdrive/callback", c.DriveHandler.Callback)

	drive := api.Group("/gdrive")
	drive.Use(middleware.AuthMiddleware(c.JWTManager), middleware.RequireRole("author", "admin"))
	{
		drive.GET("/auth-url", c.DriveHandler.AuthURL)
		drive.GET("/status", c.DriveHandler.Status)
		drive.DELETE("/connection", c.DriveHandler.Disconnect)
		drive.GET("/files", c.DriveHandler.ListFiles)
		drive.POST("/import", c.DriveHandler.StartImport)
		drive.GET("/jobs", c.DriveHandler.ListJobs)
		drive.GET("/jobs/:id", c.DriveHandler.GetJob)
	}
}

// ========================================
// ANALYTICS ROUTES
// ========================================
func setupAnalyticsRoutes(api *gin.RouterGroup, c *container.Container) {
	analytics := api.Group("/analytics")
	analytics.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		analytics.POST("/reading-time", c.AnalyticsHandler.Heartbeat)
		analytics.GET("/reading-time", c.AnalyticsHandler.GetReadingTime)

		author := analytics.Group("/author")
		author.Use(middleware.RequireRole("author", "admin"))
		author.GET("", c.AnalyticsHandler.AuthorDashboard)
		author.GET("/earnings.xlsx", c.AnalyticsHandler.ExportEarnings)
	}
}

// ========================================
// ADMIN ROUTES
// ========================================
func setupAdminRoutes(api *gin.RouterGroup, c *container.Container) {
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(c.JWTManager), middleware.AdminMiddleware())
	{
		admin.GET("/users", c.UserHandler.ListUsers)
		admin.PATCH("/users/:id/role", c.UserHandler.UpdateRole)
		admin.PATCH("/users/:id/status", c.UserHandler.UpdateStatus)

		admin.PATCH("/novels/:id/feature", c.NovelHandler.SetFeatured)

		admin.POST("/forum/categories", c.ForumHandler.CreateCategory)
		admin.PATCH("/forum/threads/:slug", c.ForumHandler.ModerateThread)

		admin.GET("/payments/unmatched", c.PaymentHandler.ListUnmatched)
		admin.POST("/payments/:id/claim", c.PaymentHandler.ClaimKofiOrder)

		admin.GET("/analytics", c.AnalyticsHandler.AdminDashboard)
	}
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
		}

		// Check database
		dbStatus := "ok"
		if appCtx.DB == nil || appCtx.DB.Pool == nil {
			dbStatus = "disconnected"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.DB.HealthCheck(ctx); err != nil {
				dbStatus = fmt.Sprintf("error: %v", err)
			}
		}

		// Check redis
		redisStatus := "ok"
		if appCtx.Cache == nil {
			redisStatus = "disconnected"
		} else if err := appCtx.Cache.HealthCheck(c.Request.Context()); err != nil {
			redisStatus = fmt.Sprintf("error: %v", err)
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			health["status"] = "degraded"
			statusCode = http.StatusServiceUnavailable
		} else if redisStatus != "ok" {
			health["status"] = "degraded"
		}

		c.JSON(statusCode, health)
	}
}
