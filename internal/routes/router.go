package routes

import (
	"context"
	"net/http"

	"storefront-identity/internal/config"
	"storefront-identity/internal/delivery/http/handler"
	"storefront-identity/internal/logger"
	"storefront-identity/internal/middleware"
	"storefront-identity/internal/usecase/account"
	"storefront-identity/internal/usecase/message"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// HealthChecker pings the account store.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type Dependencies struct {
	Config         *config.Config
	Store          HealthChecker
	AccountService *account.Service
	MessageService *message.Service
	Sessions       middleware.SessionVerifier
	// Outbox is set only when reset emails are captured in memory.
	Outbox handler.MailOutbox
}

// SetupRoutes builds the HTTP engine. ctx bounds the background work of the
// rate limiters.
func SetupRoutes(ctx context.Context, deps Dependencies) *gin.Engine {
	cfg := deps.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Unknown body fields are rejected.
	binding.EnableDecoderDisallowUnknownFields = true

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(middleware.DefaultMaxRequestSize))
	router.Use(middleware.RateLimitMiddleware(
		middleware.NewRateLimiter(ctx, cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst),
	))

	router.GET("/health", func(c *gin.Context) {
		if err := deps.Store.Health(c.Request.Context()); err != nil {
			logger.Warn("Health check failed", logger.Event("health_check_failed"))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	})

	authRequired := middleware.AuthMiddleware(deps.Sessions)
	credentialLimit := middleware.RateLimitMiddleware(
		middleware.NewRateLimiter(ctx, cfg.RateLimit.AuthRPS, cfg.RateLimit.AuthBurst),
	)

	accountHandler := handler.NewAccountHandler(deps.AccountService, deps.Outbox)
	messageHandler := handler.NewMessageHandler(deps.MessageService)

	api := router.Group("/api")
	{
		users := api.Group("/users")
		{
			public := users.Group("")
			public.Use(credentialLimit)
			accountHandler.RegisterRoutes(public)

			admin := users.Group("")
			admin.Use(authRequired, middleware.AdminOnly())
			accountHandler.RegisterAdminRoutes(admin)

			owned := users.Group("")
			owned.Use(authRequired, middleware.OwnerOrAdmin("id"))
			accountHandler.RegisterAccountRoutes(owned)
		}

		messages := api.Group("/message")
		{
			messageHandler.RegisterRoutes(messages)

			admin := messages.Group("")
			admin.Use(authRequired, middleware.AdminOnly())
			messageHandler.RegisterAdminRoutes(admin)
		}
	}

	logger.Info("All routes initialized")
	return router
}
