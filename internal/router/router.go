package router

import (
	"github.com/anonto42/gooners/backend/internal/auth"
	"github.com/anonto42/gooners/backend/internal/handlers"
	"github.com/anonto42/gooners/backend/internal/middleware"
	"github.com/anonto42/gooners/backend/internal/realtime"
	"github.com/anonto42/gooners/backend/internal/repositories"
	"github.com/anonto42/gooners/backend/pkg/logger"
	"github.com/anonto42/gooners/backend/validators"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Dependencies are the long-lived services the routes are built from.
// Provider and Firebase are optional.
type Dependencies struct {
	DB            *gorm.DB
	Sessions      *auth.SessionManager
	Provider      auth.IdentityProvider
	Firebase      auth.TokenVerifier
	Hub           *realtime.Hub
	RateLimiter   *middleware.RateLimiter
	CORSOrigins   []string
	SecureCookies bool
}

// New returns an Echo instance with the validator, error handler and every route installed.
func New(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.HTTPErrorHandler
	SetupRoutes(e, deps)
	return e
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	log := logger.WithComponent("router")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(deps.DB)
	postRepo := repositories.NewPostgresPostRepository(deps.DB)
	likeRepo := repositories.NewPostgresLikeRepository(deps.DB)
	commentRepo := repositories.NewPostgresCommentRepository(deps.DB)
	storyRepo := repositories.NewPostgresStoryRepository(deps.DB)
	partnerRepo := repositories.NewPostgresPartnerRepository(deps.DB)
	chatRepo := repositories.NewPostgresChatRepository(deps.DB)
	globalRepo := repositories.NewPostgresGlobalMessageRepository(deps.DB)
	notificationRepo := repositories.NewPostgresNotificationRepository(deps.DB)

	// --- Unprotected routes for authentication ---
	public := e.Group("/api")
	authHandler := handlers.NewAuthHandler(userRepo, deps.Sessions, deps.Provider, deps.Firebase, deps.SecureCookies)
	authHandler.RegisterAuthRoutes(public)
	log.Debug().Bool("google", deps.Provider != nil).Bool("firebase", deps.Firebase != nil).Msg("auth routes configured")

	// --- Protected routes (require a session) ---
	api := e.Group("/api", middleware.SessionAuth(deps.Sessions))
	if deps.RateLimiter != nil {
		api.Use(deps.RateLimiter.Middleware())
	}

	handlers.NewUserHandler(userRepo).RegisterProfileRoutes(api)
	handlers.NewPostHandler(postRepo, likeRepo).RegisterPostRoutes(api)
	handlers.NewLikeHandler(likeRepo, deps.Hub).RegisterLikeRoutes(api)
	handlers.NewCommentHandler(commentRepo, deps.Hub).RegisterCommentRoutes(api)
	handlers.NewStoryHandler(storyRepo).RegisterStoryRoutes(api)
	handlers.NewPartnerHandler(partnerRepo, deps.Hub).RegisterPartnerRoutes(api)
	handlers.NewChatHandler(chatRepo, deps.Hub).RegisterChatRoutes(api)
	handlers.NewGlobalChatHandler(globalRepo, deps.Hub).RegisterGlobalChatRoutes(api)
	handlers.NewNotificationHandler(notificationRepo).RegisterNotificationRoutes(api)
	if deps.Hub != nil {
		handlers.NewRealtimeHandler(deps.Hub, deps.CORSOrigins).RegisterRealtimeRoutes(api)
	}

	log.Info().Int("routes", len(e.Routes())).Msg("all routes configured")
}
