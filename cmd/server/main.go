package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/gooners/backend/internal/auth"
	"github.com/anonto42/gooners/backend/internal/metrics"
	"github.com/anonto42/gooners/backend/internal/middleware"
	"github.com/anonto42/gooners/backend/internal/models"
	"github.com/anonto42/gooners/backend/internal/realtime"
	"github.com/anonto42/gooners/backend/internal/router"
	"github.com/anonto42/gooners/backend/pkg/config"
	"github.com/anonto42/gooners/backend/pkg/firebase"
	"github.com/anonto42/gooners/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

const (
	hubBufferSize        = 64
	rateLimiterIdleAfter = 10 * time.Minute
	shutdownTimeout      = 10 * time.Second
)

func main() {
	// Load configuration
	cfg, dotenv, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}
	logger.Init(logger.Config{Level: cfg.LogLevel, JSONOutput: cfg.LogJSON})
	if dotenv {
		logger.Debug("Loaded .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connection
	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer db.CloseDB()

	if err := models.AutoMigrate(db.Postgres); err != nil {
		logger.Fatal("Failed to auto migrate models", err)
	}
	logger.Info("Database migrations completed")

	deps := router.Dependencies{
		DB:            db.Postgres,
		Sessions:      auth.NewSessionManager(cfg.SessionSecret, cfg.SessionTTL),
		Hub:           realtime.NewHub(hubBufferSize),
		RateLimiter:   middleware.NewRateLimiter(float64(cfg.RateLimitRPS), cfg.RateLimitBurst),
		CORSOrigins:   cfg.CORSOrigins,
		SecureCookies: !cfg.IsDevelopment(),
	}

	if cfg.GoogleClientID != "" {
		deps.Provider = auth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthCallbackURL)
	} else {
		logger.Warn("GOOGLE_CLIENT_ID not set, Google sign-in disabled")
	}

	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			logger.Fatal("Failed to initialize Firebase", err)
		}
		deps.Firebase = firebaseApp.AuthClient
	}

	if cfg.RedisURL != "" {
		relay, err := realtime.NewRedisRelay(ctx, cfg.RedisURL, deps.Hub)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", err)
		}
		defer relay.Close()
		deps.Hub.SetRelay(relay)
		go relay.Run(ctx)
		logger.Info("Realtime events relayed through Redis")
	}

	deps.RateLimiter.StartCleanup(ctx, rateLimiterIdleAfter)

	e := router.New(deps)
	config.SetupMiddleware(e, cfg)

	metricsServer := echo.New()
	metricsServer.HideBanner = true
	metricsServer.HidePort = true
	metricsServer.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	go func() {
		if err := metricsServer.Start(":" + cfg.MetricsPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("Metrics server stopped", err)
		}
	}()
	go func() {
		log := logger.WithComponent("server")
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server stopped", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Metrics server shutdown", err)
	}
}
