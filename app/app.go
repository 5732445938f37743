// File: app/app.go
package app

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bizpilot-api/config"
	"bizpilot-api/db"
	"bizpilot-api/handler"
	"bizpilot-api/logger"
	"bizpilot-api/repository"
	"bizpilot-api/router"
	"bizpilot-api/service"

	"github.com/redis/go-redis/v9"
)

// Auth rate limit: requests per window per client IP on the credential
// endpoints.
const (
	authRateLimit  = 20
	authRateWindow = 15 * time.Minute
)

func Run() {
	config.LoadConfig(".")
	logger.Init()
	logger.Log.Info("Logger initialized")
	logger.Log.Info("Configuration loaded successfully")

	database, err := db.Connect()
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	// Redis only backs the rate limiter, which fails open; a missing Redis
	// degrades to unthrottled auth rather than a dead process.
	var limiter *service.RateLimiter
	redisClient, err := db.ConnectRedis()
	if err != nil {
		logger.Log.WithError(err).Warn("Redis unavailable; auth rate limiting disabled")
	} else {
		defer redisClient.Close()
		limiter = service.NewRateLimiter(redisClient, authRateLimit, authRateWindow)
	}

	r := buildRouter(database, limiter)

	port := config.AppConfig.Server.Port
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}

// buildRouter wires repositories, services and handlers off one injected
// database handle. The configuration is read once here and passed into
// constructors; no component reads ambient config at request time.
func buildRouter(database *sql.DB, limiter *service.RateLimiter) http.Handler {
	cfg := config.AppConfig

	userRepo := repository.NewUserRepository(database)
	tokenRepo := repository.NewTokenRepository(database)

	codec := service.NewTokenCodec(
		cfg.JWT.AccessSecret,
		time.Duration(cfg.JWT.AccessTTLMinutes)*time.Minute,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
	)
	refreshTokens := service.NewRefreshTokenService(tokenRepo, time.Duration(cfg.JWT.RefreshTTLDays)*24*time.Hour)
	authService := service.NewAuthService(userRepo, refreshTokens, codec)
	googleAuth := service.NewGoogleAuthService(cfg.Google.ClientID, cfg.Google.ClientSecret)
	cookies := service.NewCookieBuilder(cfg.Cookie.Name, cfg.Cookie.Secure, cfg.Cookie.SameSite, cfg.Cookie.Domain, cfg.Cookie.Path)

	authHandler := handler.NewAuthHandler(authService, googleAuth, cookies)
	authMiddleware := handler.NewAuthMiddleware(codec, userRepo)

	return router.NewRouter(authHandler, authMiddleware, limiter)
}

// TestApp exposes the wired router plus the raw handles integration tests
// need for seeding and cleanup.
type TestApp struct {
	DB     *sql.DB
	Router http.Handler
}

func NewTestApp(database *sql.DB, redisClient *redis.Client) *TestApp {
	var limiter *service.RateLimiter
	if redisClient != nil {
		limiter = service.NewRateLimiter(redisClient, authRateLimit, authRateWindow)
	}
	return &TestApp{
		DB:     database,
		Router: buildRouter(database, limiter),
	}
}
