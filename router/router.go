package router

import (
	"net/http"

	"bizpilot-api/handler"
	"bizpilot-api/service"
)

func NewRouter(authHandler *handler.AuthHandler, authMiddleware *handler.AuthMiddleware, limiter *service.RateLimiter) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.HealthCheck)

	// Credential endpoints are rate limited per client IP.
	mux.Handle("POST /api/auth/register", handler.RateLimitMiddleware(limiter, handler.ErrorHandlingMiddleware(authHandler.Register)))
	mux.Handle("POST /api/auth/login", handler.RateLimitMiddleware(limiter, handler.ErrorHandlingMiddleware(authHandler.Login)))
	mux.Handle("POST /api/auth/google/token", handler.RateLimitMiddleware(limiter, handler.ErrorHandlingMiddleware(authHandler.GoogleToken)))
	mux.Handle("POST /api/auth/forgot-password", handler.RateLimitMiddleware(limiter, handler.ErrorHandlingMiddleware(authHandler.ForgotPassword)))

	mux.Handle("POST /api/auth/refresh", handler.ErrorHandlingMiddleware(authHandler.Refresh))
	mux.Handle("POST /api/auth/logout", handler.ErrorHandlingMiddleware(authHandler.Logout))

	mux.Handle("POST /api/auth/logout-all", authMiddleware.VerifyAccessToken(handler.ErrorHandlingMiddleware(authHandler.LogoutAll)))
	mux.Handle("GET /api/auth/me", authMiddleware.VerifyAccessToken(handler.ErrorHandlingMiddleware(authHandler.Me)))

	return handler.RequestIDMiddleware(mux)
}
