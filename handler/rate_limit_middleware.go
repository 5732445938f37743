package handler

import (
	"net"
	"net/http"

	"bizpilot-api/common"
	"bizpilot-api/service"
)

// RateLimitMiddleware throttles the credential endpoints per client IP.
// A nil limiter disables throttling, which keeps tests and local runs free
// of a Redis dependency.
func RateLimitMiddleware(limiter *service.RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	if limiter == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if !limiter.Allow(r.Context(), host+":"+r.URL.Path) {
			common.NewAppError(http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests, please try again later", nil).Send(w)
			return
		}
		next(w, r)
	}
}
