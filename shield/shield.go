// Package shield provides reusable HTTP security middleware for HOROS services.
// It consolidates security headers, rate limiting, body limits, request IDs,
// and HEAD method handling into a single importable package.
//
// Usage:
//
//	r := chi.NewRouter()
//	r.Use(shield.SecurityHeaders(shield.DefaultHeaders()))
//	r.Use(shield.RequestID)
//	r.Use(shield.MaxBody(1 << 20))
//	r.Use(shield.NewRateLimiter(shield.DefaultRateRules()).Middleware)
//	r.Use(shield.HeadToGet)
//
// Or apply the default stack in one call:
//
//	for _, mw := range shield.DefaultStack(ctx) {
//	    r.Use(mw)
//	}
package shield

import (
	"context"
	"net/http"
)

type contextKey string

// LoggerKey is the context key for the per-request structured logger.
const LoggerKey contextKey = "shield_logger"

// DefaultRateRules limits the endpoints that trigger model calls or
// outbound requests. Reads and the SPA itself stay unlimited.
func DefaultRateRules() map[string]RateLimitConfig {
	return map[string]RateLimitConfig{
		// One rule covers analyze/draft/submit/reset under any session.
		"POST /api/session": {MaxRequests: 30, WindowSeconds: 60, Enabled: true},
		"PUT /api/session":  {MaxRequests: 120, WindowSeconds: 60, Enabled: true},
	}
}

// DefaultStack returns the standard middleware stack for a single-user
// tool exposed on localhost or behind Basic Auth. Middleware is ordered:
// HeadToGet → SecurityHeaders → RequestID → MaxBody → RateLimiter. The
// rate limiter's bucket GC runs until ctx is done.
func DefaultStack(ctx context.Context) []func(http.Handler) http.Handler {
	rl := NewRateLimiter(DefaultRateRules(), "/health")
	rl.StartGC(ctx.Done())
	return []func(http.Handler) http.Handler{
		HeadToGet,
		SecurityHeaders(DefaultHeaders()),
		RequestID,
		MaxBody(1 << 20),
		rl.Middleware,
	}
}
