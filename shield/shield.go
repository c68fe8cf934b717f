// Package shield provides reusable HTTP security middleware for the gitpal
// service. It consolidates security headers, CORS, rate limiting, body limits,
// and request tracing into a single importable package.
//
// Usage:
//
//	r := chi.NewRouter()
//	r.Use(shield.TraceID)
//	r.Use(shield.SecurityHeaders(shield.DefaultHeaders()))
//	r.Use(shield.CORS(shield.OpenCORS()))
//	r.Use(shield.MaxJSONBody(1 << 20))
//	r.Use(shield.NewRateLimiter(db).Middleware)
//
// Or apply the default stack in one call:
//
//	rl := shield.DefaultStack(r, db)
//	rl.StartReloader(done)
package shield

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/go-chi/chi/v5"
)

type contextKey string

// LoggerKey is the context key for the per-request structured logger.
const LoggerKey contextKey = "shield_logger"

// GetLogger retrieves the per-request logger from the context.
// Returns slog.Default() if no logger was set.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(LoggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// DefaultStack applies the standard middleware stack for the gitpal API.
// Ordered: TraceID → SecurityHeaders → CORS → MaxJSONBody → RateLimiter.
// The returned RateLimiter handle allows callers to StartReloader.
// Health checks (/health) bypass rate limiting.
func DefaultStack(r chi.Router, db *sql.DB) *RateLimiter {
	rl := NewRateLimiter(db, "/health")
	r.Use(TraceID)
	r.Use(SecurityHeaders(DefaultHeaders()))
	r.Use(CORS(OpenCORS()))
	r.Use(MaxJSONBody(1 << 20))
	r.Use(rl.Middleware)
	return rl
}
