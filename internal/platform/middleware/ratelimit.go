package middleware

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/ARUNMOHANRAJ471/opp-miner/internal/platform/auth"
	"github.com/ARUNMOHANRAJ471/opp-miner/internal/platform/task"
)

// RateLimitConfig sizes the per-caller limiter. MaxCallers bounds how many
// callers are tracked at once; the least recently seen is forgotten first.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	MaxCallers        int
}

// DefaultRateLimitConfig returns default rate limiting settings.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 20,
		BurstSize:         40,
	}
}

// callerKey buckets authenticated callers by user and anonymous ones by IP.
func callerKey(c echo.Context) string {
	if uid := auth.UserIDFromContext(c.Request().Context()); uid != "" {
		return "user:" + uid
	}
	return "ip:" + c.RealIP()
}

// retryAfter is the whole number of seconds until lim holds a token again.
func retryAfter(lim *rate.Limiter) int {
	if lim.Limit() <= 0 {
		return 1
	}
	return int((1-lim.Tokens())/float64(lim.Limit())) + 1
}

// RateLimit rejects callers that exceed their token bucket with 429 and a
// Retry-After hint.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	callers := task.NewSessions(cfg.MaxCallers, func() *rate.Limiter {
		return rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize)
	})
	limit := strconv.FormatFloat(cfg.RequestsPerSecond, 'f', 0, 64)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			lim := callers.Obtain(callerKey(c))
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)
			if !lim.Allow() {
				h.Set("Retry-After", strconv.Itoa(retryAfter(lim)))
				h.Set("X-RateLimit-Remaining", "0")
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			h.Set("X-RateLimit-Remaining", strconv.Itoa(int(lim.Tokens())))
			return next(c)
		}
	}
}
