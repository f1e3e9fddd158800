package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/EgehanKilicarslan/library-api/internal/config"
	"github.com/EgehanKilicarslan/library-api/internal/response"
)

// RateLimiter counts requests per client in fixed windows
type RateLimiter interface {
	// Allow records one request for key and reports whether it is within the limit
	Allow(ctx context.Context, key string) (bool, error)
}

type redisRateLimiter struct {
	client redis.UniversalClient
	limit  int64
	window time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewRateLimiter creates a Redis-backed fixed-window limiter
func NewRateLimiter(client redis.UniversalClient, cfg *config.Config, logger *slog.Logger) RateLimiter {
	logger.Info("✅ [RateLimiter] Using Redis rate limiter",
		"requests", cfg.RateLimitRequests,
		"window_seconds", cfg.RateLimitWindow,
	)

	return &redisRateLimiter{
		client: client,
		limit:  cfg.RateLimitRequests,
		window: time.Duration(cfg.RateLimitWindow) * time.Second,
		now:    time.Now,
		logger: logger,
	}
}

// windowKey format: rate:{key}:{window index}
func (r *redisRateLimiter) windowKey(key string) string {
	index := r.now().Unix() / int64(r.window/time.Second)
	return fmt.Sprintf("rate:%s:%d", key, index)
}

func (r *redisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	// A non-positive limit or window disables limiting
	if r.limit <= 0 || r.window < time.Second {
		return true, nil
	}

	windowKey := r.windowKey(key)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, r.window)

	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("❌ [RateLimiter] Failed to increment counter", "error", err, "key", key)
		return true, err
	}

	return incr.Val() <= r.limit, nil
}

// NoOpRateLimiter is a rate limiter that always allows requests
// Used when Redis is not available
type NoOpRateLimiter struct{}

// NewNoOpRateLimiter creates a no-op rate limiter
func NewNoOpRateLimiter(logger *slog.Logger) RateLimiter {
	logger.Warn("⚠️ [RateLimiter] Using no-op rate limiter - rate limiting is disabled")
	return &NoOpRateLimiter{}
}

func (r *NoOpRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return true, nil
}

// RateLimit throttles by client IP. Limiter errors let the request through.
func RateLimit(limiter RateLimiter, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.Warn("⚠️ [RateLimiter] Limiter unavailable, allowing request", "error", err)
		}
		if !allowed {
			logger.Warn("⚠️ [RateLimiter] Rate limit exceeded", "client_ip", c.ClientIP())
			response.Error(c, http.StatusRequestTimeout, nil,
				response.ErrorMessage("Rate limit exceeded, please try again later some time."))
			return
		}
		c.Next()
	}
}
