package middleware

import (
	"fmt"
	"time"

	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/pkg"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// RateLimiter throttles per-client request rates through a Redis counter
// window keyed by client IP.
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	logger *pkg.Logger
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(client *redis.Client, limit int, window time.Duration, logger *pkg.Logger) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
		logger: logger.WithPrefix("ratelimit"),
	}
}

// Limit rejects requests once the caller exhausts its window budget. Redis
// being down fails open: throttling is protection, not a dependency.
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:%s", c.ClientIP())

		count, err := rl.client.Incr(c.Request.Context(), key).Result()
		if err != nil {
			rl.logger.Warn("rate limit check failed", map[string]interface{}{
				"error": err.Error(),
			})
			c.Next()
			return
		}

		if count == 1 {
			rl.client.Expire(c.Request.Context(), key, rl.window)
		}

		if count > int64(rl.limit) {
			pkg.ErrorResponse(c, pkg.ErrRateLimitExceeded)
			c.Abort()
			return
		}

		c.Next()
	}
}
