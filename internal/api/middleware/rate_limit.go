package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"offio/backend/internal/api/handler"
	"offio/backend/pkg/metrics"
	"offio/backend/pkg/response"
)

// Limiter fixed-window counter store (Redis in production)
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, int64, error)
}

// RateLimit caps requests per authenticated user, falling back to the
// client IP before authentication. A nil limiter or a limiter error lets
// the request through.
func RateLimit(limiter Limiter, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limit <= 0 {
			c.Next()
			return
		}

		subject := c.GetString(handler.CtxUserID)
		if subject == "" {
			subject = "ip:" + c.ClientIP()
		}
		key := fmt.Sprintf("%s:%s", subject, c.FullPath())

		allowed, count, err := limiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(limit)-count), 10))

		if !allowed {
			metrics.RateLimited.Inc()
			response.TooManyRequests(c, handler.CodeRateLimited, "too many requests, retry later")
			c.Abort()
			return
		}

		c.Next()
	}
}
