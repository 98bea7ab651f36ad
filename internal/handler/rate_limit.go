package handler

import (
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prperemyshlev/wms-server/internal/service"
)

// RateLimitMiddleware creates a rate limiting middleware
func RateLimitMiddleware(rateLimiter *service.RateLimiter, limit int, window time.Duration, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))

		err := rateLimiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			var limited *service.RateLimitError
			if errors.As(err, &limited) {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(limited.RetryAfter.Seconds()))))
				c.Header("X-RateLimit-Remaining", "0")
				respondError(c, err)
				return
			}

			// fail open while Redis is unavailable
			zap.L().Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		if remaining, err := rateLimiter.Remaining(c.Request.Context(), key, limit, window); err == nil {
			c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		}

		c.Next()
	}
}

// IPBasedKey extracts rate limit key from client IP and route
func IPBasedKey(c *gin.Context) string {
	return c.FullPath() + ":" + c.ClientIP()
}
