package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wizmedik/booking-api/internal/httperr"
	"github.com/wizmedik/booking-api/internal/kvstore"
)

// RateLimit allows limit requests per client IP and window. When the counter
// store fails the request is let through.
func RateLimit(counter kvstore.Counter, limit int, window time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s", c.ClientIP())
		n, err := counter.Incr(c.Request.Context(), key, window)
		if err != nil {
			log.Warn("rate limit counter unavailable", zap.Error(err))
			c.Next()
			return
		}

		remaining := int64(limit) - n
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if n > int64(limit) {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			httperr.TooManyRequests(c, "rate_limited", "too many requests, try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
