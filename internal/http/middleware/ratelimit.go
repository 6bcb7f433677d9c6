package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/notebook-buddy/backend/internal/clients/redis"
	"github.com/notebook-buddy/backend/internal/platform/logger"
)

// RateLimit guards an endpoint with the Redis fixed-window limiter, keyed
// by client IP. A nil limiter disables limiting entirely.
func RateLimit(log *logger.Logger, limiter redis.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			if log != nil {
				log.Warn("Rate limit check failed", "error", err)
			}
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"status": "error", "message": "too many requests",
			})
			return
		}
		c.Next()
	}
}
