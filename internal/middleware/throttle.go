package middleware

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"task-tracker-api/internal/apperr"
	"task-tracker-api/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

// Throttle applies the quota of scope. Authenticated callers are keyed by
// user id, anonymous ones by client IP. Limiter failures let the request
// through.
func Throttle(limiter ratelimit.Limiter, scope string, logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if actor, ok := ActorFrom(c); ok {
			key = "user:" + actor.ID
		}

		d, err := limiter.Allow(c.Request.Context(), scope, key)
		if err != nil {
			logger.Warn("rate limiter unavailable", slog.String("scope", scope), slog.String("error", err.Error()))
			c.Next()
			return
		}
		if !d.Allowed {
			secs := int(math.Ceil(d.RetryAfter.Seconds()))
			if secs < 1 {
				secs = 1
			}
			err := fmt.Errorf("%w: try again in %d seconds", apperr.ErrRateLimited, secs)
			_ = c.Error(err)
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
			return
		}
		c.Next()
	}
}
