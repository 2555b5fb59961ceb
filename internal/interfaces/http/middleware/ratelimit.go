package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"planpay/internal/infrastructure/ratelimit"
	"planpay/internal/shared/utils"
)

// ChargeRateLimit throttles endpoints that reach the card gateway, keyed by
// the authenticated operator. Runs after RequireAuth.
func ChargeRateLimit(limiter ratelimit.RateLimiter, limit ratelimit.Limit) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString(ContextKeyOperatorID)
		if key == "" {
			key = c.ClientIP()
		}

		allowed, err := limiter.Allow(key+":charge", limit)
		if err != nil {
			// If the limiter backend is down, let the request through
			// rather than blocking all admin traffic.
			c.Next()
			return
		}

		if !allowed {
			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
