package middleware

import (
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gdblog/go-blog/service/limiters"
	"github.com/gdblog/go-blog/service/logger"
	"github.com/gdblog/go-blog/util"
)

var errRateLimited = errors.New("rate limited")

// RateLimited limits requests per authenticated user, or per client ip for anonymous callers.
// If the limiter itself fails the request is let through.
func RateLimited(lim *limiters.KeyRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if identity := IdentityFor(c); identity.IsAuthenticated() {
			key = identity.UserID.String()
		}

		canContinue, tryAgainAfter, err := lim.ForKey(c, key)
		if err != nil {
			logger.For(c).Errorf("rate limiter failed for key %s: %s", key, err)
			c.Next()
			return
		}

		if !canContinue {
			c.Header("Retry-After", fmt.Sprintf("%d", int(math.Ceil(tryAgainAfter.Seconds()))))
			util.ErrResponse(c, http.StatusTooManyRequests, fmt.Errorf("%w: try again in %s", errRateLimited, tryAgainAfter))
			return
		}

		c.Next()
	}
}
