package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/launcify/launcify-api/internal/ratelimit"
	"github.com/launcify/launcify-api/pkg/metrics"
)

// CallerKey derives the rate-limit identity for a request: the first entry
// of X-Forwarded-For, else X-Real-IP, else "unknown". All unidentifiable
// callers share one bucket on purpose.
func CallerKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, found := strings.Cut(fwd, ","); found {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return "unknown"
}

// RateLimitMiddleware rejects callers that exhausted their fixed window with
// 429 and a Retry-After hint. Rejection has no side effect on the counter.
func RateLimitMiddleware(limiter *ratelimit.Limiter) gin.HandlerFunc {
	retryAfter := strconv.Itoa(int(limiter.Window().Seconds()))
	return func(c *gin.Context) {
		key := CallerKey(c.Request)
		if limiter.IsLimited(c.Request.Context(), key) {
			metrics.RateLimitRejections.WithLabelValues(c.FullPath()).Inc()
			c.Header("Retry-After", retryAfter)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests. Please try again later.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
