package api

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/mr1hm/go-org-boundaries/internal/metrics"
)

// unlimitedRoutes are held open or polled by infrastructure, not viewers.
var unlimitedRoutes = []string{"/health", "/metrics", "/api/stream"}

// RateLimitMiddleware shares one token bucket of rps requests per second
// between all map and navigation requests. A non-positive rps disables it.
func RateLimitMiddleware(rps int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := rate.NewLimiter(rate.Limit(rps), rps)

	return func(c *gin.Context) {
		route := c.FullPath()
		if slices.Contains(unlimitedRoutes, route) {
			c.Next()
			return
		}
		if !limiter.Allow() {
			if route == "" {
				route = "unmatched"
			}
			metrics.RateLimitedTotal.WithLabelValues(route).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
