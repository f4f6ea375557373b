package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ClientLimiter hands each caller (API key, else client IP) its own token
// bucket. This protects the gateway itself; the per-provider fixed windows
// live in the resilience coordinator and protect the upstreams.
type ClientLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	qps      rate.Limit
	burst    int
}

func NewClientLimiter(qps float64, burst int) *ClientLimiter {
	if qps <= 0 {
		qps = 20
	}
	if burst <= 0 {
		burst = 40
	}
	return &ClientLimiter{
		limiters: make(map[string]*rate.Limiter),
		qps:      rate.Limit(qps),
		burst:    burst,
	}
}

func (cl *ClientLimiter) limiterFor(key string) *rate.Limiter {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	l, ok := cl.limiters[key]
	if !ok {
		l = rate.NewLimiter(cl.qps, cl.burst)
		cl.limiters[key] = l
	}
	return l
}

func RateLimitMiddleware(cl *ClientLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderGatewayKey)
		if key == "" {
			key = c.ClientIP()
		}

		if !cl.limiterFor(key).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": "1s",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
