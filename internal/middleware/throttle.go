package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Throttle implements a coarse in-memory token-bucket limiter per client IP.
// It guards the operational endpoints (healthcheck, metrics) against abuse;
// the generation endpoints use the fixed-window Limiter instead, which is
// what the product contract specifies.
type Throttle struct {
	visitors map[string]*rate.Limiter
	mu       sync.Mutex
	r        rate.Limit // requests per second
	b        int        // burst size
}

// NewThrottle creates a throttle allowing r requests per second with bursts
// of up to b.
func NewThrottle(r rate.Limit, b int) *Throttle {
	t := &Throttle{
		visitors: make(map[string]*rate.Limiter),
		r:        r,
		b:        b,
	}

	go t.cleanupVisitors()

	return t
}

func (t *Throttle) getVisitor(ip string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	limiter, exists := t.visitors[ip]
	if !exists {
		limiter = rate.NewLimiter(t.r, t.b)
		t.visitors[ip] = limiter
	}

	return limiter
}

// cleanupVisitors removes idle visitors from memory every minute.
func (t *Throttle) cleanupVisitors() {
	for {
		time.Sleep(time.Minute)

		t.mu.Lock()
		for ip, limiter := range t.visitors {
			if limiter.Tokens() >= float64(t.b) {
				delete(t.visitors, ip)
			}
		}
		t.mu.Unlock()
	}
}

// Middleware returns a Gin middleware function for throttling
func (t *Throttle) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		limiter := t.getVisitor(ip)

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
