package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/baonq-me/screenberry/config"
	"github.com/baonq-me/screenberry/models"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// clientLimiters tracks one token bucket per client IP. Buckets idle for an
// hour are reaped so the map cannot grow without bound.
type clientLimiters struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rps     rate.Limit
	burst   int
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func (cl *clientLimiters) allow(ip string) bool {
	cl.mu.Lock()
	b, ok := cl.buckets[ip]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(cl.rps, cl.burst)}
		cl.buckets[ip] = b
	}
	b.lastSeen = time.Now()
	cl.mu.Unlock()

	return b.limiter.Allow()
}

func (cl *clientLimiters) reap() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-1 * time.Hour)
		cl.mu.Lock()
		for ip, b := range cl.buckets {
			if b.lastSeen.Before(cutoff) {
				delete(cl.buckets, ip)
			}
		}
		cl.mu.Unlock()
	}
}

// RateLimit returns per-client-IP token-bucket rate limiting middleware
// powered by golang.org/x/time/rate. Scans are expensive (a browser tab,
// 13 OCR passes), so the default limits are deliberately tight.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	cl := &clientLimiters{
		buckets: make(map[string]*bucket),
		rps:     rate.Limit(cfg.RequestsPerSecond),
		burst:   cfg.Burst,
	}
	go cl.reap()

	return func(c *gin.Context) {
		if !cl.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ScanResponse{
				Status: "error",
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeRateLimited,
					Message: "rate limit reached, please slow down",
				},
			})
			return
		}
		c.Next()
	}
}
