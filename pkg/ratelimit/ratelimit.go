// Package ratelimit provides a per-client token bucket limiter for the API.
package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"shampoo-demand-api/pkg/logging"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// DefaultIdleTTL 最終アクセスからこの時間が経過したキーは破棄される
const DefaultIdleTTL = 10 * time.Minute

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedRateLimiter manages per-key rate limiting.
// Each unique key gets its own independent limiter; idle keys are evicted.
type KeyedRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*entry
	limit    rate.Limit
	burst    int
	ttl      time.Duration
	now      func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

// New creates a keyed limiter allowing rps requests per second with the given burst.
func New(rps float64, burst int) *KeyedRateLimiter {
	return newLimiter(rps, burst, DefaultIdleTTL, true)
}

func newLimiter(rps float64, burst int, ttl time.Duration, sweep bool) *KeyedRateLimiter {
	krl := &KeyedRateLimiter{
		limiters: make(map[string]*entry),
		limit:    rate.Limit(rps),
		burst:    burst,
		ttl:      ttl,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	if sweep {
		go krl.cleanup()
	}
	return krl
}

// Allow reports whether a request for key may proceed. It never blocks.
func (krl *KeyedRateLimiter) Allow(key string) bool {
	krl.mu.Lock()
	e, ok := krl.limiters[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(krl.limit, krl.burst)}
		krl.limiters[key] = e
	}
	e.lastSeen = krl.now()
	krl.mu.Unlock()
	return e.limiter.Allow()
}

// Len returns the number of tracked keys.
func (krl *KeyedRateLimiter) Len() int {
	krl.mu.Lock()
	defer krl.mu.Unlock()
	return len(krl.limiters)
}

// Stop shuts down the cleanup goroutine.
func (krl *KeyedRateLimiter) Stop() {
	krl.stopOnce.Do(func() {
		close(krl.done)
	})
}

func (krl *KeyedRateLimiter) evictIdle() {
	cutoff := krl.now().Add(-krl.ttl)
	krl.mu.Lock()
	defer krl.mu.Unlock()
	for key, e := range krl.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(krl.limiters, key)
		}
	}
}

func (krl *KeyedRateLimiter) cleanup() {
	ticker := time.NewTicker(krl.ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-krl.done:
			return
		case <-ticker.C:
			krl.evictIdle()
		}
	}
}

// Middleware はクライアントIPごとにリクエストを制限するGinミドルウェアです。超過時は429を返します。
func Middleware(limiter *KeyedRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if !limiter.Allow(key) {
			logging.Ctx(c.Request.Context()).Warn().
				Str("ip", key).
				Str("path", c.Request.URL.Path).
				Msg("rate limit exceeded")
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "Too many requests. Please try again later.",
				"code":    "rate_limited",
			})
			return
		}
		c.Next()
	}
}
