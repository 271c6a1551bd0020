package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a fixed-window per-key limiter. It guards the OAuth start
// endpoint so one client cannot mint authorize URLs in a tight loop.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	span    time.Duration
	now     func() time.Time
}

type window struct {
	count    int
	expireAt time.Time
}

func NewRateLimiter(limit int, span time.Duration) *RateLimiter {
	return NewRateLimiterWithNow(limit, span, time.Now)
}

func NewRateLimiterWithNow(limit int, span time.Duration, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		span:    span,
		now:     now,
	}
}

func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweepLocked(now)

	w, ok := rl.windows[key]
	if !ok || now.After(w.expireAt) {
		rl.windows[key] = &window{count: 1, expireAt: now.Add(rl.span)}
		return true
	}

	if w.count >= rl.limit {
		return false
	}
	w.count++
	return true
}

// sweepLocked drops expired windows so the map stays bounded by the number of
// distinct keys seen within one span.
func (rl *RateLimiter) sweepLocked(now time.Time) {
	if len(rl.windows) < 1024 {
		return
	}
	for key, w := range rl.windows {
		if now.After(w.expireAt) {
			delete(rl.windows, key)
		}
	}
}

func RateLimit(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			c.Abort()
			return
		}
		c.Next()
	}
}
