package ratelimit

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type entry struct {
	count       int
	windowStart time.Time
}

// Limiter caps requests per client key within a fixed window
type Limiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string]*entry
}

// NewLimiter creates a limiter allowing max requests per window.
// Stale entries are swept periodically.
func NewLimiter(max int, window time.Duration) *Limiter {
	l := &Limiter{
		max:     max,
		window:  window,
		entries: make(map[string]*entry),
	}

	go l.periodicCleanup()

	return l
}

func (l *Limiter) periodicCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	for range ticker.C {
		l.ClearExpired()
	}
}

// Allow records a request for key and reports whether it is within the limit
func (l *Limiter) Allow(key string) bool {
	return l.allowAt(key, time.Now())
}

func (l *Limiter) allowAt(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, exists := l.entries[key]
	if !exists || now.Sub(e.windowStart) >= l.window {
		l.entries[key] = &entry{count: 1, windowStart: now}
		return true
	}

	e.count++
	return e.count <= l.max
}

// ClearExpired removes entries whose window has passed
func (l *Limiter) ClearExpired() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for key, e := range l.entries {
		if now.Sub(e.windowStart) >= l.window {
			delete(l.entries, key)
		}
	}
}

// Middleware rejects over-limit clients with 429, keyed by client IP
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(429, gin.H{"message": "Too many requests. Please slow down."})
			return
		}
		c.Next()
	}
}
