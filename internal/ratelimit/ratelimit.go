// Package ratelimit throttles bursty clients at the transport level.
// The monthly generation quota is a separate concern handled by the
// account package; this only keeps a single extension install or script
// from hammering the API.
package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Config controls the per-client token buckets.
type Config struct {
	RequestsPerMinute int
	BurstSize         int
	// CleanupInterval controls how often idle buckets are dropped.
	CleanupInterval time.Duration
}

// DefaultConfig allows one request per second on average with short bursts.
func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		BurstSize:         10,
		CleanupInterval:   time.Minute,
	}
}

// bucket is one client's token state. Tokens refill continuously at the
// configured rate and are capped at the burst size.
type bucket struct {
	tokens float64
	seen   time.Time
}

func (b *bucket) refill(now time.Time, perSecond, max float64) {
	b.tokens += now.Sub(b.seen).Seconds() * perSecond
	if b.tokens > max {
		b.tokens = max
	}
	b.seen = now
}

// Limiter holds a token bucket per client key.
type Limiter struct {
	cfg     Config
	mu      sync.Mutex
	buckets map[string]*bucket
	done    chan struct{}
	now     func() time.Time
}

// New creates a limiter and starts its cleanup loop.
func New(cfg Config) *Limiter {
	l := &Limiter{
		cfg:     cfg,
		buckets: make(map[string]*bucket),
		done:    make(chan struct{}),
		now:     time.Now,
	}
	go l.sweep()
	return l
}

// Stop ends the cleanup loop.
func (l *Limiter) Stop() {
	close(l.done)
}

// sweep drops buckets that have been idle long enough to be full anyway.
func (l *Limiter) sweep() {
	ticker := time.NewTicker(l.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			stale := l.now().Add(-2 * time.Minute)
			l.mu.Lock()
			for key, b := range l.buckets {
				if b.seen.Before(stale) {
					delete(l.buckets, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Allow spends one token for key, reporting whether one was available.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		l.buckets[key] = &bucket{tokens: float64(l.cfg.BurstSize - 1), seen: now}
		return true
	}

	b.refill(now, float64(l.cfg.RequestsPerMinute)/60.0, float64(l.cfg.BurstSize))
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// clientKey prefers the API key over the client IP, so merchants behind a
// shared NAT don't throttle each other once authenticated.
func clientKey(c *gin.Context) string {
	for _, header := range []string{"Authorization", "X-API-Key"} {
		if v := c.GetHeader(header); v != "" {
			if len(v) > 20 {
				v = v[:20]
			}
			return "key:" + v
		}
	}
	return "ip:" + c.ClientIP()
}

// Middleware rejects over-limit requests with 429.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(clientKey(c)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate_limit_exceeded",
				"message":     "Too many requests. Please slow down.",
				"retry_after": 1,
			})
			return
		}
		c.Next()
	}
}
