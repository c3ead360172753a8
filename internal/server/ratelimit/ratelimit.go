// Package ratelimit provides per-user rate limiting for the share endpoints
// using a token bucket per client.
package ratelimit

import (
	"sync"
	"time"
)

// Config holds limiter settings.
type Config struct {
	// Capacity is the burst size of each bucket.
	Capacity int
	// RefillPerMinute is how many requests per minute a client earns back.
	RefillPerMinute float64
	// IdleEviction drops buckets untouched for this long.
	IdleEviction time.Duration
}

// DefaultConfig allows small bursts of share creations per user. Share
// creation fans out into LLM calls, so the limit is deliberately tight.
func DefaultConfig() Config {
	return Config{
		Capacity:        5,
		RefillPerMinute: 2,
		IdleEviction:    30 * time.Minute,
	}
}

type bucket struct {
	tokens     float64
	lastRefill time.Time
}

// Limiter manages one token bucket per client key.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	cfg     Config
	now     func() time.Time
}

// NewLimiter creates a Limiter. A nil clock defaults to time.Now.
func NewLimiter(cfg Config, now func() time.Time) *Limiter {
	if now == nil {
		now = time.Now
	}
	return &Limiter{
		buckets: make(map[string]*bucket),
		cfg:     cfg,
		now:     now,
	}
}

// Allow consumes one token for the key if available.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(l.cfg.Capacity), lastRefill: now}
		l.buckets[key] = b
	}

	refill := now.Sub(b.lastRefill).Minutes() * l.cfg.RefillPerMinute
	b.tokens = min(float64(l.cfg.Capacity), b.tokens+refill)
	b.lastRefill = now

	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		return true
	}
	return false
}

// Evict removes buckets that have been idle long enough to refill fully.
// Called opportunistically; the limiter works correctly without it.
func (l *Limiter) Evict() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.cfg.IdleEviction)
	for key, b := range l.buckets {
		if b.lastRefill.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}
