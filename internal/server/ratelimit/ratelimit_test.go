package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter() (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	return NewLimiter(DefaultConfig(), clock.Now), clock
}

func TestAllow_BurstThenDeny(t *testing.T) {
	limiter, _ := newTestLimiter()

	for i := 0; i < DefaultConfig().Capacity; i++ {
		assert.True(t, limiter.Allow("user-1"), "request %d within burst", i+1)
	}
	assert.False(t, limiter.Allow("user-1"))
}

func TestAllow_PerKeyBuckets(t *testing.T) {
	limiter, _ := newTestLimiter()

	for i := 0; i < DefaultConfig().Capacity; i++ {
		limiter.Allow("user-1")
	}
	assert.False(t, limiter.Allow("user-1"))
	assert.True(t, limiter.Allow("user-2"))
}

func TestAllow_RefillOverTime(t *testing.T) {
	limiter, clock := newTestLimiter()

	for i := 0; i < DefaultConfig().Capacity; i++ {
		limiter.Allow("user-1")
	}
	assert.False(t, limiter.Allow("user-1"))

	// Half a minute earns one token at 2/minute.
	clock.Advance(30 * time.Second)
	assert.True(t, limiter.Allow("user-1"))
	assert.False(t, limiter.Allow("user-1"))
}

func TestAllow_RefillCapsAtCapacity(t *testing.T) {
	limiter, clock := newTestLimiter()

	limiter.Allow("user-1")
	clock.Advance(24 * time.Hour)

	for i := 0; i < DefaultConfig().Capacity; i++ {
		assert.True(t, limiter.Allow("user-1"), "request %d after long idle", i+1)
	}
	assert.False(t, limiter.Allow("user-1"))
}

func TestEvict_DropsIdleBuckets(t *testing.T) {
	limiter, clock := newTestLimiter()

	limiter.Allow("user-1")
	clock.Advance(DefaultConfig().IdleEviction + time.Minute)
	limiter.Evict()

	assert.Empty(t, limiter.buckets)
}

func TestEvict_KeepsActiveBuckets(t *testing.T) {
	limiter, clock := newTestLimiter()

	limiter.Allow("stale-user")
	clock.Advance(DefaultConfig().IdleEviction + time.Minute)
	limiter.Allow("fresh-user")
	limiter.Evict()

	assert.Len(t, limiter.buckets, 1)
	assert.Contains(t, limiter.buckets, "fresh-user")
}
