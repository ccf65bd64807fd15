package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket allows bursts up to its capacity while holding the average
// rate to refillRate tokens per second.
type TokenBucket struct {
	capacity   float64
	tokens     float64
	refillRate float64
	lastRefill time.Time
	now        func() time.Time
	mu         sync.Mutex
}

// NewTokenBucket creates a full bucket.
func NewTokenBucket(capacity int, refillRate float64) *TokenBucket {
	return newTokenBucket(capacity, refillRate, time.Now)
}

func newTokenBucket(capacity int, refillRate float64, now func() time.Time) *TokenBucket {
	return &TokenBucket{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		refillRate: refillRate,
		lastRefill: now(),
		now:        now,
	}
}

// Take consumes one token. When none is available it returns false and the
// time until one will be.
func (tb *TokenBucket) Take() (bool, time.Duration) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refillLocked()
	if tb.tokens >= 1 {
		tb.tokens--
		return true, 0
	}
	if tb.refillRate <= 0 {
		return false, time.Second
	}
	wait := (1 - tb.tokens) / tb.refillRate
	return false, time.Duration(wait * float64(time.Second))
}

// Remaining returns the whole tokens currently available.
func (tb *TokenBucket) Remaining() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refillLocked()
	return int(tb.tokens)
}

// lastUsed returns the time of the last refill. Caller must not hold the lock.
func (tb *TokenBucket) lastUsed() time.Time {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.lastRefill
}

// refillLocked adds the tokens earned since the last refill.
func (tb *TokenBucket) refillLocked() {
	now := tb.now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}
	tb.tokens += elapsed * tb.refillRate
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
	tb.lastRefill = now
}
