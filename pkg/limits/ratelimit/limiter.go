package ratelimit

import (
	"math"
	"sync"
	"time"

	"mercator-hq/urlcat/pkg/config"
)

// Rejection reasons.
const (
	ReasonRate        = "rate"
	ReasonConcurrency = "concurrency"
)

// idleTTL is how long a client bucket survives without requests.
const idleTTL = 10 * time.Minute

// Decision is the outcome of Limiter.Allow.
type Decision struct {
	Allowed    bool
	Reason     string
	RetryAfter time.Duration

	release func()
}

// Release frees the concurrency slot held by an allowed request.
func (d Decision) Release() {
	if d.release != nil {
		d.release()
	}
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds, at least one.
func (d Decision) RetryAfterSeconds() int {
	s := int(math.Ceil(d.RetryAfter.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}

// Limiter enforces a per-key request rate and a global concurrency cap.
type Limiter struct {
	cfg        config.RateLimitConfig
	concurrent *ConcurrentLimiter
	now        func() time.Time

	mu        sync.Mutex
	buckets   map[string]*TokenBucket
	lastSweep time.Time
}

// New creates a limiter. Zero limits are not enforced.
func New(cfg config.RateLimitConfig) *Limiter {
	return newLimiter(cfg, time.Now)
}

func newLimiter(cfg config.RateLimitConfig, now func() time.Time) *Limiter {
	l := &Limiter{
		cfg:       cfg,
		now:       now,
		buckets:   make(map[string]*TokenBucket),
		lastSweep: now(),
	}
	if cfg.Burst <= 0 {
		l.cfg.Burst = int(math.Ceil(cfg.RequestsPerSecond * 2))
	}
	if cfg.MaxConcurrent > 0 {
		l.concurrent = NewConcurrentLimiter(cfg.MaxConcurrent)
	}
	return l
}

// Allow admits or rejects one request from key. An allowed decision must
// be released when the request completes.
func (l *Limiter) Allow(key string) Decision {
	if l.cfg.RequestsPerSecond > 0 {
		if ok, wait := l.bucket(key).Take(); !ok {
			return Decision{Reason: ReasonRate, RetryAfter: wait}
		}
	}

	if l.concurrent != nil {
		if !l.concurrent.Acquire() {
			return Decision{Reason: ReasonConcurrency, RetryAfter: time.Second}
		}
		return Decision{Allowed: true, release: l.concurrent.Release}
	}
	return Decision{Allowed: true}
}

// Clients returns the number of tracked client buckets.
func (l *Limiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *Limiter) bucket(key string) *TokenBucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= idleTTL {
		l.sweepLocked(now)
	}

	b, ok := l.buckets[key]
	if !ok {
		b = newTokenBucket(l.cfg.Burst, l.cfg.RequestsPerSecond, l.now)
		l.buckets[key] = b
	}
	return b
}

// sweepLocked drops buckets idle for longer than idleTTL.
func (l *Limiter) sweepLocked(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastUsed()) >= idleTTL {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}
