// Package ratelimit throttles API clients.
//
// A Limiter keeps one token bucket per client key and an optional global
// cap on in-flight requests. Buckets of clients that have been idle for a
// while are dropped so the key space stays bounded.
//
//	limiter := ratelimit.New(cfg.Server.RateLimit)
//	if d := limiter.Allow(clientIP); !d.Allowed {
//	    w.Header().Set("Retry-After", strconv.Itoa(d.RetryAfterSeconds()))
//	    ...
//	}
//	defer d.Release()
package ratelimit
