package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// visitorTTL is how long an idle client keeps its bucket.
const visitorTTL = 3 * time.Minute

// RateLimiter hands out one token bucket per client address.
type RateLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	visitors map[string]*visitor
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perMinute requests per client, with bursts of the
// same size.
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	return &RateLimiter{
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		visitors: make(map[string]*visitor),
	}
}

// Allow consumes a token for key and reports whether one was available.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = time.Now()
	rl.mu.Unlock()

	return v.limiter.Allow()
}

// Cleanup evicts idle clients every interval until ctx ends.
func (rl *RateLimiter) Cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for key, v := range rl.visitors {
				if now.Sub(v.lastSeen) > visitorTTL {
					delete(rl.visitors, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Len returns the number of tracked clients.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// RateLimit rejects requests over the client's budget by calling deny.
func RateLimit(rl *RateLimiter, deny http.HandlerFunc) func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(time.Minute.Seconds()) / max(rl.burst, 1))
	if retryAfter == "0" {
		retryAfter = "1"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.Allow(ClientIP(r)) {
				w.Header().Set("Retry-After", retryAfter)
				deny(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
