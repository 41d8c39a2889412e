package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimiter applies a per-client token bucket. Clients are keyed by
// remote address; buckets idle for a while are dropped by a janitor
// goroutine so the map does not grow without bound.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	done    chan struct{}
}

type clientBucket struct {
	tokens   float64
	lastSeen time.Time
}

const bucketIdleTTL = 10 * time.Minute

// NewRateLimiter starts the janitor with the given sweep interval. Call
// Stop on shutdown.
func NewRateLimiter(sweepEvery time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientBucket),
		done:    make(chan struct{}),
	}
	go rl.janitor(sweepEvery)
	return rl
}

// Stop ends the janitor goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.done)
}

// Limit caps each client at maxPerMinute requests, allowing short bursts up
// to the full minute budget. Rejected requests get a 429 with Retry-After.
func (rl *RateLimiter) Limit(maxPerMinute int) Middleware {
	burst := float64(maxPerMinute)
	perSecond := burst / 60.0
	retryAfter := strconv.Itoa(int(60.0/burst) + 1)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.take(r.RemoteAddr, burst, perSecond) {
				w.Header().Set("Retry-After", retryAfter)
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// take refills the client's bucket for the elapsed time and spends one
// token if available.
func (rl *RateLimiter) take(key string, burst, perSecond float64) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.clients[key]
	if !ok {
		b = &clientBucket{tokens: burst}
		rl.clients[key] = b
	} else {
		b.tokens += now.Sub(b.lastSeen).Seconds() * perSecond
		if b.tokens > burst {
			b.tokens = burst
		}
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (rl *RateLimiter) janitor(sweepEvery time.Duration) {
	ticker := time.NewTicker(sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for key, b := range rl.clients {
				if now.Sub(b.lastSeen) > bucketIdleTTL {
					delete(rl.clients, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}
