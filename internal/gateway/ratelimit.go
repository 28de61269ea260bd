package gateway

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// rateLimiter is a sliding-window limiter keyed by client address. Each
// key tracks the timestamps of its requests within the window.
type rateLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	limit   int
	buckets map[string][]time.Time
	now     func() time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		window:  window,
		limit:   limit,
		buckets: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// allow records a request for key and reports whether it fits the window.
// When it does not, the returned duration is how long until a slot frees.
func (rl *rateLimiter) allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	events := evict(rl.buckets[key], now.Add(-rl.window))
	if len(events) >= rl.limit {
		rl.buckets[key] = events
		return false, events[0].Add(rl.window).Sub(now)
	}
	rl.buckets[key] = append(events, now)
	return true, 0
}

// evict drops events before cutoff. Events are in chronological order.
func evict(events []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(events) && events[i].Before(cutoff) {
		i++
	}
	if i == len(events) {
		return nil
	}
	return events[i:]
}

// rateLimitMiddleware rejects clients that exceed the limiter with 429.
func rateLimitMiddleware(rl *rateLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.RemoteAddr
			if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
				key = host
			}
			ok, retry := rl.allow(key)
			if !ok {
				logger.Warn("gateway: rate limited", "remote", key, "path", r.URL.Path)
				w.Header().Set("Retry-After", strconv.Itoa(int(retry.Round(time.Second).Seconds())+1))
				writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
