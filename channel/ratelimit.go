package channel

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// rateLimiter maintains an exact one-second sliding window, which on its
// own admits at most limit messages in any one-second interval, plus
// golang.org/x/time/rate as a secondary coarse limiter: a token bucket
// refilled at limit per second with a burst of limit, consulted only
// after the sliding window has admitted a message.
type rateLimiter struct {
	limit int // messages/second; <= 0 means unlimited

	mu     sync.Mutex
	window []time.Time

	secondary *rate.Limiter
}

func newRateLimiter(limit int) *rateLimiter {
	rl := &rateLimiter{limit: limit}
	if limit > 0 {
		rl.secondary = rate.NewLimiter(rate.Limit(limit), limit)
	}
	return rl
}

// allow reports whether a message arriving at now may be dispatched,
// recording it into the sliding window if so.
func (r *rateLimiter) allow(now time.Time) bool {
	if r.limit <= 0 {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := now.Add(-time.Second)
	i := 0
	for i < len(r.window) && r.window[i].Before(cutoff) {
		i++
	}
	r.window = r.window[i:]

	if len(r.window) >= r.limit {
		return false
	}
	if r.secondary != nil && !r.secondary.AllowN(now, 1) {
		return false
	}
	r.window = append(r.window, now)
	return true
}
