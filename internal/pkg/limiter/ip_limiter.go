/*
Package limiter provides IP-based rate limiting for connection attempts.

It keeps one token-bucket limiter (rate.Limiter) per client IP and
periodically drops buckets that have refilled completely, so the map does
not grow without bound.
*/
package limiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"scrumpoker/internal/pkg/logx"
)

const cleanupInterval = 3 * time.Minute

// IPRateLimiter holds per-IP token buckets sharing one rate and burst.
type IPRateLimiter struct {
	mu     sync.RWMutex
	limits map[string]*rate.Limiter

	// r is the sustained rate, b the burst capacity, applied to every IP.
	r rate.Limit
	b int
}

// NewIPRateLimiter creates a limiter set and starts its background cleanup.
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	i := &IPRateLimiter{
		limits: make(map[string]*rate.Limiter),
		r:      r,
		b:      b,
	}

	go i.cleanupLoop()

	return i
}

// GetLimiter returns the limiter for ip, creating it on first sight.
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.RLock()
	limiter, exists := i.limits[ip]
	i.mu.RUnlock()

	if exists {
		return limiter
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if limiter, exists = i.limits[ip]; !exists {
		limiter = rate.NewLimiter(i.r, i.b)
		i.limits[ip] = limiter
	}

	return limiter
}

// cleanupLoop removes limiters whose buckets are full again; those IPs have
// been idle long enough to forget.
func (i *IPRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		i.mu.Lock()
		removed := 0
		for ip, limiter := range i.limits {
			if limiter.TokensAt(time.Now()) >= float64(limiter.Burst()) {
				delete(i.limits, ip)
				removed++
			}
		}
		remaining := len(i.limits)
		i.mu.Unlock()

		logx.Info("Rate limiter cleanup finished", "removed", removed, "remaining", remaining)
	}
}
