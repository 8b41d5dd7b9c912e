/*
Package limiter provides outbound request pacing keyed by backend host.

It utilizes the Token Bucket algorithm (rate.Limiter) to keep the client under the backend's
request budget, even when several pollers refresh at once, and prunes idle limiters
whenever the table grows past a small bound.
*/
package limiter

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"zimage/internal/pkg/errs"
	"zimage/internal/pkg/logx"
)

// maxIdleHosts is the table size above which idle limiters are pruned.
const maxIdleHosts = 32

// HostRateLimiter paces requests per destination host.
type HostRateLimiter struct {
	// mu is used to protect concurrent access to the limits map.
	mu *sync.RWMutex

	// limits stores the map from host to the *rate.Limiter instance.
	limits map[string]*rate.Limiter

	// r is the rate (rate.Limit) of the limiter, defining the number of events allowed per second.
	r rate.Limit

	// b is the burst size (token bucket size) of the limiter.
	b int
}

// NewHostRateLimiter creates and returns a new HostRateLimiter instance.
func NewHostRateLimiter(r rate.Limit, b int) *HostRateLimiter {
	return &HostRateLimiter{
		mu:     &sync.RWMutex{},
		limits: make(map[string]*rate.Limiter),
		r:      r,
		b:      b,
	}
}

// GetLimiter retrieves the rate limiter corresponding to the given host.
// If the limiter for that host does not exist, a new one is created and stored in the map.
// It uses a Double-Checked Locking pattern to ensure concurrent-safe creation of new limiters.
func (l *HostRateLimiter) GetLimiter(host string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limits[host]
	l.mu.RUnlock()

	if !exists {
		l.mu.Lock()
		limiter, exists = l.limits[host]
		if !exists {
			if len(l.limits) >= maxIdleHosts {
				l.pruneLocked(time.Now())
			}
			limiter = rate.NewLimiter(l.r, l.b)
			l.limits[host] = limiter
		}
		l.mu.Unlock()
	}

	return limiter
}

// Prune removes limiters whose token bucket is full, i.e. hosts with no recent traffic.
// It returns the number of removed limiters.
func (l *HostRateLimiter) Prune(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pruneLocked(now)
}

func (l *HostRateLimiter) pruneLocked(now time.Time) int {
	count := 0
	for host, limiter := range l.limits {
		if limiter.TokensAt(now) >= float64(limiter.Burst()) {
			delete(l.limits, host)
			count++
		}
	}
	logx.Debug("Rate limiter pruned idle hosts", "removed", count, "remaining", len(l.limits))
	return count
}

// Wait blocks until a request to host may proceed or ctx is done.
func (l *HostRateLimiter) Wait(ctx context.Context, host string) error {
	if err := l.GetLimiter(host).Wait(ctx); err != nil {
		return errs.Wrap(errs.ErrRateLimitExceeded, err)
	}
	return nil
}

type transport struct {
	limiter *HostRateLimiter
	next    http.RoundTripper
}

// Transport wraps next so that every request waits for its host's token first.
func (l *HostRateLimiter) Transport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &transport{limiter: l, next: next}
}

// RoundTrip implements http.RoundTripper.
func (t *transport) RoundTrip(r *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(r.Context(), r.URL.Host); err != nil {
		return nil, err
	}
	return t.next.RoundTrip(r)
}
