package fetch

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostLimiter enforces per-host politeness: a minimum delay between
// requests to one host, backed by a token bucket so bursts cannot slip
// through under concurrent workers. Limits are independent across
// hosts; a backlog on one host never blocks another.
type HostLimiter struct {
	// delay is the default minimum interval between same-host requests.
	delay time.Duration

	// overrides maps hosts to site-specific delays.
	overrides map[string]time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHostLimiter creates a limiter with the given default per-host delay.
func NewHostLimiter(delay time.Duration) *HostLimiter {
	return &HostLimiter{
		delay:     delay,
		overrides: make(map[string]time.Duration),
		limiters:  make(map[string]*rate.Limiter),
	}
}

// SetHostDelay overrides the delay for one host.
func (l *HostLimiter) SetHostDelay(host string, delay time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	host = strings.ToLower(host)
	l.overrides[host] = delay
	// Drop any limiter built with the old interval.
	delete(l.limiters, host)
}

// Wait blocks until the host's politeness constraint is satisfied or
// the context is cancelled.
func (l *HostLimiter) Wait(ctx context.Context, host string) error {
	if l == nil || host == "" {
		return nil
	}
	host = strings.ToLower(host)

	l.mu.Lock()
	limiter, ok := l.limiters[host]
	if !ok {
		delay := l.delay
		if override, found := l.overrides[host]; found {
			delay = override
		}
		if delay <= 0 {
			// No limit for this host; remember that with a nil entry.
			l.limiters[host] = nil
			l.mu.Unlock()
			return nil
		}
		// Burst of 1 makes the bucket equivalent to a strict
		// minimum-interval rule.
		limiter = rate.NewLimiter(rate.Every(delay), 1)
		l.limiters[host] = limiter
	}
	l.mu.Unlock()

	if limiter == nil {
		return nil
	}
	return limiter.Wait(ctx)
}
