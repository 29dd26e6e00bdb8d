package fetch

import (
	"context"
	"sync"
)

// DomainLimiter caps concurrent fetches per hostname. Each hostname gets
// its own permit pool, created lazily on first use; there is no global
// cap across hostnames.
type DomainLimiter struct {
	mu        sync.Mutex
	permits   map[string]chan struct{}
	perDomain int
}

// NewDomainLimiter creates a limiter granting perDomain permits per hostname.
func NewDomainLimiter(perDomain int) *DomainLimiter {
	if perDomain <= 0 {
		perDomain = 1
	}
	return &DomainLimiter{
		permits:   make(map[string]chan struct{}),
		perDomain: perDomain,
	}
}

func (l *DomainLimiter) pool(host string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	pool, ok := l.permits[host]
	if !ok {
		pool = make(chan struct{}, l.perDomain)
		l.permits[host] = pool
	}
	return pool
}

// Acquire takes a permit for host, blocking until one frees up or ctx is
// done.
func (l *DomainLimiter) Acquire(ctx context.Context, host string) error {
	select {
	case l.pool(host) <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a permit for host. Releasing without a matching acquire
// is a no-op.
func (l *DomainLimiter) Release(host string) {
	select {
	case <-l.pool(host):
	default:
	}
}

// InFlight returns the number of permits currently held for host.
func (l *DomainLimiter) InFlight(host string) int {
	return len(l.pool(host))
}
