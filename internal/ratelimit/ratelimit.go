package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/orgball2608/insta-archive/pkg/config"
	"golang.org/x/time/rate"
)

// Limiter throttles work per key, e.g. upstream calls per Instagram username.
type Limiter interface {
	Allow(key string) bool
	// Wait blocks until key may proceed or ctx is done.
	Wait(ctx context.Context, key string) error
}

// InMemoryLimiter keeps one token bucket per key.
type InMemoryLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	r        rate.Limit
	b        int
}

// NewInMemoryLimiter allows requests per interval for every key, with a burst of burst.
// Example: NewInMemoryLimiter(2, time.Minute, 1) allows one call every 30 seconds per key.
func NewInMemoryLimiter(requests int, per time.Duration, burst int) *InMemoryLimiter {
	if requests <= 0 {
		requests = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &InMemoryLimiter{
		limiters: make(map[string]*rate.Limiter),
		r:        rate.Every(per / time.Duration(requests)),
		b:        burst,
	}
}

// NewFromConfig builds the upstream limiter from the archiver settings.
func NewFromConfig(cfg *config.Config) *InMemoryLimiter {
	return NewInMemoryLimiter(cfg.Archiver.RequestsPerUser, cfg.Archiver.RequestsInterval, 1)
}

var _ Limiter = (*InMemoryLimiter)(nil)

func (l *InMemoryLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(l.r, l.b)
		l.limiters[key] = limiter
	}
	return limiter
}

func (l *InMemoryLimiter) Allow(key string) bool {
	return l.get(key).Allow()
}

func (l *InMemoryLimiter) Wait(ctx context.Context, key string) error {
	return l.get(key).Wait(ctx)
}
