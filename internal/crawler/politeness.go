package crawler

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// PolitenessLimiter spaces out requests to the same host across all workers
type PolitenessLimiter struct {
	delay time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewPolitenessLimiter creates a limiter allowing one request per host every delay.
// A zero delay disables waiting.
func NewPolitenessLimiter(delay time.Duration) *PolitenessLimiter {
	return &PolitenessLimiter{
		delay:    delay,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until a request to host is allowed or ctx is done
func (p *PolitenessLimiter) Wait(ctx context.Context, host string) error {
	if p == nil || p.delay <= 0 {
		return ctx.Err()
	}
	return p.limiterFor(host).Wait(ctx)
}

func (p *PolitenessLimiter) limiterFor(host string) *rate.Limiter {
	host = strings.ToLower(host)

	p.mu.Lock()
	defer p.mu.Unlock()

	limiter, ok := p.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(p.delay), 1)
		p.limiters[host] = limiter
	}
	return limiter
}
