package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter hands out one token bucket per client key.
type Limiter struct {
	Burst    int
	LimitRPS float64
	Idle     time.Duration

	clients map[string]*clientLimiter
	mu      sync.Mutex
	now     func() time.Time
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

func NewLimiter(burst int, limitRPS float64, idle time.Duration) *Limiter {
	return &Limiter{
		Burst:    burst,
		LimitRPS: limitRPS,
		Idle:     idle,
		clients:  make(map[string]*clientLimiter),
		now:      time.Now,
	}
}

// Allow reports whether the client identified by id may proceed now.
func (l *Limiter) Allow(id string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	cl, ok := l.clients[id]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(l.LimitRPS), l.Burst)}
		l.clients[id] = cl
	}
	cl.lastAccess = now
	return cl.limiter.AllowN(now, 1)
}

// Prune forgets clients not seen for longer than Idle.
func (l *Limiter) Prune() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for id, v := range l.clients {
		if now.Sub(v.lastAccess) > l.Idle {
			delete(l.clients, id)
			removed++
		}
	}
	return removed
}

// Run prunes idle clients every minute until ctx is done.
func (l *Limiter) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Prune()
		}
	}
}
