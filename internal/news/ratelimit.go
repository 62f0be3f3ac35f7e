package news

import (
	"context"
	"math"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter hands out one token bucket per source name
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewRateLimiter allows perSecond requests per source with the given burst.
// A non-positive rate disables limiting.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

func (r *RateLimiter) limiter(source string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.limiters[source]
	if !ok {
		l = rate.NewLimiter(r.limit, r.burst)
		r.limiters[source] = l
	}
	return l
}

// Wait blocks until source may make a request or ctx is done
func (r *RateLimiter) Wait(ctx context.Context, source string) error {
	return r.limiter(source).Wait(ctx)
}

// Allow reports whether source may make a request now, consuming a token if so
func (r *RateLimiter) Allow(source string) bool {
	return r.limiter(source).Allow()
}

// Rate is the configured requests per second for source, +Inf when
// limiting is disabled
func (r *RateLimiter) Rate(source string) float64 {
	limit := r.limiter(source).Limit()
	if limit == rate.Inf {
		return math.Inf(1)
	}
	return float64(limit)
}
