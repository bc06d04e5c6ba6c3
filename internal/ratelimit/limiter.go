package ratelimit

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Quota is the ceiling for one endpoint within a fixed window.
type Quota struct {
	MaxRequests int
	Window      time.Duration
}

// Result is the outcome of one quota check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Store is the counter backend. Incr must apply the fixed-window
// check-and-increment atomically per key: create or reset the counter when its
// window has lapsed, and refuse to increment once the limit is reached,
// reporting the existing reset time unchanged.
type Store interface {
	Incr(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, count int, resetAt time.Time, err error)
	Sweep(ctx context.Context) (int, error)
}

// Limiter counts requests per (client identity, endpoint) pair in fixed
// windows. Fixed-window counting trades burst smoothing at window boundaries
// for O(1) memory per key; the goal is abuse dampening, not fairness.
type Limiter struct {
	store    Store
	quotas   map[string]Quota
	fallback Quota
}

func New(store Store, quotas map[string]Quota, fallback Quota) *Limiter {
	return &Limiter{
		store:    store,
		quotas:   quotas,
		fallback: fallback,
	}
}

// Check records one request for the client/endpoint pair and reports whether
// it is within quota. A store failure allows the request through with a
// warning: the limiter dampens abuse, it is not an entitlement check.
func (l *Limiter) Check(ctx context.Context, clientID, endpoint string) Result {
	quota, ok := l.quotas[endpoint]
	if !ok {
		quota = l.fallback
	}

	key := clientID + ":" + endpoint
	allowed, count, resetAt, err := l.store.Incr(ctx, key, quota.MaxRequests, quota.Window)
	if err != nil {
		log.Warn().Err(err).Str("endpoint", endpoint).Msg("rate limit store failed, allowing request")
		return Result{
			Allowed:   true,
			Limit:     quota.MaxRequests,
			Remaining: quota.MaxRequests - 1,
			ResetAt:   time.Now().Add(quota.Window),
		}
	}

	remaining := quota.MaxRequests - count
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Allowed:   allowed,
		Limit:     quota.MaxRequests,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}

// SweepStore exposes the backing store's sweep for the cleanup job.
func (l *Limiter) SweepStore(ctx context.Context) (int, error) {
	return l.store.Sweep(ctx)
}
