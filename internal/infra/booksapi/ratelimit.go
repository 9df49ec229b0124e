package booksapi

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter implements the token bucket algorithm for outgoing catalog requests.
// A burst of page flips is allowed immediately, after which requests are
// spaced at the sustained rate.
type RateLimiter struct {
	rate    rate.Limit
	burst   int
	limiter *rate.Limiter
}

// NewRateLimiter creates a new RateLimiter with the specified rate and burst capacity.
//
// Example:
//
//	limiter := NewRateLimiter(2.0, 5)  // 2 req/s with burst of 5
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	r := rate.Limit(requestsPerSecond)
	return &RateLimiter{
		rate:    r,
		burst:   burst,
		limiter: rate.NewLimiter(r, burst),
	}
}

// Allow blocks until a token is available or the context is canceled.
func (r *RateLimiter) Allow(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// Burst returns the configured bucket size.
func (r *RateLimiter) Burst() int {
	return r.burst
}
