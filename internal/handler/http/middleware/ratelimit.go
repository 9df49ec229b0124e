package middleware

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"books-search/internal/handler/http/respond"
	"books-search/internal/observability/metrics"
)

// RateLimiter is a token bucket per client address. Limiters of clients
// idle for longer than the TTL are dropped by Sweep.
type RateLimiter struct {
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	extractor IPExtractor
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.Mutex
	clients map[string]*client
}

type client struct {
	limiter *rate.Limiter
	seen    time.Time
}

// NewRateLimiter returns a limiter for cfg, or nil when cfg disables rate
// limiting. A nil *RateLimiter passes every request through.
func NewRateLimiter(cfg Config, logger *slog.Logger) *RateLimiter {
	if cfg.RateLimit <= 0 {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}
	ttl := cfg.ClientTTL
	if ttl <= 0 {
		ttl = DefaultConfig().ClientTTL
	}
	return &RateLimiter{
		limit:     rate.Limit(cfg.RateLimit),
		burst:     burst,
		ttl:       ttl,
		extractor: cfg.Extractor(logger),
		logger:    logger,
		now:       time.Now,
		clients:   make(map[string]*client),
	}
}

// Middleware rejects requests over the client's rate with 429 and a
// Retry-After header. Requests whose client cannot be determined are let
// through.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	if rl == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, err := rl.extractor.ExtractIP(r)
		if err != nil {
			rl.logger.Warn("rate limiter: cannot determine client, allowing request",
				slog.String("remote_addr", r.RemoteAddr),
				slog.Any("error", err))
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.burst))
		ok, wait := rl.allow(ip)
		if !ok {
			metrics.RateLimitRequests.WithLabelValues("denied").Inc()
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			respond.JSON(w, http.StatusTooManyRequests, respond.ErrorBody{Error: "rate limit exceeded"})
			return
		}
		metrics.RateLimitRequests.WithLabelValues("allowed").Inc()
		next.ServeHTTP(w, r)
	})
}

// allow takes a token for key. When none is available it reports how long
// until one is.
func (rl *RateLimiter) allow(key string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	c, ok := rl.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = c
		metrics.RateLimitClients.Set(float64(len(rl.clients)))
	}
	c.seen = now
	rl.mu.Unlock()

	res := c.limiter.ReserveN(now, 1)
	if !res.OK() {
		return false, time.Second
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Sweep drops the limiters of clients idle for longer than the TTL and
// returns how many were dropped.
func (rl *RateLimiter) Sweep() int {
	cutoff := rl.now().Add(-rl.ttl)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	dropped := 0
	for key, c := range rl.clients {
		if c.seen.Before(cutoff) {
			delete(rl.clients, key)
			dropped++
		}
	}
	metrics.RateLimitClients.Set(float64(len(rl.clients)))
	return dropped
}

// Run sweeps every TTL until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context) {
	if rl == nil {
		return
	}
	ticker := time.NewTicker(rl.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.Sweep(); n > 0 {
				rl.logger.Debug("rate limiter: dropped idle clients", slog.Int("count", n))
			}
		}
	}
}
