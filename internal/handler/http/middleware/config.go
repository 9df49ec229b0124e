// Package middleware holds the API's edge middleware: CORS, security
// headers and per-client rate limiting.
package middleware

import (
	"fmt"
	"log/slog"
	"net/netip"
	"strings"
	"time"

	"books-search/internal/pkg/config"
)

// Config holds the edge middleware settings.
type Config struct {
	// AllowedOrigins lists the origins allowed to call the API from a
	// browser. Empty disables CORS; "*" allows any origin.
	AllowedOrigins []string

	// RateLimit is the sustained request rate per client in requests per
	// second. Zero disables rate limiting.
	RateLimit float64
	RateBurst int
	// ClientTTL is how long an idle client's limiter is kept.
	ClientTTL time.Duration

	// TrustedProxies are the proxies whose X-Forwarded-For and X-Real-IP
	// headers are believed. Empty means RemoteAddr is always used.
	TrustedProxies []netip.Prefix
}

// DefaultConfig returns the defaults used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		RateLimit: 20,
		RateBurst: 40,
		ClientTTL: 10 * time.Minute,
	}
}

// Extractor returns the client address extractor for the configuration.
func (c Config) Extractor(logger *slog.Logger) IPExtractor {
	if len(c.TrustedProxies) == 0 {
		return RemoteAddrExtractor{}
	}
	return NewTrustedProxyExtractor(c.TrustedProxies, logger)
}

// LoadConfigFromEnv loads the configuration. Numeric values fall back to
// their defaults when invalid; an invalid trusted proxy list is an error,
// since trusting the wrong address lets clients pick their own rate bucket.
//
// Environment variables:
//   - BOOKS_CORS_ORIGINS: Comma-separated origins (default: none)
//   - BOOKS_HTTP_RATE_LIMIT: Float 0-10000 requests/s per client (default: 20)
//   - BOOKS_HTTP_RATE_BURST: Integer 1-10000 (default: 40)
//   - BOOKS_HTTP_CLIENT_TTL: Duration 1m-24h (default: 10m)
//   - BOOKS_TRUSTED_PROXIES: Comma-separated IPs or CIDRs (default: none)
func LoadConfigFromEnv(logger *slog.Logger, metrics *config.Metrics) (*Config, error) {
	cfg := DefaultConfig()
	env := config.NewEnv(logger, metrics)

	cfg.AllowedOrigins = env.List("BOOKS_CORS_ORIGINS")
	cfg.RateLimit = env.Float("BOOKS_HTTP_RATE_LIMIT", cfg.RateLimit, config.Between(0.0, 10000))
	cfg.RateBurst = env.Int("BOOKS_HTTP_RATE_BURST", cfg.RateBurst, config.Between(1, 10000))
	cfg.ClientTTL = env.Duration("BOOKS_HTTP_CLIENT_TTL", cfg.ClientTTL, config.Between(time.Minute, 24*time.Hour))
	env.Done()

	proxies, err := ParseTrustedProxies(env.String("BOOKS_TRUSTED_PROXIES", ""))
	if err != nil {
		return nil, fmt.Errorf("BOOKS_TRUSTED_PROXIES: %w", err)
	}
	cfg.TrustedProxies = proxies
	return &cfg, nil
}

// ParseTrustedProxies parses a comma-separated list of IPs and CIDR
// ranges. A single IP becomes a /32 or /128 prefix.
func ParseTrustedProxies(s string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, item := range splitList(s) {
		prefix, err := netip.ParsePrefix(item)
		if err != nil {
			ip, ipErr := netip.ParseAddr(item)
			if ipErr != nil {
				return nil, fmt.Errorf("invalid IP or CIDR %q", item)
			}
			prefix = netip.PrefixFrom(ip, ip.BitLen())
		}
		out = append(out, prefix.Masked())
	}
	return out, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
