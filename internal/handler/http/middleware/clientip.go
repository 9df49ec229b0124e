package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// IPExtractor returns the client address of a request.
type IPExtractor interface {
	ExtractIP(r *http.Request) (string, error)
}

// RemoteAddrExtractor uses the TCP peer address. Headers are ignored, so
// clients cannot choose their own address.
type RemoteAddrExtractor struct{}

// ExtractIP strips the port from r.RemoteAddr.
//
//   - "192.168.1.1:54321" → "192.168.1.1"
//   - "[2001:db8::1]:8080" → "2001:db8::1"
//   - "127.0.0.1" → "127.0.0.1"
func (RemoteAddrExtractor) ExtractIP(r *http.Request) (string, error) {
	return addrIP(r.RemoteAddr)
}

// TrustedProxyExtractor believes X-Forwarded-For, then X-Real-IP, but only
// when the peer is one of the trusted proxies. Any other peer gets its
// RemoteAddr.
type TrustedProxyExtractor struct {
	trusted []netip.Prefix
	logger  *slog.Logger
}

// NewTrustedProxyExtractor creates an extractor trusting the given ranges.
func NewTrustedProxyExtractor(trusted []netip.Prefix, logger *slog.Logger) *TrustedProxyExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &TrustedProxyExtractor{trusted: trusted, logger: logger}
}

// IsTrusted reports whether remoteAddr belongs to a trusted proxy.
func (e *TrustedProxyExtractor) IsTrusted(remoteAddr string) bool {
	ip, err := addrIP(remoteAddr)
	if err != nil {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range e.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

func (e *TrustedProxyExtractor) ExtractIP(r *http.Request) (string, error) {
	if !e.IsTrusted(r.RemoteAddr) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			e.logger.Warn("untrusted peer sent X-Forwarded-For",
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("x_forwarded_for", xff))
		}
		return addrIP(r.RemoteAddr)
	}

	if ip := firstIP(r.Header.Get("X-Forwarded-For")); ip != "" {
		return ip, nil
	}
	if ip := firstIP(r.Header.Get("X-Real-IP")); ip != "" {
		return ip, nil
	}
	return addrIP(r.RemoteAddr)
}

// addrIP extracts the IP from "host:port" or a bare IP.
func addrIP(addr string) (string, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = strings.Trim(addr, "[]")
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return "", fmt.Errorf("invalid address format: %s", addr)
	}
	return ip.Unmap().String(), nil
}

// firstIP returns the first entry of a comma-separated header when it is a
// valid IP, and "" otherwise.
func firstIP(header string) string {
	first, _, _ := strings.Cut(header, ",")
	ip, err := netip.ParseAddr(strings.TrimSpace(first))
	if err != nil {
		return ""
	}
	return ip.Unmap().String()
}
