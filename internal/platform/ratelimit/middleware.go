// Package ratelimit throttles clients by IP with an in-process sliding
// window.
package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	dErrors "checkout/pkg/domain-errors"
	"checkout/pkg/platform/httputil"
)

// Middleware rejects clients that exceed the window's limit with 429.
type Middleware struct {
	limiter        *SlidingWindow
	logger         *slog.Logger
	trustForwarded bool
}

type Option func(*Middleware)

// WithTrustedForwardedFor keys clients by the first X-Forwarded-For hop.
// Enable it only behind a proxy that overwrites the header, since clients
// can otherwise pick a fresh key per request.
func WithTrustedForwardedFor(trust bool) Option {
	return func(m *Middleware) {
		m.trustForwarded = trust
	}
}

func NewMiddleware(limiter *SlidingWindow, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{limiter: limiter, logger: logger}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIP(r, m.trustForwarded)
		result := m.limiter.Allow(ip)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			retryAfter := max(int(result.ResetAt.Sub(m.limiter.now()).Seconds()), 1)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			m.logger.WarnContext(r.Context(), "rate limit exceeded",
				"path", r.URL.Path,
				"ip_prefix", anonymize(ip),
			)
			httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "too many requests, retry later"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClientIP returns the peer address, or the first X-Forwarded-For hop when
// trustForwarded is set and the header is present.
func ClientIP(r *http.Request, trustForwarded bool) string {
	if fwd := r.Header.Get("X-Forwarded-For"); trustForwarded && fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// anonymize keeps the network part of an address for logs.
func anonymize(ip string) string {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "invalid"
	}
	if v4 := parsed.To4(); v4 != nil {
		return v4.Mask(net.CIDRMask(24, 32)).String()
	}
	return parsed.Mask(net.CIDRMask(48, 128)).String()
}
