package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/ukydev/transportease/internal/auth"
	"github.com/ukydev/transportease/internal/metrics"
	"github.com/ukydev/transportease/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	ClaimsContextKey    contextKey = "claims"
	RequestIDContextKey contextKey = "request_id"
)

// Identify attaches the claims of a bearer token to the request context so
// access logs can name the caller. It never rejects a request: the rental
// API verifies tokens, the site only reads them.
func Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if shouldSkipIdentify(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, err := auth.ExtractTokenFromHeader(r.Header.Get("Authorization"))
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		if auth.CheckExpiry(token, time.Now()) != nil {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := auth.ParseClaims(token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetClaimsFromContext extracts token claims from request context
func GetClaimsFromContext(ctx context.Context) (*models.Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*models.Claims)
	return claims, ok
}

// shouldSkipIdentify determines if token inspection should be skipped for a given path
func shouldSkipIdentify(path string) bool {
	skipPaths := []string{
		"/healthz",
		"/metrics",
	}

	for _, skipPath := range skipPaths {
		if strings.HasPrefix(path, skipPath) {
			return true
		}
	}
	return false
}

// RateLimiter limits requests per client IP over a sliding window.
type RateLimiter struct {
	requests map[string][]time.Time // IP -> timestamps
	trusted  map[string]bool
	mu       sync.Mutex
	now      func() time.Time
}

// NewRateLimiter creates a new rate limiter. Forwarding headers are only
// honored on requests whose peer address is one of trustedProxies.
func NewRateLimiter(trustedProxies ...string) *RateLimiter {
	trusted := make(map[string]bool, len(trustedProxies))
	for _, p := range trustedProxies {
		if p = strings.TrimSpace(p); p != "" {
			trusted[p] = true
		}
	}
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		trusted:  trusted,
		now:      time.Now,
	}
}

// allow records a request from ip and reports whether it fits the window.
func (l *RateLimiter) allow(ip string, maxRequests int, window time.Duration) bool {
	now := l.now()
	windowStart := now.Add(-window)

	l.mu.Lock()
	defer l.mu.Unlock()

	valid := l.requests[ip][:0]
	for _, ts := range l.requests[ip] {
		if ts.After(windowStart) {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= maxRequests {
		l.requests[ip] = valid
		return false
	}
	l.requests[ip] = append(valid, now)
	return true
}

// Sweep drops clients with no requests inside window.
func (l *RateLimiter) Sweep(window time.Duration) {
	windowStart := l.now().Add(-window)

	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, timestamps := range l.requests {
		if len(timestamps) == 0 || !timestamps[len(timestamps)-1].After(windowStart) {
			delete(l.requests, ip)
		}
	}
}

// RateLimit applies rate limiting based on IP address
func (l *RateLimiter) RateLimit(maxRequests int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.allow(l.clientIP(r), maxRequests, window) {
				metrics.RateLimitedTotal.Inc()
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(models.ErrorResponse{Message: "Rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP keys the limiter. The forwarded address is used only when the
// peer is a trusted proxy; anyone else could rotate it per request.
func (l *RateLimiter) clientIP(r *http.Request) string {
	peer := remoteHost(r)
	if !l.trusted[peer] {
		return peer
	}
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		if first := strings.TrimSpace(strings.Split(ip, ",")[0]); first != "" {
			return first
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return peer
}

// remoteHost returns the host part of the connection's peer address.
func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
