package middleware

import (
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

const (
	rateLimiterEntries = 4096
	rateLimiterIdle    = 10 * time.Minute
)

// RateLimiter hands out one token bucket per client IP. Buckets idle for ten
// minutes are forgotten.
type RateLimiter struct {
	limiters *expirable.LRU[string, *rate.Limiter]
	rps      rate.Limit
	burst    int
}

// NewRateLimiter allows rps requests per second per IP with the given burst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters: expirable.NewLRU[string, *rate.Limiter](rateLimiterEntries, nil, rateLimiterIdle),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

// Allow reports whether a request from ip fits its bucket.
func (rl *RateLimiter) Allow(ip string) bool {
	l, ok := rl.limiters.Get(ip)
	if !ok {
		l = rate.NewLimiter(rl.rps, rl.burst)
	}
	// Re-adding refreshes the idle timer.
	rl.limiters.Add(ip, l)
	return l.Allow()
}

// RateLimit rejects requests over the per-IP rate with 429.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(rps, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(clientIP(r)) {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP prefers X-Real-Ip, which chi's RealIP middleware sets.
func clientIP(r *http.Request) string {
	if xri := r.Header.Get("X-Real-Ip"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
