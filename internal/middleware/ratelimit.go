package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/shoply/shoply/internal/cache"
)

// AuthRateLimiter checks the credential-endpoint rate limit for a client IP.
// *cache.Cache satisfies this.
type AuthRateLimiter interface {
	CheckAuthRateLimit(ctx context.Context, ip string, ratePerSecond, burst int) (*cache.RateLimitResult, error)
}

// RateLimitConfig holds configuration for credential-endpoint rate limiting.
type RateLimitConfig struct {
	Logger  *slog.Logger
	Limiter AuthRateLimiter
	Enabled bool
	RPS     int
	Burst   int
}

// RateLimitAuth returns middleware that rate limits credential endpoints
// (login and registration) per client IP. When the limiter itself fails, the
// request is let through: a Redis outage must not lock everyone out, it only
// stops damping brute-force attempts. This is the single fail-open point;
// the limiter reports errors instead of deciding.
func RateLimitAuth(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !cfg.Enabled {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)

			result, err := cfg.Limiter.CheckAuthRateLimit(r.Context(), ip, cfg.RPS, cfg.Burst)
			if err != nil {
				cfg.Logger.Warn("rate limiter unavailable, allowing request",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				next.ServeHTTP(w, r)
				return
			}

			if !result.Allowed {
				cfg.Logger.Warn("auth rate limit exceeded",
					slog.String("ip", ip),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(result.RetryAfter.Seconds())))
				writeError(w, http.StatusTooManyRequests, "Too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP extracts the client address without the port.
// chi's RealIP middleware has already folded X-Forwarded-For into RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
