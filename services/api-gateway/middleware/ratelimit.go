package middleware

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/Dhairyashah5122/project-hotelrover/internal/redis"
	"github.com/Dhairyashah5122/project-hotelrover/pkg/telemetry"
)

// RateLimit throttles requests per client address. Run it after
// chimw.RealIP so proxied clients are told apart. When the limiter itself
// fails the request is let through.
func RateLimit(limiter redis.RateLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(max(1, int(limiter.Window().Seconds())))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "client:" + clientHost(r.RemoteAddr)
			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Warn("rate limiter unavailable, allowing request",
					slog.String("key", key),
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				telemetry.APIRateLimitedTotal.Inc()
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", retryAfter)
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error": "too many requests for " + key,
					"code":  "RateLimited",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientHost strips the port so every connection from one host shares a bucket.
func clientHost(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
