package httpapi

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"gatescan-service/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// RateLimiter throttles scan submissions per device using a fixed one-minute
// window in Redis. The counter key carries the window number, so old windows
// expire on their own.
type RateLimiter struct {
	client    *redis.Client
	perMinute int
	log       logger.Logger
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(client *redis.Client, perMinute int, log logger.Logger) *RateLimiter {
	return &RateLimiter{
		client:    client,
		perMinute: perMinute,
		log:       log,
	}
}

// Middleware rejects requests over the per-device budget with 429. If Redis
// is unreachable the request is allowed: the ledger's idempotence makes
// over-admission safe, while a hard dependency on Redis would not be.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.client == nil || rl.perMinute <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		subject := GetDeviceID(r.Context())
		if subject == "" {
			if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
				subject = host
			} else {
				subject = r.RemoteAddr
			}
		}

		window := time.Now().Unix() / 60
		key := fmt.Sprintf("ratelimit:%s:%d", subject, window)

		count, err := rl.client.Incr(r.Context(), key).Result()
		if err != nil {
			rl.log.Warn("Rate limit check failed, allowing request", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		if count == 1 {
			rl.client.Expire(r.Context(), key, 2*time.Minute)
		}

		if count > int64(rl.perMinute) {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}
