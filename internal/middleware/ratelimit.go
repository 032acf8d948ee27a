package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/ristora/fronthouse/internal/logging"
)

// RateLimiter applies per-identity token buckets. Authenticated
// requests are keyed by user ID, anonymous ones by client IP.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
	logger   *logging.Logger
}

// NewRateLimiter creates a rate limiter.
func NewRateLimiter(requestsPerSecond, burst int, logger *logging.Logger) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
		logger:   logger,
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = limiter
	}
	return limiter
}

// Handler returns the rate limiting middleware handler.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := ""
		if user := UserFromContext(r.Context()); user != nil {
			key = user.ID
		}
		if key == "" {
			if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
				key = host
			} else {
				key = r.RemoteAddr
			}
		}

		if !rl.limiter(key).Allow() {
			rl.logger.LogSecurityEvent(r.Context(), "rate_limit_exceeded", map[string]any{
				"key":  key,
				"path": r.URL.Path,
			})
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "too many requests"})
			return
		}

		next.ServeHTTP(w, r)
	})
}
