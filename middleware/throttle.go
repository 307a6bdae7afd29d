package middleware

import (
	"net/http"

	"github.com/linguetta/linguetta-auth/ratelimit"
)

// Throttle applies an in-process per-IP request limit. Intended for
// credential endpoints where a burst of attempts from one address is
// abuse regardless of outcome.
func Throttle(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(ClientIP(r)) {
				writeJSONError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
