package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/linguetta/linguetta-auth/quota"
)

type quotaKeyContextKey struct{}

// QuotaKeyFromContext returns the key a passed quota check was charged
// against, so a downstream failure handler can refund it with
// [quota.Checker.GiveBack].
func QuotaKeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(quotaKeyContextKey{}).(string)
	return key, ok
}

// QuotaGuard charges one quota unit per request against the authenticated
// user. Anonymous requests are charged against the client IP so the metered
// route stays usable for trial traffic without an open door. A quota store
// failure is a 500, not a free pass.
func QuotaGuard(checker *quota.Checker, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientIP(r)
			if id := IdentityFromContext(r.Context()); id != nil {
				key = id.UserID
			}

			res, err := checker.Check(r.Context(), key)
			if err != nil {
				logger.Error("quota check failed", zap.Error(err), zap.String("key", key))
				writeJSONError(w, http.StatusInternalServerError, "internal", "quota check failed")
				return
			}
			if !res.Allowed {
				writeJSONError(w, http.StatusTooManyRequests, "quota_exceeded", "usage quota exhausted")
				return
			}

			w.Header().Set("X-Quota-Remaining", strconv.Itoa(res.Remaining))

			ctx := context.WithValue(r.Context(), quotaKeyContextKey{}, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":  code,
		"error": message,
	})
}
