package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/linguetta/linguetta-auth/ratelimit"
)

func TestThrottleLimitsPerIP(t *testing.T) {
	limiter := ratelimit.New(2, time.Minute)
	handler := Throttle(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	send := func(ip string) int {
		r := httptest.NewRequest("POST", "/auth/login", nil)
		r.Header.Set("X-Real-IP", ip)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("1.2.3.4"))
	assert.Equal(t, http.StatusOK, send("1.2.3.4"))
	assert.Equal(t, http.StatusTooManyRequests, send("1.2.3.4"))

	// A different address has its own bucket.
	assert.Equal(t, http.StatusOK, send("5.6.7.8"))
}
