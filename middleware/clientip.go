package middleware

import (
	"net/http"
	"strings"
)

// ClientIP extracts the caller's address from proxy headers, most trusted
// first. Cloudflare's header wins because it cannot be set by the client
// when traffic enters through Cloudflare; X-Forwarded-For is last because
// any hop can append to it.
func ClientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	return "unknown"
}
