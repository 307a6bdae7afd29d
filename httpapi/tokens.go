package httpapi

import (
	"net/http"
	"time"

	auth "github.com/linguetta/linguetta-auth"
)

// RefreshCookieName is the cookie carrying the refresh token for web
// clients.
const RefreshCookieName = "refreshToken"

// clientHeader marks native apps, which cannot use HttpOnly cookies and
// receive both tokens in the response body instead.
const (
	clientHeader = "x-client"
	clientNative = "native"
)

func isNativeClient(r *http.Request) bool {
	return r.Header.Get(clientHeader) == clientNative
}

// webTokenResponse is the success body for browser clients: the refresh
// token travels in the cookie, and the access token is keyed "token".
type webTokenResponse struct {
	Token     string               `json:"token"`
	ExpiresIn int                  `json:"expiresIn"`
	User      *auth.UserProjection `json:"user,omitempty"`
}

// nativeTokenResponse is the success body for native clients, which cannot
// hold HttpOnly cookies and receive both tokens directly.
type nativeTokenResponse struct {
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
	ExpiresIn    int                  `json:"expiresIn"`
	User         *auth.UserProjection `json:"user,omitempty"`
}

// deliverTokens writes a minted pair to the client. Web clients get the
// refresh token in an HttpOnly cookie scoped to the whole API; native
// clients get it in the body.
func (h *Handler) deliverTokens(w http.ResponseWriter, r *http.Request, pair *auth.TokenPair, user *auth.UserProjection) {
	if isNativeClient(r) {
		writeJSON(w, http.StatusOK, nativeTokenResponse{
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
			ExpiresIn:    pair.ExpiresIn,
			User:         user,
		})
		return
	}

	http.SetCookie(w, h.refreshCookie(pair.RefreshToken, h.refreshCookieTTL()))
	writeJSON(w, http.StatusOK, webTokenResponse{
		Token:     pair.AccessToken,
		ExpiresIn: pair.ExpiresIn,
		User:      user,
	})
}

func (h *Handler) refreshCookie(value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     RefreshCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	}
}

// clearRefreshCookie expires the cookie on the client.
func (h *Handler) clearRefreshCookie(w http.ResponseWriter) {
	c := h.refreshCookie("", 0)
	c.MaxAge = -1
	http.SetCookie(w, c)
}

func (h *Handler) refreshCookieTTL() time.Duration {
	return time.Duration(h.refreshDays) * 24 * time.Hour
}

// refreshTokenFrom prefers the web cookie and falls back to the request
// body so both client kinds hit the same endpoint.
func refreshTokenFrom(r *http.Request, body string) string {
	if c, err := r.Cookie(RefreshCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return body
}
