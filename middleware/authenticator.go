package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/linguetta/linguetta-auth/jwt"
)

// Identity is the resolved caller injected into the request context.
type Identity struct {
	UserID string
	Email  string
}

// SessionResolver maps a legacy session cookie to the owning email.
type SessionResolver interface {
	Resolve(ctx context.Context, sessionID string) (string, error)
}

// UserLookup confirms an authenticated principal still maps to a live
// account row. A token or session whose user has been deleted must not
// authenticate.
type UserLookup interface {
	ByEmail(ctx context.Context, email string) (*Identity, error)
	ByID(ctx context.Context, id string) (*Identity, error)
}

// TokenVerifier validates an access token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*jwt.Claims, error)
}

type identityContextKey struct{}

// IdentityFromContext returns the identity resolved by [Authenticator], or
// nil when the request was anonymous.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey{}).(*Identity)
	return id
}

// Authenticator resolves the caller's identity and stores it in the request
// context. Resolution is best effort: a missing, invalid, or orphaned
// credential leaves the request anonymous rather than rejecting it, so the
// same middleware serves public and protected routes. Use [Require] to
// reject anonymous requests on protected routes.
//
// A legacy session cookie is consulted before the Authorization header, so
// clients mid-migration keep their session behavior.
func Authenticator(cookieName string, sessions SessionResolver, users UserLookup, verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := resolveIdentity(r, cookieName, sessions, users, verifier); id != nil {
				ctx := context.WithValue(r.Context(), identityContextKey{}, id)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func resolveIdentity(r *http.Request, cookieName string, sessions SessionResolver, users UserLookup, verifier TokenVerifier) *Identity {
	if sessions != nil {
		if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
			if email, err := sessions.Resolve(r.Context(), cookie.Value); err == nil {
				if id, err := users.ByEmail(r.Context(), email); err == nil {
					return id
				}
			}
		}
	}

	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		return nil
	}

	claims, err := verifier.Verify(token)
	if err != nil || claims.Subject == "" || claims.Email == "" {
		return nil
	}

	id, err := users.ByID(r.Context(), claims.Subject)
	if err != nil {
		return nil
	}
	return id
}

// Require rejects requests that reached the handler without a resolved
// identity. Must sit after [Authenticator] in the chain.
func Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IdentityFromContext(r.Context()) == nil {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
