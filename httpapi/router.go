package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/linguetta/linguetta-auth/middleware"
	"github.com/linguetta/linguetta-auth/quota"
	"github.com/linguetta/linguetta-auth/ratelimit"
	"go.uber.org/zap"
)

// RouterDeps are the collaborators mounted onto the router. Throttle guards
// the credential endpoints. Metered is the application's AI-backed handler
// tree, mounted under /api behind the authenticator and quota guard. Any
// nil dependency simply leaves its routes unguarded or unmounted.
type RouterDeps struct {
	Handler       *Handler
	Authenticator func(http.Handler) http.Handler
	Throttle      *ratelimit.Limiter
	Quota         *quota.Checker
	Metered       http.Handler
	Logger        *zap.Logger
}

// NewRouter assembles the HTTP surface: public auth flows, throttled
// credential endpoints, and an example metered route behind the
// authenticator and quota guard.
func NewRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	if deps.Authenticator != nil {
		r.Use(deps.Authenticator)
	}

	h := deps.Handler

	r.Route("/auth", func(r chi.Router) {
		if deps.Throttle != nil {
			r.Use(middleware.Throttle(deps.Throttle))
		}

		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)
		r.Post("/logout", h.Logout)
		r.Post("/google", h.GoogleSignIn)
		r.Post("/google/link", h.GoogleLinkRequest)
		r.Post("/google/link/confirm", h.GoogleLinkConfirm)
		r.Post("/forgot-password", h.ForgotPassword)
		r.Post("/reset-password", h.ResetPassword)
	})

	if deps.Metered != nil {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Require)
			if deps.Quota != nil {
				r.Use(middleware.QuotaGuard(deps.Quota, deps.Logger))
			}
			r.Mount("/api", deps.Metered)
		})
	}

	return r
}
