// Package httpapi exposes the authentication flows over HTTP/JSON.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	auth "github.com/linguetta/linguetta-auth"
	"github.com/linguetta/linguetta-auth/googleid"
)

// Handler holds the HTTP-facing collaborators. Construct with NewHandler.
type Handler struct {
	engine        *auth.Engine
	google        googleid.Verifier
	logger        *zap.Logger
	secureCookies bool
	refreshDays   int
}

// HandlerConfig tunes cookie behavior. SecureCookies should be true
// everywhere except local development over plain HTTP.
type HandlerConfig struct {
	SecureCookies    bool
	RefreshTokenDays int
}

// NewHandler creates the HTTP handler set over an engine. google may be nil
// when the Google flows are not mounted.
func NewHandler(engine *auth.Engine, google googleid.Verifier, cfg HandlerConfig, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	days := cfg.RefreshTokenDays
	if days <= 0 {
		days = 30
	}
	return &Handler{
		engine:        engine,
		google:        google,
		logger:        logger,
		secureCookies: cfg.SecureCookies,
		refreshDays:   days,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Language string `json:"language,omitempty"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type logoutRequest struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type googleRequest struct {
	IDToken string `json:"idToken"`
}

type forgotRequest struct {
	Email string `json:"email"`
}

type resetRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func decode(r *http.Request, v any) bool {
	return json.NewDecoder(r.Body).Decode(v) == nil
}

// Signup registers a password account and issues the initial pair.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decode(r, &req) {
		writeError(w, http.StatusBadRequest, "bad_json", "request body is not valid JSON")
		return
	}

	user, err := h.engine.Signup(r.Context(), req.Email, req.Password, req.Language)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.issueAndDeliver(w, r, user, "")
}

// Login authorizes credentials and issues a pair. A refresh cookie already
// on the request is superseded so a re-login does not strand the old row.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decode(r, &req) {
		writeError(w, http.StatusBadRequest, "bad_json", "request body is not valid JSON")
		return
	}

	user, err := h.engine.Authorize(r.Context(), req.Email, req.Password)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.issueAndDeliver(w, r, user, refreshTokenFrom(r, ""))
}

// Refresh rotates the presented refresh token.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	decode(r, &req) // body is optional for cookie clients

	pair, err := h.engine.Rotate(r.Context(), refreshTokenFrom(r, req.RefreshToken))
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.deliverTokens(w, r, pair, nil)
}

// Logout revokes the refresh token and clears the web cookie. The cookie is
// cleared even when revocation fails so the browser does not keep replaying
// a dead credential.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	decode(r, &req)

	access := req.AccessToken
	if access == "" {
		if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
			access = strings.TrimPrefix(header, "Bearer ")
		}
	}
	refresh := refreshTokenFrom(r, req.RefreshToken)

	err := h.engine.Logout(r.Context(), access, refresh)
	h.clearRefreshCookie(w)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// GoogleSignIn verifies the ID token and runs the reconciliation state
// machine. A need_google_linking response carries no tokens and mutates
// nothing.
func (h *Handler) GoogleSignIn(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.verifiedProfile(w, r)
	if !ok {
		return
	}

	user, err := h.engine.GoogleSignIn(r.Context(), *profile)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.issueAndDeliver(w, r, user, refreshTokenFrom(r, ""))
}

// GoogleLinkRequest opens the linking window after password confirmation.
func (h *Handler) GoogleLinkRequest(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decode(r, &req) {
		writeError(w, http.StatusBadRequest, "bad_json", "request body is not valid JSON")
		return
	}

	if err := h.engine.RequestGoogleLink(r.Context(), req.Email, req.Password); err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "linking window open"})
}

// GoogleLinkConfirm completes the explicit linking flow and issues a pair.
func (h *Handler) GoogleLinkConfirm(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.verifiedProfile(w, r)
	if !ok {
		return
	}

	user, err := h.engine.ConfirmGoogleLink(r.Context(), *profile)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.issueAndDeliver(w, r, user, refreshTokenFrom(r, ""))
}

// ForgotPassword opens a reset ticket. The response is identical whether or
// not the account exists.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotRequest
	if !decode(r, &req) {
		writeError(w, http.StatusBadRequest, "bad_json", "request body is not valid JSON")
		return
	}

	token, err := h.engine.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if token != "" {
		// TODO: hand the token to the mailer once the notification service
		// exposes its send endpoint.
		h.logger.Info("password reset requested", zap.String("email", req.Email))
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "if the account exists, a reset email was sent"})
}

// ResetPassword consumes a reset ticket and sets the new password.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if !decode(r, &req) {
		writeError(w, http.StatusBadRequest, "bad_json", "request body is not valid JSON")
		return
	}

	if err := h.engine.ConfirmPasswordReset(r.Context(), req.Token, req.NewPassword); err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}

func (h *Handler) verifiedProfile(w http.ResponseWriter, r *http.Request) (*auth.GoogleProfile, bool) {
	if h.google == nil {
		writeError(w, http.StatusNotImplemented, "google_disabled", "google sign-in is not configured")
		return nil, false
	}

	var req googleRequest
	if !decode(r, &req) || req.IDToken == "" {
		writeError(w, http.StatusBadRequest, "bad_json", "idToken is required")
		return nil, false
	}

	profile, err := h.google.Verify(r.Context(), req.IDToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_id_token", "google token verification failed")
		return nil, false
	}

	return &auth.GoogleProfile{Email: profile.Email, Language: profile.Language}, true
}

func (h *Handler) issueAndDeliver(w http.ResponseWriter, r *http.Request, user *auth.UserProjection, supersede string) {
	pair, err := h.engine.Issue(r.Context(), auth.IssueInput{
		UserID:    user.ID,
		Email:     user.Email,
		Language:  user.Language,
		Providers: user.Providers,
		Supersede: supersede,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.deliverTokens(w, r, pair, user)
}
