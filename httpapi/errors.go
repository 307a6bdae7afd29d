package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	auth "github.com/linguetta/linguetta-auth"
)

// apiError is the wire shape of every failure response. code is stable and
// machine-checkable; error is a human-readable message and may change.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiError{Code: code, Message: message})
}

// writeEngineError maps engine sentinels onto the HTTP error taxonomy.
// Unrecognized errors become opaque 500s so internals never leak.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		writeError(w, http.StatusBadRequest, "missing_token", "refresh token is required")
	case errors.Is(err, auth.ErrMissingTokens):
		writeError(w, http.StatusBadRequest, "missing_tokens", "access and refresh tokens are required")
	case errors.Is(err, auth.ErrInvalidAccessToken):
		writeError(w, http.StatusUnauthorized, "invalid_access_token", "access token could not be decoded")
	case errors.Is(err, auth.ErrInvalidOrExpiredToken):
		writeError(w, http.StatusUnauthorized, "invalid_or_expired_token", "refresh token is invalid or expired")
	case errors.Is(err, auth.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user_not_found", "account no longer exists")
	case errors.Is(err, auth.ErrMissingCredentials):
		writeError(w, http.StatusBadRequest, "missing_credentials", "email and password are required")
	case errors.Is(err, auth.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", "email or password is malformed")
	case errors.Is(err, auth.ErrNoAccountFound):
		writeError(w, http.StatusNotFound, "no_account", "no account exists for this email")
	case errors.Is(err, auth.ErrNoPasswordSet):
		writeError(w, http.StatusBadRequest, "no_password", "this account has no password, sign in with your provider")
	case errors.Is(err, auth.ErrIncorrectPassword):
		writeError(w, http.StatusUnauthorized, "incorrect_password", "password is incorrect")
	case errors.Is(err, auth.ErrEmailTaken):
		writeError(w, http.StatusConflict, "email_taken", "an account with this email already exists")
	case errors.Is(err, auth.ErrNeedGoogleLinking):
		writeError(w, http.StatusBadRequest, "need_google_linking", "confirm your password to link this Google account")
	case errors.Is(err, auth.ErrLinkUpdateFailed):
		writeError(w, http.StatusInternalServerError, "link_update_failed", "linking could not be saved, try again")
	case errors.Is(err, auth.ErrResetInvalid):
		writeError(w, http.StatusBadRequest, "reset_invalid", "reset link is invalid or expired")
	default:
		writeError(w, http.StatusInternalServerError, "internal", "something went wrong")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
