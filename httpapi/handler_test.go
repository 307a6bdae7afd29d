package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	auth "github.com/linguetta/linguetta-auth"
	"github.com/linguetta/linguetta-auth/googleid"
	"github.com/linguetta/linguetta-auth/httpapi"
	"github.com/linguetta/linguetta-auth/jwt"
	"github.com/linguetta/linguetta-auth/store/memory"
)

// fakeVerifier accepts tokens of the form "ok:<email>".
type fakeVerifier struct{}

func (fakeVerifier) Verify(_ context.Context, token string) (*googleid.Profile, error) {
	const prefix = "ok:"
	if len(token) <= len(prefix) || token[:len(prefix)] != prefix {
		return nil, errors.New("bad token")
	}
	return &googleid.Profile{Email: token[len(prefix):], Language: "de"}, nil
}

type testServer struct {
	handler *httpapi.Handler
	engine  *auth.Engine
	clock   *clockwork.FakeClock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	manager, err := jwt.NewManager(jwt.Config{
		Secret: []byte("test-secret"),
		TTL:    time.Hour,
		Issuer: "linguetta",
	}, clock)
	require.NoError(t, err)

	engine, err := auth.New(auth.Config{BcryptCost: bcrypt.MinCost}, auth.Deps{
		Users:  memory.NewUserStore(),
		Tokens: memory.NewRefreshTokenStore(),
		Resets: memory.NewPasswordResetStore(),
		JWT:    manager,
		Clock:  clock,
	})
	require.NoError(t, err)

	handler := httpapi.NewHandler(engine, fakeVerifier{}, httpapi.HandlerConfig{RefreshTokenDays: 30}, nil)
	return &testServer{handler: handler, engine: engine, clock: clock}
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	r := httptest.NewRequest(method, path, bytes.NewReader(data))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func refreshCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == httpapi.RefreshCookieName {
			return c
		}
	}
	return nil
}

func (s *testServer) signupWeb(t *testing.T, email, password string) (*httptest.ResponseRecorder, *http.Cookie) {
	t.Helper()
	w := httptest.NewRecorder()
	s.handler.Signup(w, jsonRequest(t, "POST", "/auth/signup", map[string]string{
		"email": email, "password": password, "language": "es",
	}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cookie := refreshCookie(t, w)
	require.NotNil(t, cookie)
	return w, cookie
}

func TestSignupWebDeliversCookie(t *testing.T) {
	s := newTestServer(t)
	w, cookie := s.signupWeb(t, "mina@example.com", "password123")

	body := decodeBody(t, w)
	assert.NotEmpty(t, body["token"])
	assert.Nil(t, body["refreshToken"], "web clients must not see the refresh token in the body")
	assert.Equal(t, float64(3600), body["expiresIn"])

	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, int((30 * 24 * time.Hour).Seconds()), cookie.MaxAge)
	assert.NotEmpty(t, cookie.Value)
}

func TestSignupNativeDeliversBody(t *testing.T) {
	s := newTestServer(t)

	r := jsonRequest(t, "POST", "/auth/signup", map[string]string{
		"email": "mina@example.com", "password": "password123",
	})
	r.Header.Set("x-client", "native")

	w := httptest.NewRecorder()
	s.handler.Signup(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.NotEmpty(t, body["accessToken"])
	assert.NotEmpty(t, body["refreshToken"])
	assert.Nil(t, refreshCookie(t, w))
}

func TestLoginWrongPassword(t *testing.T) {
	s := newTestServer(t)
	s.signupWeb(t, "mina@example.com", "password123")

	w := httptest.NewRecorder()
	s.handler.Login(w, jsonRequest(t, "POST", "/auth/login", map[string]string{
		"email": "mina@example.com", "password": "wrong-password",
	}))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "incorrect_password", decodeBody(t, w)["code"])
}

func TestRefreshRotatesCookieToken(t *testing.T) {
	s := newTestServer(t)
	_, cookie := s.signupWeb(t, "mina@example.com", "password123")

	r := jsonRequest(t, "POST", "/auth/refresh", map[string]string{})
	r.AddCookie(cookie)
	w := httptest.NewRecorder()
	s.handler.Refresh(w, r)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	rotated := refreshCookie(t, w)
	require.NotNil(t, rotated)
	assert.NotEqual(t, cookie.Value, rotated.Value)

	// The consumed token is dead.
	r = jsonRequest(t, "POST", "/auth/refresh", map[string]string{})
	r.AddCookie(cookie)
	w = httptest.NewRecorder()
	s.handler.Refresh(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_or_expired_token", decodeBody(t, w)["code"])
}

func TestRefreshFromNativeBody(t *testing.T) {
	s := newTestServer(t)

	r := jsonRequest(t, "POST", "/auth/signup", map[string]string{
		"email": "mina@example.com", "password": "password123",
	})
	r.Header.Set("x-client", "native")
	w := httptest.NewRecorder()
	s.handler.Signup(w, r)
	require.Equal(t, http.StatusOK, w.Code)
	refresh := decodeBody(t, w)["refreshToken"].(string)

	r = jsonRequest(t, "POST", "/auth/refresh", map[string]string{"refreshToken": refresh})
	r.Header.Set("x-client", "native")
	w = httptest.NewRecorder()
	s.handler.Refresh(w, r)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decodeBody(t, w)["refreshToken"])
}

func TestRefreshWithoutToken(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	s.handler.Refresh(w, jsonRequest(t, "POST", "/auth/refresh", map[string]string{}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "missing_token", decodeBody(t, w)["code"])
}

func TestLogoutRevokesAndClearsCookie(t *testing.T) {
	s := newTestServer(t)
	w, cookie := s.signupWeb(t, "mina@example.com", "password123")
	access := decodeBody(t, w)["token"].(string)

	r := jsonRequest(t, "POST", "/auth/logout", map[string]string{})
	r.Header.Set("Authorization", "Bearer "+access)
	r.AddCookie(cookie)
	w = httptest.NewRecorder()
	s.handler.Logout(w, r)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	cleared := refreshCookie(t, w)
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)
	assert.Empty(t, cleared.Value)

	// The revoked token no longer rotates.
	r = jsonRequest(t, "POST", "/auth/refresh", map[string]string{})
	r.AddCookie(cookie)
	w = httptest.NewRecorder()
	s.handler.Refresh(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutUndecodableAccessTokenIsUnauthorized(t *testing.T) {
	s := newTestServer(t)
	_, cookie := s.signupWeb(t, "mina@example.com", "password123")

	r := jsonRequest(t, "POST", "/auth/logout", map[string]string{})
	r.Header.Set("Authorization", "Bearer not-a-jwt")
	r.AddCookie(cookie)
	w := httptest.NewRecorder()
	s.handler.Logout(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_access_token", decodeBody(t, w)["code"])
}

func TestGoogleSignInNewAccount(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	s.handler.GoogleSignIn(w, jsonRequest(t, "POST", "/auth/google", map[string]string{
		"idToken": "ok:mina@example.com",
	}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "mina@example.com", user["email"])
}

func TestGoogleSignInNeedsLinking(t *testing.T) {
	s := newTestServer(t)
	s.signupWeb(t, "mina@example.com", "password123")

	w := httptest.NewRecorder()
	s.handler.GoogleSignIn(w, jsonRequest(t, "POST", "/auth/google", map[string]string{
		"idToken": "ok:mina@example.com",
	}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "need_google_linking", decodeBody(t, w)["code"])
}

func TestGoogleSignInBadIDToken(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	s.handler.GoogleSignIn(w, jsonRequest(t, "POST", "/auth/google", map[string]string{
		"idToken": "forged",
	}))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_id_token", decodeBody(t, w)["code"])
}

func TestGoogleLinkFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)
	s.signupWeb(t, "mina@example.com", "password123")

	w := httptest.NewRecorder()
	s.handler.GoogleLinkRequest(w, jsonRequest(t, "POST", "/auth/google/link", map[string]string{
		"email": "mina@example.com", "password": "password123",
	}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	s.clock.Advance(5 * time.Minute)

	w = httptest.NewRecorder()
	s.handler.GoogleLinkConfirm(w, jsonRequest(t, "POST", "/auth/google/link/confirm", map[string]string{
		"idToken": "ok:mina@example.com",
	}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	user := decodeBody(t, w)["user"].(map[string]any)
	assert.Contains(t, user["providers"], "google")
}

func TestForgotPasswordDoesNotRevealAccounts(t *testing.T) {
	s := newTestServer(t)
	s.signupWeb(t, "mina@example.com", "password123")

	known := httptest.NewRecorder()
	s.handler.ForgotPassword(known, jsonRequest(t, "POST", "/auth/forgot-password", map[string]string{
		"email": "mina@example.com",
	}))
	unknown := httptest.NewRecorder()
	s.handler.ForgotPassword(unknown, jsonRequest(t, "POST", "/auth/forgot-password", map[string]string{
		"email": "nobody@example.com",
	}))

	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, http.StatusOK, unknown.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())
}

func TestResetPasswordOverHTTP(t *testing.T) {
	s := newTestServer(t)
	s.signupWeb(t, "mina@example.com", "password123")

	token, err := s.engine.RequestPasswordReset(context.Background(), "mina@example.com")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	s.handler.ResetPassword(w, jsonRequest(t, "POST", "/auth/reset-password", map[string]string{
		"token": token, "newPassword": "newpassword456",
	}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = httptest.NewRecorder()
	s.handler.Login(w, jsonRequest(t, "POST", "/auth/login", map[string]string{
		"email": "mina@example.com", "password": "newpassword456",
	}))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBadJSONBody(t *testing.T) {
	s := newTestServer(t)

	r := httptest.NewRequest("POST", "/auth/signup", bytes.NewReader([]byte("{")))
	w := httptest.NewRecorder()
	s.handler.Signup(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "bad_json", decodeBody(t, w)["code"])
}
