package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/linguetta/linguetta-auth"
)

func TestAuthorizeSuccess(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "mina@example.com", "password123")

	user, err := env.engine.Authorize(context.Background(), "mina@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "mina@example.com", user.Email)
	assert.Equal(t, "es", user.Language)
	assert.Equal(t, []string{auth.ProviderCredentials}, user.Providers)
}

func TestAuthorizeSanitizesEmail(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "Mina@Example.com", "password123")

	user, err := env.engine.Authorize(context.Background(), "  <b>MINA@example.com</b> ", "password123")
	require.NoError(t, err)
	assert.Equal(t, "mina@example.com", user.Email)
}

func TestAuthorizeWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "mina@example.com", "password123")

	_, err := env.engine.Authorize(context.Background(), "mina@example.com", "wrong-password")
	assert.ErrorIs(t, err, auth.ErrIncorrectPassword)
}

func TestAuthorizeUnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.engine.Authorize(context.Background(), "nobody@example.com", "password123")
	assert.ErrorIs(t, err, auth.ErrNoAccountFound)
}

func TestAuthorizeGoogleOnlyAccount(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.engine.GoogleSignIn(context.Background(), auth.GoogleProfile{Email: "mina@example.com"})
	require.NoError(t, err)

	_, err = env.engine.Authorize(context.Background(), "mina@example.com", "password123")
	assert.ErrorIs(t, err, auth.ErrNoPasswordSet)
}

func TestAuthorizeInputValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.engine.Authorize(context.Background(), "", "password123")
	assert.ErrorIs(t, err, auth.ErrMissingCredentials)

	_, err = env.engine.Authorize(context.Background(), "mina@example.com", "")
	assert.ErrorIs(t, err, auth.ErrMissingCredentials)

	_, err = env.engine.Authorize(context.Background(), "not-an-email", "password123")
	assert.ErrorIs(t, err, auth.ErrInvalidInput)

	_, err = env.engine.Authorize(context.Background(), "mina@example.com", "short")
	assert.ErrorIs(t, err, auth.ErrInvalidInput)
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "mina@example.com", "password123")

	_, err := env.engine.Signup(context.Background(), "mina@example.com", "otherpassword", "fr")
	assert.ErrorIs(t, err, auth.ErrEmailTaken)
}

func TestSignupNeverReturnsHash(t *testing.T) {
	env := newTestEnv(t)
	user := env.signup(t, "mina@example.com", "password123")

	// The projection type has no hash field; the stored record does.
	stored, err := env.users.GetByEmail(context.Background(), user.Email)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "password123", stored.PasswordHash)
}
