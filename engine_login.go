package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Authorize verifies email+password against the credential store. It is
// independent of token concerns; callers issue tokens separately.
func (e *Engine) Authorize(ctx context.Context, email, password string) (*UserProjection, error) {
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	email = SanitizeEmail(email)
	if !validEmail(email) || len(password) < e.config.PasswordMinLength {
		return nil, ErrInvalidInput
	}

	user, err := e.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, ErrNoAccountFound
		}
		e.logger.Error("login user lookup failed", zap.Error(err))
		return nil, ErrInternal
	}

	if user.PasswordHash == "" {
		return nil, ErrNoPasswordSet
	}
	if !e.hasher.Compare(password, user.PasswordHash) {
		return nil, ErrIncorrectPassword
	}

	return projection(user), nil
}

// Signup creates a password account. The caller issues the initial token
// pair on success.
func (e *Engine) Signup(ctx context.Context, email, password, language string) (*UserProjection, error) {
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	email = SanitizeEmail(email)
	if !validEmail(email) || len(password) < e.config.PasswordMinLength {
		return nil, ErrInvalidInput
	}

	if _, err := e.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrRecordNotFound) {
		e.logger.Error("signup user lookup failed", zap.Error(err))
		return nil, ErrInternal
	}

	hash, err := e.hasher.Hash(password)
	if err != nil {
		e.logger.Error("signup password hashing failed", zap.Error(err))
		return nil, ErrInternal
	}

	user := &User{
		ID:                uuid.NewString(),
		Email:             email,
		PasswordHash:      hash,
		Providers:         []string{ProviderCredentials},
		PreferredLanguage: language,
	}
	if err := e.users.Create(ctx, user); err != nil {
		e.logger.Error("signup user create failed", zap.Error(err))
		return nil, ErrInternal
	}

	return projection(user), nil
}
