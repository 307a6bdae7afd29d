package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const resetSecretBytes = 32

// RequestPasswordReset creates a single-use reset token for the account. To
// avoid account enumeration an unknown email is a silent no-op; the returned
// token is empty in that case.
func (e *Engine) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = SanitizeEmail(email)
	if !validEmail(email) {
		return "", ErrInvalidInput
	}

	user, err := e.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return "", nil
		}
		e.logger.Error("reset request lookup failed", zap.Error(err))
		return "", ErrInternal
	}

	token, err := e.secrets.Hex(resetSecretBytes)
	if err != nil {
		e.logger.Error("reset secret generation failed", zap.Error(err))
		return "", ErrInternal
	}

	row := &PasswordReset{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: e.clock.Now().Add(e.config.ResetTTL),
	}
	if err := e.resets.Create(ctx, row); err != nil {
		e.logger.Error("reset token persist failed", zap.Error(err), zap.String("user_id", user.ID))
		return "", ErrInternal
	}

	return token, nil
}

// ConfirmPasswordReset sets a new password for the account behind a valid
// reset token. The token is consumed whether or not anything later fails, so
// it can never be replayed. All active refresh tokens for the user are
// revoked: a password reset terminates every session.
func (e *Engine) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return ErrMissingCredentials
	}
	if len(newPassword) < e.config.PasswordMinLength {
		return ErrInvalidInput
	}

	row, err := e.resets.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return ErrResetInvalid
		}
		e.logger.Error("reset token lookup failed", zap.Error(err))
		return ErrInternal
	}

	if err := e.resets.Delete(ctx, row.ID); err != nil {
		e.logger.Error("reset token consume failed", zap.Error(err), zap.String("reset_id", row.ID))
		return ErrInternal
	}

	if !row.ExpiresAt.After(e.clock.Now()) {
		return ErrResetInvalid
	}

	user, err := e.users.GetByID(ctx, row.UserID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return ErrUserNotFound
		}
		e.logger.Error("reset owner lookup failed", zap.Error(err), zap.String("user_id", row.UserID))
		return ErrInternal
	}

	hash, err := e.hasher.Hash(newPassword)
	if err != nil {
		e.logger.Error("reset password hashing failed", zap.Error(err))
		return ErrInternal
	}

	user.PasswordHash = hash
	if !user.HasProvider(ProviderCredentials) {
		user.Providers = append(user.Providers, ProviderCredentials)
	}
	if err := e.users.Update(ctx, user); err != nil {
		e.logger.Error("reset password update failed", zap.Error(err), zap.String("user_id", user.ID))
		return ErrInternal
	}

	e.revokeAll(ctx, user.ID)
	return nil
}

// revokeAll revokes every active refresh token for the user. Failures are
// logged per row; the reset itself has already succeeded.
func (e *Engine) revokeAll(ctx context.Context, userID string) {
	rows, err := e.tokens.ActiveForUser(ctx, userID)
	if err != nil {
		e.logger.Warn("session sweep lookup failed", zap.Error(err), zap.String("user_id", userID))
		return
	}
	for i := range rows {
		if err := e.tokens.Revoke(ctx, rows[i].ID); err != nil {
			e.logger.Warn("session sweep revoke failed", zap.Error(err), zap.String("token_id", rows[i].ID))
		}
	}
}
