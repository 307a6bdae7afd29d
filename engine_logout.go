package auth

import (
	"context"

	"go.uber.org/zap"
)

// Logout revokes the refresh token matching the presented plaintext for the
// access token's subject. The access token is decoded without signature
// verification so logout still succeeds after a signing-secret rotation.
// Logout is idempotent: a refresh token that matches nothing is not an error.
func (e *Engine) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken == "" || refreshToken == "" {
		return ErrMissingTokens
	}

	claims, err := e.jwt.DecodeUnverified(accessToken)
	if err != nil || claims.Subject == "" {
		return ErrInvalidAccessToken
	}

	rows, err := e.tokens.ActiveForUser(ctx, claims.Subject)
	if err != nil {
		e.logger.Error("logout token lookup failed", zap.Error(err), zap.String("user_id", claims.Subject))
		return ErrInternal
	}

	for i := range rows {
		if e.hasher.Compare(refreshToken, rows[i].TokenHash) {
			if err := e.tokens.Revoke(ctx, rows[i].ID); err != nil {
				e.logger.Error("logout revoke failed", zap.Error(err), zap.String("token_id", rows[i].ID))
				return ErrInternal
			}
			break
		}
	}

	return nil
}
