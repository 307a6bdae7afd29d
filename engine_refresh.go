package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Rotate exchanges a valid refresh token for a freshly minted pair. The row
// is recovered by the id prefix embedded in the opaque secret and confirmed
// by hash comparison. Rotation is single-use: the matched row is revoked
// before the replacement is created, so a crash in between leaves no token
// valid rather than two.
func (e *Engine) Rotate(ctx context.Context, plaintext string) (*TokenPair, error) {
	if plaintext == "" {
		return nil, ErrMissingToken
	}
	if len(plaintext) <= refreshIDPrefixLen {
		return nil, ErrInvalidOrExpiredToken
	}
	id, err := uuid.Parse(plaintext[:refreshIDPrefixLen])
	if err != nil {
		return nil, ErrInvalidOrExpiredToken
	}

	match, err := e.tokens.Get(ctx, id.String())
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, ErrInvalidOrExpiredToken
		}
		e.logger.Error("refresh token lookup failed", zap.Error(err))
		return nil, ErrInternal
	}
	if match.Revoked || !e.hasher.Compare(plaintext, match.TokenHash) {
		return nil, ErrInvalidOrExpiredToken
	}
	if !match.ExpiresAt.After(e.clock.Now()) {
		return nil, ErrInvalidOrExpiredToken
	}

	user, err := e.users.GetByID(ctx, match.UserID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		e.logger.Error("refresh owner lookup failed", zap.Error(err), zap.String("user_id", match.UserID))
		return nil, ErrInternal
	}

	if err := e.tokens.Revoke(ctx, match.ID); err != nil {
		e.logger.Error("refresh token revoke failed", zap.Error(err), zap.String("token_id", match.ID))
		return nil, ErrInternal
	}

	return e.Issue(ctx, IssueInput{
		UserID:    user.ID,
		Email:     user.Email,
		Language:  user.PreferredLanguage,
		Providers: user.Providers,
	})
}
