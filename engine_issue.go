package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// refreshSecretBytes is the entropy of a refresh token's random part before
// hex encoding.
const refreshSecretBytes = 64

// refreshIDPrefixLen is the length of the row id embedded at the front of
// the wire token (uuid hex form, dashes stripped). Rotation recovers the row
// by primary key from this prefix; the stored bcrypt hashes are salted and
// cannot be looked up by value.
const refreshIDPrefixLen = 32

func refreshIDPrefix(id string) string {
	return strings.ReplaceAll(id, "-", "")
}

// IssueInput describes the identity a token pair is minted for.
type IssueInput struct {
	UserID    string
	Email     string
	Language  string
	Providers []string

	// Supersede is the plaintext of a previously issued refresh token that
	// should be revoked alongside issuance. Best-effort: no match is not an
	// error.
	Supersede string
}

// TokenPair is the result of issuance and rotation. ExpiresIn is always
// integer seconds regardless of how the configured expiry was spelled.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// Issue mints a signed access token and a fresh opaque refresh token,
// persisting only the refresh token's hash. Exactly one RefreshToken row is
// created per call; at most one prior row is revoked via Supersede.
func (e *Engine) Issue(ctx context.Context, in IssueInput) (*TokenPair, error) {
	if in.UserID == "" || in.Email == "" {
		return nil, ErrInvalidInput
	}

	if in.Supersede != "" {
		e.revokeMatching(ctx, in.UserID, in.Supersede)
	}

	secret, err := e.secrets.Hex(refreshSecretBytes)
	if err != nil {
		e.logger.Error("refresh secret generation failed", zap.Error(err))
		return nil, ErrInternal
	}

	id := uuid.NewString()
	plaintext := refreshIDPrefix(id) + secret
	hash, err := e.hasher.Hash(plaintext)
	if err != nil {
		e.logger.Error("refresh secret hashing failed", zap.Error(err))
		return nil, ErrInternal
	}

	row := &RefreshToken{
		ID:        id,
		UserID:    in.UserID,
		TokenHash: hash,
		ExpiresAt: e.clock.Now().Add(time.Duration(e.config.RefreshTokenDays) * 24 * time.Hour),
	}
	if err := e.tokens.Create(ctx, row); err != nil {
		e.logger.Error("refresh token persist failed", zap.Error(err), zap.String("user_id", in.UserID))
		return nil, ErrInternal
	}

	access, err := e.jwt.Sign(in.UserID, in.Email, in.Language, in.Providers)
	if err != nil {
		e.logger.Error("access token signing failed", zap.Error(err), zap.String("user_id", in.UserID))
		return nil, ErrInternal
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: plaintext,
		ExpiresIn:    int(e.jwt.TTL().Seconds()),
	}, nil
}

// revokeMatching revokes the user's active refresh token whose hash matches
// plaintext, if any. Failures are logged and swallowed: superseding is
// cleanup, not a precondition of issuance.
func (e *Engine) revokeMatching(ctx context.Context, userID, plaintext string) {
	rows, err := e.tokens.ActiveForUser(ctx, userID)
	if err != nil {
		e.logger.Warn("supersede lookup failed", zap.Error(err), zap.String("user_id", userID))
		return
	}
	for i := range rows {
		if e.hasher.Compare(plaintext, rows[i].TokenHash) {
			if err := e.tokens.Revoke(ctx, rows[i].ID); err != nil {
				e.logger.Warn("supersede revoke failed", zap.Error(err), zap.String("token_id", rows[i].ID))
			}
			return
		}
	}
}
