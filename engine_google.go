package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// The two linking windows are deliberately distinct constants. The implicit
// path is entered straight from the OAuth callback and must be tight; the
// explicit path covers a user typing their password on the linking page.
// Unifying them would silently change the security posture.
const (
	// googleSignInLinkWindow bounds the provider merge triggered directly by
	// a Google sign-in.
	googleSignInLinkWindow = 60 * time.Second

	// googleLinkConfirmWindow bounds the explicit password-confirmation
	// linking flow.
	googleLinkConfirmWindow = 10 * time.Minute
)

// GoogleProfile is the verified identity delivered by the Google sign-in
// callback. Token verification happens upstream.
type GoogleProfile struct {
	Email    string
	Language string
}

// GoogleSignIn reconciles a Google identity with the credential store:
//
//   - no account: a new user is created with the google provider tag.
//   - google already linked: success, no mutation.
//   - password account without a linking marker, or with an expired one:
//     ErrNeedGoogleLinking; the caller sends the user to the linking form.
//   - password account inside the linking window: the google tag is merged
//     and the marker cleared.
func (e *Engine) GoogleSignIn(ctx context.Context, profile GoogleProfile) (*UserProjection, error) {
	email := SanitizeEmail(profile.Email)
	if !validEmail(email) {
		return nil, ErrInvalidInput
	}

	user, err := e.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrRecordNotFound) {
			e.logger.Error("google sign-in lookup failed", zap.Error(err))
			return nil, ErrInternal
		}
		user = &User{
			ID:                uuid.NewString(),
			Email:             email,
			Providers:         []string{ProviderGoogle},
			PreferredLanguage: profile.Language,
		}
		if err := e.users.Create(ctx, user); err != nil {
			e.logger.Error("google sign-in user create failed", zap.Error(err))
			return nil, ErrInternal
		}
		return projection(user), nil
	}

	if user.HasProvider(ProviderGoogle) {
		return projection(user), nil
	}

	return e.completeLink(ctx, user, googleSignInLinkWindow)
}

// RequestGoogleLink opens the linking window for a password account after
// verifying the password. The subsequent ConfirmGoogleLink (or an immediate
// Google sign-in) completes the merge.
func (e *Engine) RequestGoogleLink(ctx context.Context, email, password string) error {
	authorized, err := e.Authorize(ctx, email, password)
	if err != nil {
		return err
	}

	user, err := e.users.GetByEmail(ctx, authorized.Email)
	if err != nil {
		e.logger.Error("link request lookup failed", zap.Error(err))
		return ErrInternal
	}

	now := e.clock.Now()
	user.GoogleLinkingRequestedAt = &now
	if err := e.users.Update(ctx, user); err != nil {
		e.logger.Error("link request update failed", zap.Error(err), zap.String("user_id", user.ID))
		return ErrInternal
	}
	return nil
}

// ConfirmGoogleLink completes the explicit linking flow for a verified
// Google identity, within the wider password-confirmation window.
func (e *Engine) ConfirmGoogleLink(ctx context.Context, profile GoogleProfile) (*UserProjection, error) {
	email := SanitizeEmail(profile.Email)
	if !validEmail(email) {
		return nil, ErrInvalidInput
	}

	user, err := e.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, ErrNoAccountFound
		}
		e.logger.Error("link confirm lookup failed", zap.Error(err))
		return nil, ErrInternal
	}

	if user.HasProvider(ProviderGoogle) {
		return projection(user), nil
	}

	return e.completeLink(ctx, user, googleLinkConfirmWindow)
}

func (e *Engine) completeLink(ctx context.Context, user *User, window time.Duration) (*UserProjection, error) {
	requestedAt := user.GoogleLinkingRequestedAt
	if requestedAt == nil || e.clock.Now().Sub(*requestedAt) > window {
		return nil, ErrNeedGoogleLinking
	}

	user.Providers = append(user.Providers, ProviderGoogle)
	user.GoogleLinkingRequestedAt = nil
	if err := e.users.Update(ctx, user); err != nil {
		e.logger.Error("provider merge failed", zap.Error(err), zap.String("user_id", user.ID))
		return nil, ErrLinkUpdateFailed
	}

	return projection(user), nil
}
