// Package googleid verifies Google ID tokens against Google's public keys.
package googleid

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"
)

// ErrTokenInvalid is returned when the ID token fails verification.
var ErrTokenInvalid = errors.New("invalid google id token")

// Profile is the subset of ID token claims the auth flows consume.
type Profile struct {
	Email    string
	Name     string
	Language string
}

// Verifier validates a Google ID token and extracts the profile.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Profile, error)
}

type googleVerifier struct {
	audience string
}

// NewVerifier returns a [Verifier] that checks signature, expiry, and the
// aud claim against the given OAuth client ID.
func NewVerifier(audience string) Verifier {
	return &googleVerifier{audience: audience}
}

func (v *googleVerifier) Verify(ctx context.Context, token string) (*Profile, error) {
	payload, err := idtoken.Validate(ctx, token, v.audience)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, fmt.Errorf("%w: missing email claim", ErrTokenInvalid)
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return nil, fmt.Errorf("%w: email not verified", ErrTokenInvalid)
	}

	name, _ := payload.Claims["name"].(string)
	locale, _ := payload.Claims["locale"].(string)

	return &Profile{
		Email:    email,
		Name:     name,
		Language: locale,
	}, nil
}
