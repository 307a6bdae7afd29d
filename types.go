package auth

import (
	"context"
	"time"
)

// Credential-origin tags carried in User.Providers.
const (
	// ProviderCredentials marks an account with a password.
	ProviderCredentials = "credentials"
	// ProviderGoogle marks an account linked to a Google identity.
	ProviderGoogle = "google"
)

// User is the identity record owned by the credential store.
type User struct {
	ID                string
	Email             string
	PasswordHash      string // empty for pure-OAuth accounts
	Providers         []string
	PreferredLanguage string

	// GoogleLinkingRequestedAt marks the start of the bounded window during
	// which a Google identity may be merged into this password account.
	GoogleLinkingRequestedAt *time.Time
}

// HasProvider reports whether the given credential-origin tag is present.
func (u *User) HasProvider(name string) bool {
	for _, p := range u.Providers {
		if p == name {
			return true
		}
	}
	return false
}

// RefreshToken is one issued, not-yet-consumed refresh credential. Only the
// hash of the opaque secret is ever persisted.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
}

// PasswordReset is a one-time password reset ticket, consumed on first use.
type PasswordReset struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
}

// UserProjection is the minimal user view returned to callers after
// successful authentication. It never carries the password hash.
type UserProjection struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	Language  string   `json:"language,omitempty"`
	Providers []string `json:"providers"`
}

// UserStore persists User records. Implementations return ErrRecordNotFound
// for absent records and wrap transport failures in ErrStoreUnavailable.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
}

// RefreshTokenStore persists RefreshToken records.
//
// Get returns the row whatever its revoked flag; ActiveForUser returns
// non-revoked rows newest first. Expiry is checked by the caller against its
// clock, not filtered by the store, so a stale row is rejected by time
// comparison at validation time.
type RefreshTokenStore interface {
	Create(ctx context.Context, token *RefreshToken) error
	Get(ctx context.Context, id string) (*RefreshToken, error)
	ActiveForUser(ctx context.Context, userID string) ([]RefreshToken, error)
	Revoke(ctx context.Context, id string) error
}

// PasswordResetStore persists one-time reset tickets.
type PasswordResetStore interface {
	Create(ctx context.Context, reset *PasswordReset) error
	GetByToken(ctx context.Context, token string) (*PasswordReset, error)
	Delete(ctx context.Context, id string) error
}

// Hasher is the slow-hash capability used for passwords and refresh secrets.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Compare(plaintext, hash string) bool
}

// SecretSource produces opaque high-entropy secrets.
type SecretSource interface {
	// Hex returns n random bytes hex-encoded (2n characters).
	Hex(n int) (string, error)
}
