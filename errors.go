package auth

import "errors"

var (
	// ErrMissingToken is returned by Rotate when no refresh token was presented.
	ErrMissingToken = errors.New("missing refresh token")
	// ErrInvalidOrExpiredToken is returned when a presented refresh token
	// matches no stored hash or its row has expired.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired refresh token")
	// ErrUserNotFound is returned when a token's owning user no longer exists.
	ErrUserNotFound = errors.New("user not found")
	// ErrMissingTokens is returned by Logout when either token is absent.
	ErrMissingTokens = errors.New("missing access or refresh token")
	// ErrInvalidAccessToken is returned by Logout when the access token cannot
	// be decoded or carries no subject.
	ErrInvalidAccessToken = errors.New("invalid access token")

	// ErrMissingCredentials is returned by Authorize when email or password is absent.
	ErrMissingCredentials = errors.New("missing email or password")
	// ErrInvalidInput is returned when the email or password fails shape validation.
	ErrInvalidInput = errors.New("invalid email or password format")
	// ErrNoAccountFound is returned when no user row matches the email.
	ErrNoAccountFound = errors.New("no account found for this email")
	// ErrNoPasswordSet is returned for accounts created through an OAuth
	// provider that never set a password.
	ErrNoPasswordSet = errors.New("no password set for this account, sign in with your provider first")
	// ErrIncorrectPassword is returned when the password hash comparison fails.
	ErrIncorrectPassword = errors.New("incorrect password")
	// ErrEmailTaken is returned by Signup for an already registered email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrNeedGoogleLinking is returned when a Google sign-in targets a
	// password account whose linking window is absent or expired.
	ErrNeedGoogleLinking = errors.New("google account linking required")
	// ErrLinkUpdateFailed is returned when persisting the provider merge
	// fails. Distinct from ErrNeedGoogleLinking so callers can retry instead
	// of restarting the linking flow.
	ErrLinkUpdateFailed = errors.New("google account linking update failed")

	// ErrResetInvalid is returned for an unknown, consumed, or expired
	// password reset ticket.
	ErrResetInvalid = errors.New("invalid or expired reset token")

	// ErrRecordNotFound is returned by stores when a record is absent.
	ErrRecordNotFound = errors.New("record not found")
	// ErrStoreUnavailable wraps transport-level credential store failures.
	ErrStoreUnavailable = errors.New("credential store unavailable")
	// ErrInternal is the catch-all surfaced to callers for unexpected failures.
	ErrInternal = errors.New("internal error")
)
