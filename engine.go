package auth

import (
	"errors"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/linguetta/linguetta-auth/jwt"
)

// Engine is the authentication core: token issuance and rotation, logout,
// credential authorization, Google identity reconciliation, and password
// reset. All collaborators are injected; an Engine is immutable after New.
type Engine struct {
	config  Config
	users   UserStore
	tokens  RefreshTokenStore
	resets  PasswordResetStore
	jwt     *jwt.Manager
	hasher  Hasher
	secrets SecretSource
	clock   clockwork.Clock
	logger  *zap.Logger
}

// Deps carries the engine's collaborators. Users, Tokens, and JWT are
// required; the rest default to production implementations.
type Deps struct {
	Users   UserStore
	Tokens  RefreshTokenStore
	Resets  PasswordResetStore
	JWT     *jwt.Manager
	Hasher  Hasher
	Secrets SecretSource
	Clock   clockwork.Clock
	Logger  *zap.Logger
}

// New validates deps, applies config defaults, and returns an engine.
func New(cfg Config, deps Deps) (*Engine, error) {
	cfg.applyDefaults()

	if deps.Users == nil {
		return nil, errors.New("auth: user store is required")
	}
	if deps.Tokens == nil {
		return nil, errors.New("auth: refresh token store is required")
	}
	if deps.JWT == nil {
		return nil, errors.New("auth: jwt manager is required")
	}
	if cfg.AccessTokenExpiry != "" {
		ttl, err := ParseExpiry(cfg.AccessTokenExpiry)
		if err != nil {
			return nil, err
		}
		if ttl != deps.JWT.TTL() {
			return nil, errors.New("auth: access token expiry does not match the jwt manager TTL")
		}
	}
	if deps.Hasher == nil {
		deps.Hasher = NewBcryptHasher(cfg.BcryptCost)
	}
	if deps.Secrets == nil {
		deps.Secrets = NewSecretSource()
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Engine{
		config:  cfg,
		users:   deps.Users,
		tokens:  deps.Tokens,
		resets:  deps.Resets,
		jwt:     deps.JWT,
		hasher:  deps.Hasher,
		secrets: deps.Secrets,
		clock:   deps.Clock,
		logger:  deps.Logger,
	}, nil
}

func projection(user *User) *UserProjection {
	providers := make([]string, len(user.Providers))
	copy(providers, user.Providers)
	return &UserProjection{
		ID:        user.ID,
		Email:     user.Email,
		Language:  user.PreferredLanguage,
		Providers: providers,
	}
}
