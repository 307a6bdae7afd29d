package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
)

// ErrTokenInvalid is returned when a token fails verification or carries
// malformed claims.
var ErrTokenInvalid = errors.New("invalid token")

// Config holds signing parameters. Instances are treated as immutable once
// the manager is constructed.
type Config struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
}

// Claims is the access-token claim bundle: subject, email, language, and
// credential-origin tags, plus the registered iat/exp claims.
type Claims struct {
	Email     string   `json:"email"`
	Language  string   `json:"language,omitempty"`
	Providers []string `json:"providers,omitempty"`
	jwt.RegisteredClaims
}

// Manager signs and verifies HS256 access tokens.
type Manager struct {
	config Config
	clock  clockwork.Clock
}

// NewManager validates cfg and returns a token manager. A nil clock falls
// back to the real clock.
func NewManager(cfg Config, clock clockwork.Clock) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("jwt: empty signing secret")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("jwt: invalid TTL configuration")
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Manager{config: cfg, clock: clock}, nil
}

// TTL returns the configured access-token lifetime.
func (m *Manager) TTL() time.Duration {
	return m.config.TTL
}

// Sign mints a signed access token for the given identity.
func (m *Manager) Sign(userID, email, language string, providers []string) (string, error) {
	now := m.clock.Now()
	claims := Claims{
		Email:     email,
		Language:  language,
		Providers: providers,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    m.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.config.Secret)
}

// Verify checks the signature and temporal validity of a token and returns
// its claims.
func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.clock.Now),
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.config.Secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// DecodeUnverified extracts claims without checking the signature. Logout
// must be able to read the subject out of a token whose signing secret has
// since rotated.
func (m *Manager) DecodeUnverified(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return nil, err
	}
	return claims, nil
}
