package auth

import (
	"errors"
	"strconv"
	"time"
)

// DefaultAccessTokenExpiry is the access-token lifetime the server wiring
// falls back to when none is configured.
const DefaultAccessTokenExpiry = "1h"

// Defaults applied by Config.applyDefaults.
const (
	DefaultRefreshTokenDays  = 30
	DefaultBcryptCost        = 10
	DefaultPasswordMinLength = 8
	DefaultResetTTL          = time.Hour
)

// Config tunes the engine. Zero values fall back to the defaults above.
type Config struct {
	// AccessTokenExpiry is accepted as a duration string ("1h", "45m") or a
	// raw integer of seconds ("3600"). The jwt manager's TTL is the
	// effective lifetime; when this field is set, New fails unless the two
	// agree. The engine always reports expiry to clients as integer seconds.
	AccessTokenExpiry string

	// RefreshTokenDays is the lifetime of issued refresh tokens in days.
	RefreshTokenDays int

	// BcryptCost is the cost factor for password and refresh-secret hashing.
	BcryptCost int

	// PasswordMinLength is the minimum accepted password length.
	PasswordMinLength int

	// ResetTTL is the lifetime of password reset tickets.
	ResetTTL time.Duration
}

func (c *Config) applyDefaults() {
	if c.RefreshTokenDays <= 0 {
		c.RefreshTokenDays = DefaultRefreshTokenDays
	}
	if c.BcryptCost <= 0 {
		c.BcryptCost = DefaultBcryptCost
	}
	if c.PasswordMinLength <= 0 {
		c.PasswordMinLength = DefaultPasswordMinLength
	}
	if c.ResetTTL <= 0 {
		c.ResetTTL = DefaultResetTTL
	}
}

// ParseExpiry normalizes an expiry value that may be a Go duration string or
// a raw integer of seconds.
func ParseExpiry(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, errors.New("empty expiry value")
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		if secs <= 0 {
			return 0, errors.New("expiry seconds must be positive")
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, errors.New("expiry must be a duration string or integer seconds")
	}
	if d <= 0 {
		return 0, errors.New("expiry duration must be positive")
	}
	return d, nil
}
