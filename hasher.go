package auth

import (
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher implements [Hasher] with bcrypt.
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher creates a hasher with the given cost factor (0 means
// DefaultBcryptCost).
func NewBcryptHasher(cost int) BcryptHasher {
	if cost <= 0 {
		cost = DefaultBcryptCost
	}
	return BcryptHasher{Cost: cost}
}

// Hash returns the bcrypt hash of plaintext.
func (h BcryptHasher) Hash(plaintext string) (string, error) {
	cost := h.Cost
	if cost <= 0 {
		cost = DefaultBcryptCost
	}
	out, err := bcrypt.GenerateFromPassword(normalizeBcryptInput(plaintext), cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Compare reports whether plaintext matches the stored hash.
func (h BcryptHasher) Compare(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), normalizeBcryptInput(plaintext)) == nil
}

// bcrypt rejects inputs longer than 72 bytes. Wire-form refresh tokens are
// 160 hex characters, so longer inputs are compressed through SHA-256 first.
func normalizeBcryptInput(plaintext string) []byte {
	if len(plaintext) <= 72 {
		return []byte(plaintext)
	}
	sum := sha256.Sum256([]byte(plaintext))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}
