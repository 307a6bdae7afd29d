package auth

import (
	"crypto/rand"
	"encoding/hex"
)

type cryptoSecretSource struct{}

// NewSecretSource returns a [SecretSource] backed by crypto/rand.
func NewSecretSource() SecretSource {
	return cryptoSecretSource{}
}

func (cryptoSecretSource) Hex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
