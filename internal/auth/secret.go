package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

// MinSecretLen is the minimum accepted length, in bytes, of a configured
// session signing secret.
const MinSecretLen = 32

// ErrWeakSecret indicates a configured secret is too short to sign sessions.
var ErrWeakSecret = errors.New("session secret too short")

// GenerateSecret returns n random bytes hex encoded.
func GenerateSecret(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// SessionSecret returns the signing key for session cookies.
// When configured is empty a random key is generated and generated is true:
// sessions signed with it do not survive a restart.
func SessionSecret(configured string) (key []byte, generated bool, err error) {
	if configured == "" {
		secret, err := GenerateSecret(MinSecretLen)
		if err != nil {
			return nil, false, err
		}
		return []byte(secret), true, nil
	}

	if len(configured) < MinSecretLen {
		return nil, false, fmt.Errorf("%w: need at least %d bytes, got %d", ErrWeakSecret, MinSecretLen, len(configured))
	}

	return []byte(configured), false, nil
}
