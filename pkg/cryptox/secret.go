// Package cryptox collects the cryptographic primitives the authorization
// server needs: HMAC-derived client secrets, PKCE verification, opaque
// token generation/fingerprinting, and argon2id password hashing.
package cryptox

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"hash"
)

// hashConstructors maps the configured OAUTH_HMAC_ALGORITHM name to a hash
// constructor. Only the families golang-jwt/jwt and the wider ecosystem
// treat as standard are admitted.
var hashConstructors = map[string]func() hash.Hash{
	"sha256": sha256.New,
	"sha384": sha512.New384,
	"sha512": sha512.New,
}

// ErrUnsupportedAlgorithm is returned when OAUTH_HMAC_ALGORITHM names a hash
// family cryptox does not implement.
type ErrUnsupportedAlgorithm string

func (e ErrUnsupportedAlgorithm) Error() string {
	return fmt.Sprintf("cryptox: unsupported hmac algorithm %q", string(e))
}

// DeriveClientSecret computes the deterministic client secret for clientID:
// hex(HMAC(algorithm, key, clientID)). The same (algorithm, key, clientID)
// triple always yields the same secret, so the entity store never needs to
// persist it.
func DeriveClientSecret(algorithm, key, clientID string) (string, error) {
	newHash, ok := hashConstructors[algorithm]
	if !ok {
		return "", ErrUnsupportedAlgorithm(algorithm)
	}
	mac := hmac.New(newHash, []byte(key))
	_, _ = mac.Write([]byte(clientID))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// VerifyClientSecret reports whether candidate is the correct derived secret
// for clientID, comparing in constant time.
func VerifyClientSecret(algorithm, key, clientID, candidate string) (bool, error) {
	expected, err := DeriveClientSecret(algorithm, key, clientID)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(candidate)) == 1, nil
}
