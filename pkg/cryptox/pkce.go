package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"strings"
)

// PKCE challenge methods recognized by the authorization and token endpoints.
const (
	PKCEPlain = "plain"
	PKCES256  = "S256"
)

// HashVerifierS256 computes the S256 code_challenge for verifier per RFC 7636:
// base64url(SHA-256(ASCII(verifier))) with padding stripped.
func HashVerifierS256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// VerifyPKCE checks a code_verifier against the stored challenge/method pair
// recorded on an AuthorizationCode. An empty challenge means PKCE was not
// used for this code, so any (or no) verifier is accepted.
func VerifyPKCE(challenge, method, verifier string) bool {
	challenge = strings.TrimSpace(challenge)
	if challenge == "" {
		return true
	}
	verifier = strings.TrimSpace(verifier)
	if verifier == "" {
		return false
	}

	switch {
	case strings.EqualFold(method, PKCES256):
		return subtle.ConstantTimeCompare([]byte(challenge), []byte(HashVerifierS256(verifier))) == 1
	case strings.EqualFold(method, PKCEPlain), method == "":
		return subtle.ConstantTimeCompare([]byte(challenge), []byte(verifier)) == 1
	default:
		return false
	}
}
