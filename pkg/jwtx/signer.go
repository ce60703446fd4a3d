package jwtx

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Supported JWS algorithm families. The server admits exactly one at a time,
// chosen by configuration; RFC 6749 does not mandate a specific algorithm,
// only that clients be able to verify the signature.
const (
	AlgorithmHS256 = "HS256"
	AlgorithmRS256 = "RS256"
	AlgorithmES256 = "ES256"
	AlgorithmEdDSA = "EdDSA"
)

// Signer produces compact JWS tokens over Claims.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// Verifier parses and validates a compact JWS token, returning its Claims.
type Verifier interface {
	Verify(token string) (Claims, error)
}

type keyedSigner struct {
	method jwt.SigningMethod
	key    any
}

func (s *keyedSigner) Alg() string { return s.method.Alg() }

func (s *keyedSigner) Sign(c Claims) (string, error) {
	return jwt.NewWithClaims(s.method, c).SignedString(s.key)
}

type keyedVerifier struct {
	method jwt.SigningMethod
	key    any
}

func (v *keyedVerifier) Verify(token string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != v.method.Alg() {
			return nil, fmt.Errorf("jwtx: unexpected signing method %q", t.Method.Alg())
		}
		return v.key, nil
	})
	if err != nil {
		return Claims{}, err
	}
	if !parsed.Valid {
		return Claims{}, jwt.ErrTokenSignatureInvalid
	}
	return claims, nil
}

// NewSigner builds a Signer for algorithm using keyMaterial. For HS256,
// keyMaterial is the raw shared secret; for RS256/ES256/EdDSA it is a
// PKCS8-PEM (or PKCS1-PEM for RSA) encoded private key.
func NewSigner(algorithm string, keyMaterial []byte) (Signer, error) {
	switch algorithm {
	case AlgorithmHS256:
		return &keyedSigner{method: jwt.SigningMethodHS256, key: keyMaterial}, nil
	case AlgorithmRS256:
		key, err := parseRSAPrivateKey(keyMaterial)
		if err != nil {
			return nil, err
		}
		return &keyedSigner{method: jwt.SigningMethodRS256, key: key}, nil
	case AlgorithmES256:
		key, err := parseECPrivateKey(keyMaterial)
		if err != nil {
			return nil, err
		}
		return &keyedSigner{method: jwt.SigningMethodES256, key: key}, nil
	case AlgorithmEdDSA:
		key, err := parseEdPrivateKey(keyMaterial)
		if err != nil {
			return nil, err
		}
		return &keyedSigner{method: jwt.SigningMethodEdDSA, key: key}, nil
	default:
		return nil, fmt.Errorf("jwtx: unsupported algorithm %q", algorithm)
	}
}

// NewVerifier builds a Verifier for algorithm using the same keyMaterial
// passed to NewSigner. Asymmetric algorithms derive the public key from the
// private key material; only the server ever needs to verify its own
// tokens in this design (no external JWKS distribution).
func NewVerifier(algorithm string, keyMaterial []byte) (Verifier, error) {
	switch algorithm {
	case AlgorithmHS256:
		return &keyedVerifier{method: jwt.SigningMethodHS256, key: keyMaterial}, nil
	case AlgorithmRS256:
		key, err := parseRSAPrivateKey(keyMaterial)
		if err != nil {
			return nil, err
		}
		return &keyedVerifier{method: jwt.SigningMethodRS256, key: &key.PublicKey}, nil
	case AlgorithmES256:
		key, err := parseECPrivateKey(keyMaterial)
		if err != nil {
			return nil, err
		}
		return &keyedVerifier{method: jwt.SigningMethodES256, key: &key.PublicKey}, nil
	case AlgorithmEdDSA:
		key, err := parseEdPrivateKey(keyMaterial)
		if err != nil {
			return nil, err
		}
		return &keyedVerifier{method: jwt.SigningMethodEdDSA, key: key.Public()}, nil
	default:
		return nil, fmt.Errorf("jwtx: unsupported algorithm %q", algorithm)
	}
}

func parseRSAPrivateKey(pemBytes []byte) (*rsa.PrivateKey, error) {
	if key, err := jwt.ParseRSAPrivateKeyFromPEM(pemBytes); err == nil {
		return key, nil
	}
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("jwtx: invalid PEM block for RSA key")
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwtx: failed to parse RSA key: %w", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("jwtx: key material is not an RSA private key")
	}
	return key, nil
}

func parseECPrivateKey(pemBytes []byte) (*ecdsa.PrivateKey, error) {
	if key, err := jwt.ParseECPrivateKeyFromPEM(pemBytes); err == nil {
		return key, nil
	}
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("jwtx: invalid PEM block for ECDSA key")
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwtx: failed to parse ECDSA key: %w", err)
	}
	key, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("jwtx: key material is not an ECDSA private key")
	}
	return key, nil
}

func parseEdPrivateKey(pemBytes []byte) (ed25519.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("jwtx: invalid PEM block for Ed25519 key")
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwtx: failed to parse Ed25519 key: %w", err)
	}
	key, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("jwtx: key material is not an Ed25519 private key")
	}
	return key, nil
}
