package jwtx

import (
	"fmt"

	"github.com/oauth2gate/authd/pkg/cryptox"
)

// DefaultRSABits is used when RS256 is selected without an explicit bit size.
const DefaultRSABits = 3072

// GenerateKeyMaterial mints fresh key material appropriate for algorithm.
// It is used to bootstrap a signing key when the operator has not supplied
// one via configuration (development, tests).
func GenerateKeyMaterial(algorithm string, rsaBits int) ([]byte, error) {
	switch algorithm {
	case AlgorithmHS256:
		secret, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return nil, err
		}
		return []byte(secret), nil
	case AlgorithmRS256:
		if rsaBits == 0 {
			rsaBits = DefaultRSABits
		}
		return cryptox.GenerateRSAKey(rsaBits)
	case AlgorithmES256:
		return cryptox.GenerateES256Key()
	case AlgorithmEdDSA:
		return cryptox.GenerateEd25519Key()
	default:
		return nil, fmt.Errorf("jwtx: unsupported algorithm %q", algorithm)
	}
}
