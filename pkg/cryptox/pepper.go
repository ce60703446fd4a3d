package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"os"
	"path/filepath"
)

// Argon2id parameters for resource-owner password hashing.
const (
	argonMemory      = 19 * 1024 // KiB
	argonIterations  = 2
	argonParallelism = 1
	argonKeyLength   = 32
	argonSaltLength  = 16
)

var (
	pepper     string
	pepperFile string
)

// SetPepperPath configures where the server-wide password pepper is stored.
// Call once during startup, before any password is hashed or verified.
func SetPepperPath(path string) {
	pepperFile = path
}

// GetPepper returns the server-wide pepper, generating and persisting one on
// first use if the configured file does not yet exist.
func GetPepper() (string, error) {
	if pepper != "" {
		return pepper, nil
	}
	var err error
	pepper, err = loadOrGeneratePepper()
	return pepper, err
}

func loadOrGeneratePepper() (string, error) {
	path := filepath.Clean(pepperFile)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		buf := make([]byte, argonKeyLength)
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		value := base64.RawURLEncoding.EncodeToString(buf)
		if err := os.WriteFile(path, []byte(value), 0o600); err != nil {
			return "", err
		}
		return value, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
