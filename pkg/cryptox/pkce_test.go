package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerifyPKCE(t *testing.T) {
	t.Parallel()

	t.Run("empty challenge accepts any verifier", func(t *testing.T) {
		require.True(t, VerifyPKCE("", "", "anything"))
		require.True(t, VerifyPKCE("", "S256", ""))
	})

	t.Run("S256 verifies the hashed verifier", func(t *testing.T) {
		verifier := "example-verifier-value-1234567890"
		challenge := HashVerifierS256(verifier)
		require.True(t, VerifyPKCE(challenge, "S256", verifier))
		require.True(t, VerifyPKCE(challenge, "s256", verifier), "method match is case-insensitive")
		require.False(t, VerifyPKCE(challenge, "S256", "wrong-verifier"))
	})

	t.Run("plain compares the verifier directly", func(t *testing.T) {
		require.True(t, VerifyPKCE("literal-value", "plain", "literal-value"))
		require.False(t, VerifyPKCE("literal-value", "plain", "other-value"))
	})

	t.Run("missing verifier against a present challenge is rejected", func(t *testing.T) {
		require.False(t, VerifyPKCE("some-challenge", "S256", ""))
	})

	t.Run("unrecognized method is rejected", func(t *testing.T) {
		require.False(t, VerifyPKCE("abc", "S123", "abc"))
	})
}
