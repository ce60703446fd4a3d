package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveClientSecretIsDeterministic(t *testing.T) {
	t.Parallel()

	a, err := DeriveClientSecret("sha256", "server-key", "client-1")
	require.NoError(t, err)
	b, err := DeriveClientSecret("sha256", "server-key", "client-1")
	require.NoError(t, err)
	require.Equal(t, a, b)

	other, err := DeriveClientSecret("sha256", "server-key", "client-2")
	require.NoError(t, err)
	require.NotEqual(t, a, other)
}

func TestDeriveClientSecretRejectsUnsupportedAlgorithm(t *testing.T) {
	t.Parallel()

	_, err := DeriveClientSecret("md5", "server-key", "client-1")
	require.Error(t, err)
	var target ErrUnsupportedAlgorithm
	require.ErrorAs(t, err, &target)
}

func TestVerifyClientSecret(t *testing.T) {
	t.Parallel()

	secret, err := DeriveClientSecret("sha512", "server-key", "client-1")
	require.NoError(t, err)

	ok, err := VerifyClientSecret("sha512", "server-key", "client-1", secret)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifyClientSecret("sha512", "server-key", "client-1", "wrong-secret")
	require.NoError(t, err)
	require.False(t, ok)
}
