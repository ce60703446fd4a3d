package jwtx_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oauth2gate/authd/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestValidateIssuer(t *testing.T) {
	t.Parallel()
	c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "authd"}}

	t.Run("matching issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer("authd"))
	})
	t.Run("empty expected issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer(""))
	})
	t.Run("mismatched issuer", func(t *testing.T) {
		require.ErrorIs(t, c.ValidateIssuer("other-issuer"), jwtx.ErrIssuer)
	})
}

func TestValidateAudience(t *testing.T) {
	t.Parallel()
	c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Audience: jwt.ClaimStrings{"app.example"}}}

	require.NoError(t, c.ValidateAudience("app.example"))
	require.NoError(t, c.ValidateAudience(""), "empty expected audience is not checked")
	require.ErrorIs(t, c.ValidateAudience("other.example"), jwtx.ErrAudience)
}

func TestValidateExpiry(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()

	live := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute))}}
	require.NoError(t, live.ValidateExpiry())

	expired := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute))}}
	require.ErrorIs(t, expired.ValidateExpiry(), jwtx.ErrExpired)

	noExpiry := &jwtx.Claims{}
	require.NoError(t, noExpiry.ValidateExpiry())
}

func TestSignerVerifierRoundTrip(t *testing.T) {
	t.Parallel()

	algorithms := []string{jwtx.AlgorithmHS256, jwtx.AlgorithmES256, jwtx.AlgorithmEdDSA}

	for _, algorithm := range algorithms {
		algorithm := algorithm
		t.Run(algorithm, func(t *testing.T) {
			t.Parallel()

			keyMaterial, err := jwtx.GenerateKeyMaterial(algorithm, 0)
			require.NoError(t, err)

			signer, err := jwtx.NewSigner(algorithm, keyMaterial)
			require.NoError(t, err)
			require.Equal(t, algorithm, signer.Alg())

			verifier, err := jwtx.NewVerifier(algorithm, keyMaterial)
			require.NoError(t, err)

			claims := jwtx.NewClaims("authd", "app.example", "client-1", "user-1", "jti-1", "profile:read", time.Now().Add(time.Hour))
			token, err := signer.Sign(claims)
			require.NoError(t, err)
			require.NotEmpty(t, token)

			verified, err := verifier.Verify(token)
			require.NoError(t, err)
			require.Equal(t, "user-1", verified.Subject)
			require.Equal(t, "client-1", verified.ClientID)
			require.Equal(t, "profile:read", verified.Scope)
			require.Equal(t, "jti-1", verified.ID)
		})
	}
}

func TestVerifierRejectsWrongKey(t *testing.T) {
	t.Parallel()

	keyA, err := jwtx.GenerateKeyMaterial(jwtx.AlgorithmHS256, 0)
	require.NoError(t, err)
	keyB, err := jwtx.GenerateKeyMaterial(jwtx.AlgorithmHS256, 0)
	require.NoError(t, err)

	signer, err := jwtx.NewSigner(jwtx.AlgorithmHS256, keyA)
	require.NoError(t, err)
	verifier, err := jwtx.NewVerifier(jwtx.AlgorithmHS256, keyB)
	require.NoError(t, err)

	claims := jwtx.NewClaims("authd", "app.example", "client-1", "user-1", "jti-1", "", time.Now().Add(time.Hour))
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.Error(t, err)
}

func TestGenerateKeyMaterialRejectsUnsupportedAlgorithm(t *testing.T) {
	t.Parallel()

	_, err := jwtx.GenerateKeyMaterial("HS512", 0)
	require.Error(t, err)
}
