package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveType(t *testing.T) {
	t.Parallel()

	require.Equal(t, TypeConfidential, DeriveType(ProfileWeb))
	require.Equal(t, TypePublic, DeriveType(ProfileUserAgent))
	require.Equal(t, TypePublic, DeriveType(ProfileNative))
}

func TestDeriveGrants(t *testing.T) {
	t.Parallel()

	t.Run("public external", func(t *testing.T) {
		grants := DeriveGrants(TypePublic, false)
		require.ElementsMatch(t, []GrantType{GrantImplicit, GrantAuthorizationCode}, grants)
	})

	t.Run("public internal adds password", func(t *testing.T) {
		grants := DeriveGrants(TypePublic, true)
		require.ElementsMatch(t, []GrantType{GrantImplicit, GrantAuthorizationCode, GrantPassword}, grants)
	})

	t.Run("confidential internal adds client_credentials", func(t *testing.T) {
		grants := DeriveGrants(TypeConfidential, true)
		require.ElementsMatch(t, []GrantType{
			GrantImplicit, GrantAuthorizationCode, GrantPassword, GrantClientCredentials,
		}, grants)
	})

	t.Run("confidential external matches public external", func(t *testing.T) {
		grants := DeriveGrants(TypeConfidential, false)
		require.ElementsMatch(t, []GrantType{GrantImplicit, GrantAuthorizationCode}, grants)
	})
}

func TestAllowsRefreshFor(t *testing.T) {
	t.Parallel()

	require.False(t, AllowsRefreshFor(TypePublic, GrantAuthorizationCode), "public clients never get a refresh token")
	require.False(t, AllowsRefreshFor(TypeConfidential, GrantClientCredentials))
	require.False(t, AllowsRefreshFor(TypeConfidential, GrantImplicit))
	require.True(t, AllowsRefreshFor(TypeConfidential, GrantAuthorizationCode))
	require.True(t, AllowsRefreshFor(TypeConfidential, GrantPassword))
	require.True(t, AllowsRefreshFor(TypeConfidential, GrantRefreshToken))
}

func TestClientAZP(t *testing.T) {
	t.Parallel()

	withDomaine := Client{ClientID: "abc123", Domaine: "app.example"}
	require.Equal(t, "app.example", withDomaine.AZP())

	withoutDomaine := Client{ClientID: "abc123"}
	require.Equal(t, "abc123", withoutDomaine.AZP())
}

func TestClientHasGrant(t *testing.T) {
	t.Parallel()

	c := Client{Grants: []GrantType{GrantClientCredentials, GrantRefreshToken}}
	require.True(t, c.HasGrant(GrantClientCredentials))
	require.False(t, c.HasGrant(GrantPassword))
}

func TestClientIsRevoked(t *testing.T) {
	t.Parallel()

	live := Client{}
	require.False(t, live.IsRevoked())

	var revokedAt = live.CreatedAt
	revoked := Client{RevokedAt: &revokedAt}
	require.True(t, revoked.IsRevoked())
}
