package service

import (
	"testing"

	"github.com/oauth2gate/authd/internal/oauth/domain"
	"github.com/stretchr/testify/require"
)

func TestValidateScope(t *testing.T) {
	t.Parallel()

	t.Run("empty request is always valid", func(t *testing.T) {
		require.True(t, ValidateScope(domain.Client{Scope: "profile:read"}, ""))
	})

	t.Run("wildcard client accepts anything but a bare wildcard request", func(t *testing.T) {
		client := domain.Client{Scope: "*"}
		require.True(t, ValidateScope(client, "admin:write"))
		require.False(t, ValidateScope(client, "*"))
	})

	t.Run("non-wildcard client rejects a wildcard request", func(t *testing.T) {
		client := domain.Client{Scope: "profile:read"}
		require.False(t, ValidateScope(client, "*"))
	})

	t.Run("every requested token must be declared", func(t *testing.T) {
		client := domain.Client{Scope: "profile:read admin:write"}
		require.True(t, ValidateScope(client, "profile:read"))
		require.False(t, ValidateScope(client, "profile:read billing:read"))
	})
}

func TestMergeScope(t *testing.T) {
	t.Parallel()

	t.Run("no request scope falls back to subject intersected with client", func(t *testing.T) {
		client := domain.Client{Scope: "profile:read admin:write"}
		require.Equal(t, "profile:read", MergeScope("profile:read billing:read", "", client))
	})

	t.Run("wildcard client with no request returns subject scope unchanged", func(t *testing.T) {
		client := domain.Client{Scope: "*"}
		require.Equal(t, "profile:read", MergeScope("profile:read", "", client))
	})

	t.Run("wildcard subject with no request returns client scope", func(t *testing.T) {
		client := domain.Client{Scope: "profile:read"}
		require.Equal(t, "profile:read", MergeScope("*", "", client))
	})

	t.Run("request scope intersected with subject scope", func(t *testing.T) {
		client := domain.Client{Scope: "*"}
		require.Equal(t, "profile:read", MergeScope("profile:read admin:write", "profile:read billing:read", client))
	})

	t.Run("wildcard request returns subject scope", func(t *testing.T) {
		client := domain.Client{Scope: "*"}
		require.Equal(t, "profile:read", MergeScope("profile:read", "*", client))
	})

	t.Run("wildcard subject with concrete request returns request", func(t *testing.T) {
		client := domain.Client{Scope: "*"}
		require.Equal(t, "profile:read", MergeScope("*", "profile:read", client))
	})
}

func TestIsSubsetScope(t *testing.T) {
	t.Parallel()

	require.True(t, IsSubsetScope("profile:read", "profile:read admin:write"))
	require.False(t, IsSubsetScope("profile:read billing:read", "profile:read"))
	require.True(t, IsSubsetScope("anything", "*"))
	require.False(t, IsSubsetScope("*", "profile:read"))
}
