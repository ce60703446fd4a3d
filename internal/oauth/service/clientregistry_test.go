package service

import (
	"context"
	"testing"

	"github.com/oauth2gate/authd/internal/oauth/domain"
	"github.com/oauth2gate/authd/internal/oauth/store"
	"github.com/oauth2gate/authd/internal/oauth/store/drivers/sqlite"
	"github.com/oauth2gate/authd/pkg/cryptox"
	"github.com/oauth2gate/authd/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) (*ClientRegistry, store.Store) {
	t.Helper()
	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	return &ClientRegistry{
		Store:         st,
		HMACAlgorithm: testHMACAlgorithm,
		HMACKey:       testHMACKey,
		IDGenerator:   func() string { return idx.New().String() },
	}, st
}

func TestCreateClientDerivesConfidentialSecret(t *testing.T) {
	t.Parallel()
	registry, _ := newTestRegistry(t)

	c, err := registry.CreateClient(context.Background(), ClientDraft{
		Name: "web-dashboard", Profile: domain.ProfileWeb, Internal: true,
		RedirectURIs: []string{"https://dash.example/callback"},
		Domaine:      "dash.example",
		Scope:        "*",
	})
	require.NoError(t, err)
	require.Equal(t, domain.TypeConfidential, c.Type)
	require.NotEmpty(t, c.SecretKey)

	expected, err := cryptox.DeriveClientSecret(testHMACAlgorithm, testHMACKey, c.ClientID)
	require.NoError(t, err)
	require.Equal(t, expected, c.SecretKey)
}

func TestCreateClientPublicHasNoSecret(t *testing.T) {
	t.Parallel()
	registry, _ := newTestRegistry(t)

	c, err := registry.CreateClient(context.Background(), ClientDraft{
		Name: "mobile-app", Profile: domain.ProfileNative, Internal: false,
		RedirectURIs: []string{"app://callback"},
		Scope:        "profile:read",
	})
	require.NoError(t, err)
	require.Equal(t, domain.TypePublic, c.Type)
	require.Empty(t, c.SecretKey)
}

func TestCreateClientRequiresDomaineForWebProfile(t *testing.T) {
	t.Parallel()
	registry, _ := newTestRegistry(t)

	_, err := registry.CreateClient(context.Background(), ClientDraft{
		Name: "no-domaine", Profile: domain.ProfileWeb, Internal: true,
		RedirectURIs: []string{"https://example/callback"},
		Scope:        "*",
	})
	require.Error(t, err)
}

func TestCreateClientRejectsWildcardScopeForNonInternal(t *testing.T) {
	t.Parallel()
	registry, _ := newTestRegistry(t)

	_, err := registry.CreateClient(context.Background(), ClientDraft{
		Name: "external-client", Profile: domain.ProfileNative, Internal: false,
		RedirectURIs: []string{"app://callback"},
		Scope:        "*",
	})
	require.Error(t, err)
}

func TestCreateClientRejectsInvalidRedirectURI(t *testing.T) {
	t.Parallel()
	registry, _ := newTestRegistry(t)

	_, err := registry.CreateClient(context.Background(), ClientDraft{
		Name: "bad-redirect", Profile: domain.ProfileNative, Internal: false,
		RedirectURIs: []string{"not-a-url"},
		Scope:        "profile:read",
	})
	require.Error(t, err)
}

func TestCreateClientRejectsDuplicateName(t *testing.T) {
	t.Parallel()
	registry, _ := newTestRegistry(t)

	draft := ClientDraft{
		Name: "duplicate-name", Profile: domain.ProfileNative, Internal: false,
		RedirectURIs: []string{"app://callback"},
		Scope:        "profile:read",
	}
	_, err := registry.CreateClient(context.Background(), draft)
	require.NoError(t, err)

	_, err = registry.CreateClient(context.Background(), draft)
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}
