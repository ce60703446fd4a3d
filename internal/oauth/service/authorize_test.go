package service

import (
	"context"
	"testing"
	"time"

	"github.com/oauth2gate/authd/internal/oauth/domain"
	"github.com/oauth2gate/authd/internal/oauth/oautherr"
	"github.com/oauth2gate/authd/internal/oauth/store/drivers/sqlite"
	"github.com/oauth2gate/authd/pkg/idx"
	"github.com/stretchr/testify/require"
)

const testDialogHMACKey = "authorize-dialog-key"

func newAuthorizeTestEnv(t *testing.T) (*AuthorizeService, *ClientRegistry, *stubAuthenticator) {
	t.Helper()
	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	auth := &stubAuthenticator{username: "alice", password: "correct horse", subject: "user-alice", scope: "profile:read"}

	svc := &AuthorizeService{
		Store:         st,
		CodeTTL:       5 * time.Minute,
		DialogHMACKey: testDialogHMACKey,
		Authenticator: auth,
	}
	registry := &ClientRegistry{
		Store:         st,
		HMACAlgorithm: testHMACAlgorithm,
		HMACKey:       testHMACKey,
		IDGenerator:   func() string { return idx.New().String() },
	}
	return svc, registry, auth
}

func TestBeginAuthorizationHandsOffToDialog(t *testing.T) {
	t.Parallel()
	svc, registry, _ := newAuthorizeTestEnv(t)

	client, err := registry.CreateClient(context.Background(), ClientDraft{
		Name: "spa-authorize", Profile: domain.ProfileUserAgent, Internal: false,
		RedirectURIs: []string{"https://app.example/callback"},
		Domaine:      "app.example",
		Scope:        "profile:read",
	})
	require.NoError(t, err)

	result, err := svc.BeginAuthorization(context.Background(), BeginAuthorizeRequest{
		ResponseType: "code",
		ClientID:     client.ClientID,
		RedirectURI:  "https://app.example/callback",
		Scope:        "profile:read",
		State:        "xyz",
	})
	require.NoError(t, err)
	require.Equal(t, OutcomeDialog, result.Outcome)
	require.NotEmpty(t, result.DialogPayload)
}

func TestBeginAuthorizationRejectsUnregisteredRedirect(t *testing.T) {
	t.Parallel()
	svc, registry, _ := newAuthorizeTestEnv(t)

	client, err := registry.CreateClient(context.Background(), ClientDraft{
		Name: "spa-authorize-2", Profile: domain.ProfileUserAgent, Internal: false,
		RedirectURIs: []string{"https://app.example/callback"},
		Domaine:      "app2.example",
		Scope:        "profile:read",
	})
	require.NoError(t, err)

	result, err := svc.BeginAuthorization(context.Background(), BeginAuthorizeRequest{
		ResponseType: "code",
		ClientID:     client.ClientID,
		RedirectURI:  "https://evil.example/callback",
	})
	require.NoError(t, err)
	require.Equal(t, OutcomeErrorPage, result.Outcome)
}

func TestBeginAuthorizationRejectsScopeOutsideClient(t *testing.T) {
	t.Parallel()
	svc, registry, _ := newAuthorizeTestEnv(t)

	client, err := registry.CreateClient(context.Background(), ClientDraft{
		Name: "spa-authorize-3", Profile: domain.ProfileUserAgent, Internal: false,
		RedirectURIs: []string{"https://app.example/callback"},
		Domaine:      "app3.example",
		Scope:        "profile:read",
	})
	require.NoError(t, err)

	result, err := svc.BeginAuthorization(context.Background(), BeginAuthorizeRequest{
		ResponseType: "code",
		ClientID:     client.ClientID,
		RedirectURI:  "https://app.example/callback",
		Scope:        "admin:write",
		State:        "xyz",
	})
	require.NoError(t, err)
	require.Equal(t, OutcomeRedirect, result.Outcome)
	require.Equal(t, oautherr.InvalidScope, result.ErrorCode)
}

func TestCompleteAuthorizationIssuesCode(t *testing.T) {
	t.Parallel()
	svc, registry, _ := newAuthorizeTestEnv(t)

	client, err := registry.CreateClient(context.Background(), ClientDraft{
		Name: "spa-complete", Profile: domain.ProfileUserAgent, Internal: false,
		RedirectURIs: []string{"https://app.example/callback"},
		Domaine:      "app4.example",
		Scope:        "profile:read",
	})
	require.NoError(t, err)

	begin, err := svc.BeginAuthorization(context.Background(), BeginAuthorizeRequest{
		ResponseType: "code",
		ClientID:     client.ClientID,
		RedirectURI:  "https://app.example/callback",
		State:        "xyz",
	})
	require.NoError(t, err)
	require.Equal(t, OutcomeDialog, begin.Outcome)

	complete, err := svc.CompleteAuthorization(context.Background(), DialogDecision{
		Payload:  begin.DialogPayload,
		Username: "alice",
		Password: "correct horse",
	})
	require.NoError(t, err)
	require.Equal(t, OutcomeRedirect, complete.Outcome)
	require.NotEmpty(t, complete.Code)
	require.Equal(t, "xyz", complete.State)
	require.Empty(t, complete.ErrorCode)
}

func TestCompleteAuthorizationHonorsCancellation(t *testing.T) {
	t.Parallel()
	svc, registry, _ := newAuthorizeTestEnv(t)

	client, err := registry.CreateClient(context.Background(), ClientDraft{
		Name: "spa-cancel", Profile: domain.ProfileUserAgent, Internal: false,
		RedirectURIs: []string{"https://app.example/callback"},
		Domaine:      "app5.example",
		Scope:        "profile:read",
	})
	require.NoError(t, err)

	begin, err := svc.BeginAuthorization(context.Background(), BeginAuthorizeRequest{
		ResponseType: "code", ClientID: client.ClientID,
		RedirectURI: "https://app.example/callback", State: "xyz",
	})
	require.NoError(t, err)

	complete, err := svc.CompleteAuthorization(context.Background(), DialogDecision{
		Payload: begin.DialogPayload,
		Cancel:  true,
	})
	require.NoError(t, err)
	require.Equal(t, OutcomeRedirect, complete.Outcome)
	require.Equal(t, oautherr.AccessDenied, complete.ErrorCode)
}

func TestCompleteAuthorizationRejectsBadCredentials(t *testing.T) {
	t.Parallel()
	svc, registry, _ := newAuthorizeTestEnv(t)

	client, err := registry.CreateClient(context.Background(), ClientDraft{
		Name: "spa-badcreds", Profile: domain.ProfileUserAgent, Internal: false,
		RedirectURIs: []string{"https://app.example/callback"},
		Domaine:      "app6.example",
		Scope:        "profile:read",
	})
	require.NoError(t, err)

	begin, err := svc.BeginAuthorization(context.Background(), BeginAuthorizeRequest{
		ResponseType: "code", ClientID: client.ClientID,
		RedirectURI: "https://app.example/callback", State: "xyz",
	})
	require.NoError(t, err)

	complete, err := svc.CompleteAuthorization(context.Background(), DialogDecision{
		Payload:  begin.DialogPayload,
		Username: "alice",
		Password: "wrong",
	})
	require.NoError(t, err)
	require.Equal(t, OutcomeRedirect, complete.Outcome)
	require.Equal(t, oautherr.AccessDenied, complete.ErrorCode)
}

func TestCompleteAuthorizationRejectsTamperedPayload(t *testing.T) {
	t.Parallel()
	svc, _, _ := newAuthorizeTestEnv(t)

	complete, err := svc.CompleteAuthorization(context.Background(), DialogDecision{
		Payload:  "not-a-real-payload",
		Username: "alice",
		Password: "correct horse",
	})
	require.NoError(t, err)
	require.Equal(t, OutcomeErrorPage, complete.Outcome)
}
