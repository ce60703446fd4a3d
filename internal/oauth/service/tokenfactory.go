package service

import (
	"context"
	"time"

	"github.com/oauth2gate/authd/internal/oauth/domain"
	"github.com/oauth2gate/authd/internal/oauth/oautherr"
	"github.com/oauth2gate/authd/internal/oauth/store"
	"github.com/oauth2gate/authd/pkg/jwtx"
)

// RequestMetadata is the request-scoped data the token factory needs but
// must not read from a global: the caller's user-agent string and the
// server's own base URL (used to populate iss; when BaseURL is empty,
// TokenFactory.Issuer is used instead).
type RequestMetadata struct {
	UserAgent string
	BaseURL   string
}

// IssuedTokens is the response shape returned to a token endpoint on
// success: the signed access token, always, and a signed refresh token
// when the grant and client type call for one.
type IssuedTokens struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    time.Duration
	Scope        string
}

// TokenFactory mints signed access and refresh tokens and persists their
// backing records. It is the single place that decides refresh-token
// eligibility and computes token lifetimes.
type TokenFactory struct {
	Store       store.Store
	Signer      jwtx.Signer
	Issuer      string
	TokenType   string
	IDGenerator func() string
	AccessTTL   TTLTable
	RefreshTTL  TTLTable
}

// NewAccessToken implements the token factory entry point described in the
// component design: verify the grant is authorized for client, persist an
// AccessToken, sign its JWT, and conditionally mint a paired RefreshToken.
func (f *TokenFactory) NewAccessToken(
	ctx context.Context,
	client domain.Client,
	grant domain.GrantType,
	scope string,
	subject string,
	meta RequestMetadata,
) (*IssuedTokens, *oautherr.Error) {
	return f.newAccessTokenIn(ctx, f.Store, client, grant, scope, subject, meta)
}

// newAccessTokenIn is NewAccessToken parameterized on the store, so a caller
// that needs the mint to participate in an existing transaction (refresh
// rotation) can pass a Tx-scoped Store instead of f.Store.
func (f *TokenFactory) newAccessTokenIn(
	ctx context.Context,
	st store.Store,
	client domain.Client,
	grant domain.GrantType,
	scope string,
	subject string,
	meta RequestMetadata,
) (*IssuedTokens, *oautherr.Error) {
	if !client.HasGrant(grant) {
		return nil, oautherr.UnauthorizedClientf("client is not authorized for grant %q", grant)
	}

	accessTTL, ok := f.AccessTTL.Lookup(client)
	if !ok {
		return nil, oautherr.ServerErrorf("no access token TTL configured for client class")
	}

	now := time.Now().UTC()
	accessRecord := domain.AccessToken{
		ID:        f.IDGenerator(),
		Client:    client.ClientID,
		UserID:    subject,
		Name:      string(grant),
		Scope:     scope,
		ExpiresAt: now.Add(accessTTL),
		UserAgent: meta.UserAgent,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// The AccessToken record must be durable before the JWT is returned:
	// its jti is the record's identifier, and a client presenting the JWT
	// before the record commits would be rejected as unknown.
	accessRecord, err := st.AccessTokens().CreateAccessToken(ctx, accessRecord)
	if err != nil {
		return nil, oautherr.ServerErrorf("persist access token: %v", err)
	}

	issuer := f.Issuer
	if meta.BaseURL != "" {
		issuer = meta.BaseURL
	}
	azp := client.AZP()
	accessClaims := jwtx.NewClaims(issuer, azp, client.ClientID, subject, accessRecord.ID, scope, accessRecord.ExpiresAt)
	accessJWT, signErr := f.Signer.Sign(accessClaims)
	if signErr != nil {
		return nil, oautherr.ServerErrorf("sign access token: %v", signErr)
	}

	result := &IssuedTokens{
		AccessToken: accessJWT,
		TokenType:   f.TokenType,
		ExpiresIn:   accessTTL,
		Scope:       scope,
	}

	if domain.AllowsRefreshFor(client.Type, grant) {
		refreshTTL, ok := f.RefreshTTL.Lookup(client)
		if !ok {
			return nil, oautherr.ServerErrorf("no refresh token TTL configured for client class")
		}

		refreshRecord := domain.RefreshToken{
			ID:            f.IDGenerator(),
			AccessTokenID: accessRecord.ID,
			ExpiresAt:     now.Add(refreshTTL),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		refreshRecord, err := st.RefreshTokens().CreateRefreshToken(ctx, refreshRecord)
		if err != nil {
			return nil, oautherr.ServerErrorf("persist refresh token: %v", err)
		}

		refreshClaims := jwtx.NewClaims(issuer, azp, client.ClientID, subject, refreshRecord.ID, "", refreshRecord.ExpiresAt)
		refreshJWT, signErr := f.Signer.Sign(refreshClaims)
		if signErr != nil {
			return nil, oautherr.ServerErrorf("sign refresh token: %v", signErr)
		}
		result.RefreshToken = refreshJWT
	}

	return result, nil
}
