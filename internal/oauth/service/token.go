package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oauth2gate/authd/internal/oauth/domain"
	"github.com/oauth2gate/authd/internal/oauth/oautherr"
	"github.com/oauth2gate/authd/internal/oauth/store"
	"github.com/oauth2gate/authd/pkg/cryptox"
	"github.com/oauth2gate/authd/pkg/jwtx"
)

// TokenRequest is the parsed, not-yet-validated body of a POST
// /oauth/token request, regardless of which grant it names.
type TokenRequest struct {
	GrantType    string
	ClientID     string
	ClientSecret string
	Scope        string

	// authorization_code
	Code         string
	RedirectURI  string
	CodeVerifier string

	// password
	Username string
	Password string

	// refresh_token
	RefreshToken string

	Meta RequestMetadata
}

// TokenService implements the back-channel token endpoint: client
// authentication followed by dispatch on grant_type.
type TokenService struct {
	Store         store.Store
	Factory       *TokenFactory
	Verifier      jwtx.Verifier
	HMACAlgorithm string
	HMACKey       string
	Authenticator UserAuthenticator
}

// Exchange runs the common preamble against req and dispatches to the
// grant-specific handler.
func (s *TokenService) Exchange(ctx context.Context, req TokenRequest) (*IssuedTokens, *oautherr.Error) {
	clientID := strings.TrimSpace(req.ClientID)
	if clientID == "" {
		return nil, oautherr.InvalidRequestf("client_id is required")
	}

	client, err := s.Store.Clients().GetClientByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, oautherr.InvalidClientf("unknown client")
		}
		return nil, oautherr.ServerErrorf("load client: %v", err)
	}
	if client.IsRevoked() {
		return nil, oautherr.InvalidClientf("client has been revoked")
	}

	if scope := strings.TrimSpace(req.Scope); scope != "" && !ValidateScope(client, scope) {
		return nil, oautherr.InvalidScopef("requested scope exceeds the client's declared scope")
	}

	if client.Type == domain.TypeConfidential {
		if req.ClientSecret == "" {
			return nil, oautherr.InvalidRequestf("client_secret is required for confidential clients")
		}
		ok, err := cryptox.VerifyClientSecret(s.HMACAlgorithm, s.HMACKey, client.ClientID, req.ClientSecret)
		if err != nil {
			return nil, oautherr.ServerErrorf("verify client secret: %v", err)
		}
		if !ok {
			return nil, oautherr.InvalidClientf("client secret does not verify")
		}
	}

	switch req.GrantType {
	case string(domain.GrantAuthorizationCode):
		return s.exchangeAuthorizationCode(ctx, client, req)
	case string(domain.GrantClientCredentials):
		return s.exchangeClientCredentials(ctx, client, req)
	case string(domain.GrantPassword):
		return s.exchangePassword(ctx, client, req)
	case string(domain.GrantRefreshToken):
		return s.exchangeRefreshToken(ctx, client, req)
	default:
		return nil, oautherr.UnsupportedGrantTypef("unsupported grant_type %q", req.GrantType)
	}
}

func (s *TokenService) exchangeAuthorizationCode(ctx context.Context, client domain.Client, req TokenRequest) (*IssuedTokens, *oautherr.Error) {
	code := strings.TrimSpace(req.Code)
	if code == "" || req.RedirectURI == "" {
		return nil, oautherr.InvalidRequestf("code and redirect_uri are required")
	}

	pending, err := s.Store.AuthorizationCodes().GetByClientAndCode(ctx, client.ClientID, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, oautherr.InvalidGrantf("unknown authorization code")
		}
		return nil, oautherr.ServerErrorf("load authorization code: %v", err)
	}

	now := time.Now().UTC()
	if pending.IsExpired(now) {
		return nil, oautherr.InvalidGrantf("authorization code has expired")
	}
	if pending.IsRevoked() {
		return nil, oautherr.InvalidGrantf("authorization code already redeemed")
	}
	if pending.RedirectURI != req.RedirectURI {
		return nil, oautherr.InvalidGrantf("redirect_uri does not match the original request")
	}
	if pending.HasPKCE() {
		if req.CodeVerifier == "" {
			return nil, oautherr.InvalidRequestf("code_verifier is required")
		}
		if !cryptox.VerifyPKCE(pending.CodeChallenge, pending.CodeChallengeMethod, req.CodeVerifier) {
			return nil, oautherr.InvalidGrantf("code_verifier does not match code_challenge")
		}
	}

	// AuthorizationCode revocation must commit before the token response,
	// expressed as a conditional update so a concurrent redemption of the
	// same code can succeed at most once.
	revoked, err := s.Store.AuthorizationCodes().RevokeIfLive(ctx, client.ClientID, code)
	if err != nil {
		return nil, oautherr.ServerErrorf("revoke authorization code: %v", err)
	}
	if !revoked {
		return nil, oautherr.InvalidGrantf("authorization code already redeemed")
	}

	tokens, tokErr := s.Factory.NewAccessToken(ctx, client, domain.GrantAuthorizationCode, pending.Scope, pending.UserID, req.Meta)
	if tokErr != nil {
		return nil, tokErr
	}
	return tokens, nil
}

func (s *TokenService) exchangeClientCredentials(ctx context.Context, client domain.Client, req TokenRequest) (*IssuedTokens, *oautherr.Error) {
	if client.Type != domain.TypeConfidential {
		return nil, oautherr.UnauthorizedClientf("client_credentials requires a confidential client")
	}

	scope := MergeScope(client.Scope, req.Scope, client)
	tokens, tokErr := s.Factory.NewAccessToken(ctx, client, domain.GrantClientCredentials, scope, client.ClientID, req.Meta)
	if tokErr != nil {
		return nil, tokErr
	}
	return tokens, nil
}

func (s *TokenService) exchangePassword(ctx context.Context, client domain.Client, req TokenRequest) (*IssuedTokens, *oautherr.Error) {
	if req.Username == "" || req.Password == "" {
		return nil, oautherr.InvalidRequestf("username and password are required")
	}

	subject, subjectScope, err := s.Authenticator.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, oautherr.InvalidGrantf("invalid resource owner credentials")
	}

	scope := MergeScope(subjectScope, req.Scope, client)
	tokens, tokErr := s.Factory.NewAccessToken(ctx, client, domain.GrantPassword, scope, subject, req.Meta)
	if tokErr != nil {
		return nil, tokErr
	}
	return tokens, nil
}

func (s *TokenService) exchangeRefreshToken(ctx context.Context, client domain.Client, req TokenRequest) (*IssuedTokens, *oautherr.Error) {
	if req.RefreshToken == "" {
		return nil, oautherr.InvalidRequestf("refresh_token is required")
	}

	claims, err := s.Verifier.Verify(req.RefreshToken)
	if err != nil {
		return nil, oautherr.InvalidGrantf("refresh_token signature is invalid")
	}

	refreshRecord, err := s.Store.RefreshTokens().GetByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, oautherr.InvalidGrantf("unknown refresh token")
		}
		return nil, oautherr.ServerErrorf("load refresh token: %v", err)
	}

	now := time.Now().UTC()
	if refreshRecord.IsExpired(now) {
		return nil, oautherr.InvalidGrantf("refresh token has expired")
	}
	if refreshRecord.IsRevoked() {
		return nil, oautherr.InvalidGrantf("refresh token has been revoked")
	}

	accessRecord, err := s.Store.AccessTokens().GetByID(ctx, refreshRecord.AccessTokenID)
	if err != nil {
		return nil, oautherr.ServerErrorf("load paired access token: %v", err)
	}
	if accessRecord.Client != client.ClientID {
		return nil, oautherr.InvalidGrantf("refresh token was not issued to this client")
	}

	scope := accessRecord.Scope
	if requested := strings.TrimSpace(req.Scope); requested != "" {
		if !IsSubsetScope(requested, accessRecord.Scope) {
			return nil, oautherr.InvalidScopef("requested scope exceeds the original token's scope")
		}
		scope = requested
	}

	// The paired AccessToken and RefreshToken are both revoked and the
	// replacement pair minted inside one transaction, per invariant (5): a
	// RefreshToken is issued iff the predecessor pair is retired at
	// rotation, and neither may be observed to have happened without the
	// other.
	var tokens *IssuedTokens
	txErr := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.AccessTokens().RevokeIfLive(ctx, accessRecord.ID); err != nil {
			return err
		}
		if err := tx.RefreshTokens().RevokeByAccessTokenID(ctx, accessRecord.ID); err != nil {
			return err
		}

		// Eligibility was already established when the predecessor pair was
		// minted; re-check against the original grant rather than
		// GrantRefreshToken, which never appears in a client's derived
		// grant set.
		minted, tokErr := s.Factory.newAccessTokenIn(ctx, tx, client, domain.GrantType(accessRecord.Name), scope, accessRecord.UserID, req.Meta)
		if tokErr != nil {
			return &oautherrWrapped{tokErr}
		}
		tokens = minted
		return nil
	})
	if txErr != nil {
		var wrapped *oautherrWrapped
		if errors.As(txErr, &wrapped) {
			return nil, wrapped.err
		}
		return nil, oautherr.ServerErrorf("rotate refresh token: %v", txErr)
	}
	return tokens, nil
}

// oautherrWrapped lets a *oautherr.Error returned from inside a
// store.WithTx closure propagate through the plain error the closure
// signature requires, so the caller can recover the original protocol
// error after the transaction resolves.
type oautherrWrapped struct{ err *oautherr.Error }

func (w *oautherrWrapped) Error() string { return w.err.Description }
