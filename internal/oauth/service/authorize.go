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
)

// AuthorizeOutcome distinguishes the three shapes a front-channel step can
// resolve to, per the component design: an untrusted-redirect error page,
// a redirect to the registered redirect_uri carrying either a code or a
// protocol error, and a hand-off to the login dialog.
type AuthorizeOutcome int

const (
	OutcomeErrorPage AuthorizeOutcome = iota
	OutcomeRedirect
	OutcomeDialog
)

// BeginAuthorizeRequest carries the raw query parameters of GET
// /oauth/authorize; BeginAuthorization validates them.
type BeginAuthorizeRequest struct {
	ResponseType        string
	ClientID            string
	RedirectURI         string
	Scope               string
	State               string
	CodeChallenge       string
	CodeChallengeMethod string
}

// AuthorizeResult is the result of a front-channel step, translated to an
// HTTP response by the http package's authorize handler.
type AuthorizeResult struct {
	Outcome AuthorizeOutcome

	// Populated for OutcomeErrorPage: rendered directly, no redirect,
	// because redirect_uri is not yet trusted.
	ErrorPageMessage string

	// Populated for OutcomeRedirect: redirect_uri?code=...&state=... or
	// redirect_uri?error=...&error_description=...&state=...
	RedirectURI string
	Code        string
	State       string
	ErrorCode   string
	ErrorDesc   string

	// Populated for OutcomeDialog: the opaque, HMAC-authenticated payload
	// for the /oauth/dialog?p=<payload> redirect.
	DialogPayload string
}

// AuthorizeService implements the front-channel authorize endpoint.
type AuthorizeService struct {
	Store         store.Store
	CodeTTL       time.Duration
	DialogHMACKey string
	Authenticator UserAuthenticator
}

// BeginAuthorization validates the authorize request and, on success,
// persists a pending AuthorizationCode and returns the payload the caller
// should redirect to the login dialog with.
func (s *AuthorizeService) BeginAuthorization(ctx context.Context, req BeginAuthorizeRequest) (*AuthorizeResult, error) {
	if !strings.EqualFold(strings.TrimSpace(req.ResponseType), "code") {
		return &AuthorizeResult{Outcome: OutcomeErrorPage, ErrorPageMessage: "unsupported response_type"}, nil
	}

	client, err := s.Store.Clients().GetClientByID(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &AuthorizeResult{Outcome: OutcomeErrorPage, ErrorPageMessage: "unknown client"}, nil
		}
		return nil, err
	}
	if client.IsRevoked() {
		return &AuthorizeResult{Outcome: OutcomeErrorPage, ErrorPageMessage: "client has been revoked"}, nil
	}

	if !redirectURIRegistered(client, req.RedirectURI) {
		return &AuthorizeResult{Outcome: OutcomeErrorPage, ErrorPageMessage: "redirect_uri is not registered for this client"}, nil
	}

	if !ValidateScope(client, req.Scope) {
		return &AuthorizeResult{
			Outcome:     OutcomeRedirect,
			RedirectURI: req.RedirectURI,
			State:       req.State,
			ErrorCode:   oautherr.InvalidScope,
			ErrorDesc:   "requested scope exceeds the client's declared scope",
		}, nil
	}

	if err := validateCodeChallengeMethod(req.CodeChallengeMethod); err != nil {
		return &AuthorizeResult{
			Outcome:     OutcomeRedirect,
			RedirectURI: req.RedirectURI,
			State:       req.State,
			ErrorCode:   oautherr.InvalidRequest,
			ErrorDesc:   err.Error(),
		}, nil
	}

	code, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ttl := s.CodeTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	record := domain.AuthorizationCode{
		ClientID:            client.ClientID,
		AuthorizationCode:   code,
		RedirectURI:         req.RedirectURI,
		State:               req.State,
		Scope:               strings.TrimSpace(req.Scope),
		CodeChallenge:       req.CodeChallenge,
		CodeChallengeMethod: req.CodeChallengeMethod,
		ExpiresAt:           now.Add(ttl),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if _, err := s.Store.AuthorizationCodes().CreateAuthorizationCode(ctx, record); err != nil {
		return nil, err
	}

	payload, err := EncodeDialogPayload(s.DialogHMACKey, DialogPayload{ClientID: client.ClientID, Code: code})
	if err != nil {
		return nil, err
	}

	return &AuthorizeResult{Outcome: OutcomeDialog, DialogPayload: payload}, nil
}

// DialogDecision carries the login dialog's outcome back to the server:
// either a credential to authenticate, or an explicit cancellation.
type DialogDecision struct {
	Payload  string
	Cancel   bool
	Username string
	Password string
}

// CompleteAuthorization implements step 6 of the component design: the
// dialog POSTs a credential; on success the AuthorizationCode is attached
// to the authenticated subject and the caller redirects with ?code=&state=;
// on cancellation it redirects with ?error=access_denied.
func (s *AuthorizeService) CompleteAuthorization(ctx context.Context, decision DialogDecision) (*AuthorizeResult, error) {
	p, err := DecodeDialogPayload(s.DialogHMACKey, decision.Payload)
	if err != nil {
		return &AuthorizeResult{Outcome: OutcomeErrorPage, ErrorPageMessage: "invalid or tampered dialog payload"}, nil
	}

	pending, err := s.Store.AuthorizationCodes().GetByClientAndCode(ctx, p.ClientID, p.Code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &AuthorizeResult{Outcome: OutcomeErrorPage, ErrorPageMessage: "authorization request not found"}, nil
		}
		return nil, err
	}
	if !pending.Redeemable(time.Now().UTC()) {
		return &AuthorizeResult{Outcome: OutcomeErrorPage, ErrorPageMessage: "authorization request has expired"}, nil
	}

	if decision.Cancel {
		return &AuthorizeResult{
			Outcome:     OutcomeRedirect,
			RedirectURI: pending.RedirectURI,
			State:       pending.State,
			ErrorCode:   oautherr.AccessDenied,
			ErrorDesc:   "resource owner denied the request",
		}, nil
	}

	client, err := s.Store.Clients().GetClientByID(ctx, p.ClientID)
	if err != nil {
		return nil, err
	}

	subject, subjectScope, err := s.Authenticator.Authenticate(ctx, decision.Username, decision.Password)
	if err != nil {
		return &AuthorizeResult{
			Outcome:     OutcomeRedirect,
			RedirectURI: pending.RedirectURI,
			State:       pending.State,
			ErrorCode:   oautherr.AccessDenied,
			ErrorDesc:   "invalid credentials",
		}, nil
	}

	scope := MergeScope(subjectScope, pending.Scope, client)

	if err := s.Store.AuthorizationCodes().AttachSubject(ctx, p.ClientID, p.Code, subject, scope); err != nil {
		return nil, err
	}

	return &AuthorizeResult{
		Outcome:     OutcomeRedirect,
		RedirectURI: pending.RedirectURI,
		Code:        p.Code,
		State:       pending.State,
	}, nil
}

func redirectURIRegistered(client domain.Client, redirectURI string) bool {
	for _, uri := range client.RedirectURIs {
		if uri == redirectURI {
			return true
		}
	}
	return false
}

func validateCodeChallengeMethod(method string) error {
	switch method {
	case "", cryptox.PKCEPlain, cryptox.PKCES256:
		return nil
	default:
		return errors.New("unsupported code_challenge_method")
	}
}
