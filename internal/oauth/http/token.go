package http

import (
	"net/http"
	"strings"

	"github.com/oauth2gate/authd/internal/oauth/oautherr"
	"github.com/oauth2gate/authd/internal/oauth/service"
	"github.com/oauth2gate/authd/pkg/httpx"
	"github.com/oauth2gate/authd/pkg/slogx"
)

// TokenHandler serves POST /oauth/token.
type TokenHandler struct {
	TokenService *service.TokenService
}

func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		oautherr.InvalidRequestf("Content-Type must be application/x-www-form-urlencoded").WriteJSON(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		oautherr.InvalidRequestf("malformed form body").WriteJSON(w)
		return
	}

	clientID, clientSecret := clientCredentialsFromRequest(r)

	req := service.TokenRequest{
		GrantType:    r.Form.Get("grant_type"),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scope:        r.Form.Get("scope"),
		Code:         r.Form.Get("code"),
		RedirectURI:  r.Form.Get("redirect_uri"),
		CodeVerifier: r.Form.Get("code_verifier"),
		Username:     r.Form.Get("username"),
		Password:     r.Form.Get("password"),
		RefreshToken: r.Form.Get("refresh_token"),
		Meta: service.RequestMetadata{
			UserAgent: r.UserAgent(),
		},
	}

	if clientID == "" {
		oautherr.InvalidRequestf("client_id is required").WriteJSON(w)
		return
	}

	tokens, oErr := h.TokenService.Exchange(r.Context(), req)
	if oErr != nil {
		if oErr.Code == oautherr.ServerError {
			slogx.FromContext(r.Context()).Error("token exchange failed", "grant_type", req.GrantType, "err", oErr.Description)
			oErr = oautherr.ServerErrorf("internal server error")
		}
		oErr.WriteJSON(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    tokens.TokenType,
		ExpiresIn:    int(tokens.ExpiresIn.Seconds()),
		Scope:        tokens.Scope,
	})
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope,omitempty"`
}

// clientCredentialsFromRequest extracts client_id/client_secret from HTTP
// Basic auth if present, else from the form body, per RFC 6749 section 2.3.1.
func clientCredentialsFromRequest(r *http.Request) (clientID, clientSecret string) {
	if user, pass, ok := r.BasicAuth(); ok {
		return user, pass
	}
	return strings.TrimSpace(r.Form.Get("client_id")), r.Form.Get("client_secret")
}
