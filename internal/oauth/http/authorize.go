package http

import (
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"

	"github.com/oauth2gate/authd/internal/oauth/service"
	"github.com/oauth2gate/authd/pkg/httpx"
	"github.com/oauth2gate/authd/pkg/slogx"
)

// AuthorizeHandler serves both the front-channel GET /oauth/authorize
// (begins the flow) and the dialog's POST /oauth/authorize (completes it).
type AuthorizeHandler struct {
	AuthorizeService *service.AuthorizeService
	ProviderName     string
}

func (h *AuthorizeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	result, err := h.AuthorizeService.BeginAuthorization(r.Context(), service.BeginAuthorizeRequest{
		ResponseType:        q.Get("response_type"),
		ClientID:            q.Get("client_id"),
		RedirectURI:         q.Get("redirect_uri"),
		Scope:               q.Get("scope"),
		State:               q.Get("state"),
		CodeChallenge:       q.Get("code_challenge"),
		CodeChallengeMethod: q.Get("code_challenge_method"),
	})
	if err != nil {
		slogx.FromContext(r.Context()).Error("begin authorization failed", "err", err)
		writeErrorPage(w, "internal error")
		return
	}

	h.respond(w, r, result)
}

func (h *AuthorizeHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeErrorPage(w, "malformed form body")
		return
	}

	decision := service.DialogDecision{
		Payload:  r.Form.Get("p"),
		Cancel:   r.Form.Get("cancel") != "",
		Username: strings.TrimSpace(r.Form.Get("username")),
		Password: r.Form.Get("password"),
	}

	result, err := h.AuthorizeService.CompleteAuthorization(r.Context(), decision)
	if err != nil {
		slogx.FromContext(r.Context()).Error("complete authorization failed", "err", err)
		writeErrorPage(w, "internal error")
		return
	}

	h.respond(w, r, result)
}

func (h *AuthorizeHandler) respond(w http.ResponseWriter, r *http.Request, result *service.AuthorizeResult) {
	switch result.Outcome {
	case service.OutcomeErrorPage:
		writeErrorPage(w, result.ErrorPageMessage)
	case service.OutcomeDialog:
		http.Redirect(w, r, "/oauth/dialog?p="+url.QueryEscape(result.DialogPayload), http.StatusFound)
	case service.OutcomeRedirect:
		http.Redirect(w, r, buildRedirect(result), http.StatusFound)
	default:
		writeErrorPage(w, "unexpected outcome")
	}
}

func buildRedirect(result *service.AuthorizeResult) string {
	u, err := url.Parse(result.RedirectURI)
	if err != nil {
		return result.RedirectURI
	}
	q := u.Query()
	if result.ErrorCode != "" {
		q.Set("error", result.ErrorCode)
		if result.ErrorDesc != "" {
			q.Set("error_description", result.ErrorDesc)
		}
	} else {
		q.Set("code", result.Code)
	}
	if result.State != "" {
		q.Set("state", result.State)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func writeErrorPage(w http.ResponseWriter, message string) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	fmt.Fprintf(w, "<!doctype html><title>Authorization error</title><h1>Authorization error</h1><p>%s</p>", html.EscapeString(message))
}

// DialogHandler serves GET /oauth/dialog?p=<b64>: the login form the
// authorize flow redirects to. Rendering a real login experience is a
// concern the deployment owns; this handler fulfils only the contract the
// dialog's POST depends on — carrying the opaque payload back unmodified.
type DialogHandler struct {
	DialogHMACKey string
	ProviderName  string
}

func (h *DialogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	payload := r.URL.Query().Get("p")
	if _, err := service.DecodeDialogPayload(h.DialogHMACKey, payload); err != nil {
		writeErrorPage(w, "invalid or expired authorization request")
		return
	}

	httpx.NoCache(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!doctype html>
<title>%s</title>
<h1>Sign in to %s</h1>
<form method="post" action="/oauth/authorize">
<input type="hidden" name="p" value="%s">
<label>Username <input type="text" name="username"></label>
<label>Password <input type="password" name="password"></label>
<button type="submit">Sign in</button>
<button type="submit" name="cancel" value="1">Cancel</button>
</form>`, html.EscapeString(h.ProviderName), html.EscapeString(h.ProviderName), html.EscapeString(payload))
}
