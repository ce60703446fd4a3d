package http

import (
	"net/http"

	"github.com/oauth2gate/authd/pkg/httpx"
)

// CallbackHandler serves GET /oauth/callback: a diagnostic endpoint that
// echoes back whatever query parameters it received, useful when exercising
// the authorization_code flow against a redirect_uri that has no real
// client behind it.
func CallbackHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	params := make(map[string]string, len(query))
	for k := range query {
		params[k] = query.Get(k)
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"received": params})
}
