package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/oauth2gate/authd/internal/oauth/service"
	"github.com/oauth2gate/authd/internal/oauth/store"
	"github.com/oauth2gate/authd/pkg/httpx"
	"github.com/oauth2gate/authd/pkg/slogx"
)

// Router holds shared dependencies for the OAuth2 HTTP surface.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	providerName string

	store store.Store

	AuthorizeService *service.AuthorizeService
	TokenService     *service.TokenService
	DialogHMACKey    string
}

func NewRouter(buildVersion, providerName string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		providerName: providerName,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}
	return r
}

// ApplyRoutes registers every handler. Call once, after every service
// field on Router has been set.
func (r *Router) ApplyRoutes() {
	authorizeHandler := &AuthorizeHandler{
		AuthorizeService: r.AuthorizeService,
		ProviderName:     r.providerName,
	}
	r.Mux.HandleFunc("GET /oauth/authorize", authorizeHandler.HandleGet)
	r.Mux.HandleFunc("POST /oauth/authorize", authorizeHandler.HandlePost)

	dialogHandler := &DialogHandler{
		DialogHMACKey: r.DialogHMACKey,
		ProviderName:  r.providerName,
	}
	r.Mux.Handle("GET /oauth/dialog", dialogHandler)

	tokenHandler := &TokenHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /oauth/token", tokenHandler)

	r.Mux.HandleFunc("GET /oauth/callback", CallbackHandler)

	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}

// ServeHTTP implements http.Handler and applies the shared middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}
