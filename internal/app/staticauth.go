package app

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/oauth2gate/authd/internal/oauth/service"
	"github.com/oauth2gate/authd/pkg/cryptox"
)

// staticUserAuthenticator is a minimal, seed-only UserAuthenticator: user
// and account management are an external collaborator this system does not
// own. It exists so the authorization server can run end-to-end without a
// real account service plugged in; a deployment wires its own
// service.UserAuthenticator implementation over its actual user store.
type staticUserAuthenticator struct {
	mu    sync.RWMutex
	users map[string]staticUser
}

type staticUser struct {
	subject      string
	passwordHash string
	scope        string
}

// newStaticUserAuthenticator seeds accounts from OAUTH_SEED_USERS, a
// semicolon-separated list of "username:password:scope" triples. It is
// meant for local development and the scenarios in SPEC_FULL.md's testable
// properties, never for production account storage.
func newStaticUserAuthenticator() (*staticUserAuthenticator, error) {
	a := &staticUserAuthenticator{users: make(map[string]staticUser)}

	seed := os.Getenv("OAUTH_SEED_USERS")
	if seed == "" {
		return a, nil
	}

	for _, entry := range strings.Split(seed, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 {
			continue
		}
		hash, err := cryptox.HashPassword(parts[1])
		if err != nil {
			return nil, err
		}
		a.users[parts[0]] = staticUser{subject: parts[0], passwordHash: hash, scope: parts[2]}
	}

	return a, nil
}

func (a *staticUserAuthenticator) Authenticate(ctx context.Context, username, password string) (string, string, error) {
	a.mu.RLock()
	u, ok := a.users[username]
	a.mu.RUnlock()
	if !ok {
		return "", "", service.ErrAuthenticationFailed
	}
	if err := cryptox.VerifyPassword(password, u.passwordHash); err != nil {
		return "", "", service.ErrAuthenticationFailed
	}
	return u.subject, u.scope, nil
}

var _ service.UserAuthenticator = (*staticUserAuthenticator)(nil)
