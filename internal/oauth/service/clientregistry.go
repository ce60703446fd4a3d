package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/oauth2gate/authd/internal/oauth/domain"
	"github.com/oauth2gate/authd/internal/oauth/store"
	"github.com/oauth2gate/authd/pkg/cryptox"
)

// ClientDraft is the input an admin channel supplies to register a client.
// It carries only what a caller chooses; every derived field is computed by
// normalize, never accepted from the draft.
type ClientDraft struct {
	Name         string
	Profile      domain.ClientProfile
	Internal     bool
	RedirectURIs []string
	Scope        string
	Domaine      string
	Logo         string
	Description  string
}

// ClientRegistry validates and persists new clients. Its write path always
// routes through normalize so that clientType, secretKey presence, and
// grants are computed the same way regardless of caller.
type ClientRegistry struct {
	Store         store.Store
	HMACAlgorithm string
	HMACKey       string
	IDGenerator   func() string
}

// normalize computes every derived field of a Client from a validated draft.
// It is a pure function so tests can exercise the derivation without a live
// store; ClientRegistry.CreateClient calls it immediately before handing the
// client to the store.
func normalize(clientID string, draft ClientDraft, hmacAlgorithm, hmacKey string, now time.Time) (domain.Client, error) {
	clientType := domain.DeriveType(draft.Profile)
	grants := domain.DeriveGrants(clientType, draft.Internal)

	c := domain.Client{
		ClientID:     clientID,
		Name:         strings.TrimSpace(draft.Name),
		Profile:      draft.Profile,
		Type:         clientType,
		Internal:     draft.Internal,
		Grants:       grants,
		RedirectURIs: draft.RedirectURIs,
		Scope:        strings.TrimSpace(draft.Scope),
		Domaine:      strings.TrimSpace(draft.Domaine),
		Logo:         draft.Logo,
		Description:  draft.Description,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if clientType == domain.TypeConfidential {
		secret, err := cryptox.DeriveClientSecret(hmacAlgorithm, hmacKey, clientID)
		if err != nil {
			return domain.Client{}, fmt.Errorf("derive client secret: %w", err)
		}
		c.SecretKey = secret
	}

	if err := validateClientDraft(c); err != nil {
		return domain.Client{}, err
	}

	return c, nil
}

func validateClientDraft(c domain.Client) error {
	if c.Name == "" {
		return fmt.Errorf("client: name is required")
	}
	if c.Profile == domain.ProfileWeb || c.Profile == domain.ProfileUserAgent {
		if c.Domaine == "" {
			return fmt.Errorf("client: domaine is required for profile %q", c.Profile)
		}
	}
	for _, uri := range c.RedirectURIs {
		u, err := url.Parse(uri)
		if err != nil || !u.IsAbs() {
			return fmt.Errorf("client: redirect_uri %q is not a valid absolute URL", uri)
		}
	}
	if !c.Internal {
		if c.Scope == "" {
			return fmt.Errorf("client: non-internal client must declare a non-empty scope")
		}
		if c.Scope == wildcardScope {
			return fmt.Errorf("client: non-internal client may not declare wildcard scope")
		}
	}
	return nil
}

// CreateClient validates draft, derives every computed field, and persists
// the result. Validation failures surface to the caller (the admin channel
// that wrote the client), never to an OAuth client.
func (r *ClientRegistry) CreateClient(ctx context.Context, draft ClientDraft) (domain.Client, error) {
	id := r.IDGenerator()
	now := time.Now().UTC()

	client, err := normalize(id, draft, r.HMACAlgorithm, r.HMACKey, now)
	if err != nil {
		return domain.Client{}, err
	}

	created, err := r.Store.Clients().CreateClient(ctx, client)
	if err != nil {
		return domain.Client{}, err
	}
	return created, nil
}
