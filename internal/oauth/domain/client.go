package domain

import "time"

// ClientProfile classifies how a client presents itself; it is the input a
// client registers with, and it drives the derived ClientType.
type ClientProfile string

const (
	ProfileWeb       ClientProfile = "web"
	ProfileUserAgent ClientProfile = "user-agent-based"
	ProfileNative    ClientProfile = "native"
)

// ClientType is derived from ClientProfile, never supplied directly:
// web clients are confidential, everything else is public.
type ClientType string

const (
	TypeConfidential ClientType = "confidential"
	TypePublic       ClientType = "public"
)

// GrantType enumerates the OAuth2 grants a client may be authorized for.
type GrantType string

const (
	GrantImplicit          GrantType = "implicit"
	GrantAuthorizationCode GrantType = "authorization_code"
	GrantPassword          GrantType = "password"
	GrantClientCredentials GrantType = "client_credentials"
	GrantRefreshToken      GrantType = "refresh_token"
)

// Client is a registered application permitted to request tokens.
type Client struct {
	ClientID      string
	Name          string
	Profile       ClientProfile
	Type          ClientType  // derived: Profile == web -> confidential, else public
	Internal      bool
	SecretKey     string      // HMAC-derived; present only when Type == confidential
	Grants        []GrantType // derived from Type x Internal

	RedirectURIs []string
	Scope        string // space-separated tokens, or "*"

	Domaine              string // required when Profile in {web, user-agent-based}
	Logo                 string
	Description          string
	LegalTermsAcceptedAt *time.Time

	RevokedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsRevoked reports whether the client has been revoked, which blocks every
// flow that authenticates against it.
func (c *Client) IsRevoked() bool {
	return c.RevokedAt != nil
}

// HasGrant reports whether grant is in the client's derived grant set.
func (c *Client) HasGrant(grant GrantType) bool {
	for _, g := range c.Grants {
		if g == grant {
			return true
		}
	}
	return false
}

// AZP returns the "authorized party" identity used in azp/aud claims:
// the client's domaine when set, otherwise its client_id.
func (c *Client) AZP() string {
	if c.Domaine != "" {
		return c.Domaine
	}
	return c.ClientID
}

// DeriveType computes ClientType from Profile per the fixed mapping in the
// data model: web is confidential, everything else is public.
func DeriveType(profile ClientProfile) ClientType {
	if profile == ProfileWeb {
		return TypeConfidential
	}
	return TypePublic
}

// DeriveGrants computes the grant set for a (type, internal) pair.
func DeriveGrants(t ClientType, internal bool) []GrantType {
	switch {
	case t == TypePublic && internal:
		return []GrantType{GrantImplicit, GrantAuthorizationCode, GrantPassword}
	case t == TypePublic && !internal:
		return []GrantType{GrantImplicit, GrantAuthorizationCode}
	case t == TypeConfidential && internal:
		return []GrantType{GrantImplicit, GrantAuthorizationCode, GrantPassword, GrantClientCredentials}
	default: // confidential, external
		return []GrantType{GrantImplicit, GrantAuthorizationCode}
	}
}

// AllowsRefreshFor reports whether a confidential client receives a refresh
// token for grant: every grant except client_credentials and implicit.
func AllowsRefreshFor(t ClientType, grant GrantType) bool {
	if t != TypeConfidential {
		return false
	}
	return grant != GrantClientCredentials && grant != GrantImplicit
}
