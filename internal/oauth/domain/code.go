package domain

import "time"

// AuthorizationCode is a short-lived, single-use front-channel credential
// created by the authorize endpoint and redeemed by the token endpoint's
// authorization_code grant.
type AuthorizationCode struct {
	AuthorizationCode string // opaque random value, the code itself
	ClientID          string
	UserID            string // subject; empty until the dialog attaches it
	Scope             string

	RedirectURI string // echoed from the authorize request
	State       string // echoed back on the final redirect

	CodeChallenge       string
	CodeChallengeMethod string // "plain" | "S256", empty when PKCE is unused

	ExpiresAt time.Time
	RevokedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsExpired reports whether the code's lifetime has elapsed as of now.
func (c *AuthorizationCode) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// IsRevoked reports whether the code has already been redeemed or revoked.
func (c *AuthorizationCode) IsRevoked() bool {
	return c.RevokedAt != nil
}

// Redeemable reports whether the code may still be exchanged for a token.
func (c *AuthorizationCode) Redeemable(now time.Time) bool {
	return !c.IsRevoked() && !c.IsExpired(now)
}

// HasPKCE reports whether the code was issued with a PKCE challenge.
func (c *AuthorizationCode) HasPKCE() bool {
	return c.CodeChallenge != ""
}
