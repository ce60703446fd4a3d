package domain

import "time"

// AccessToken is the persisted record underlying a signed bearer JWT. The
// record's identifier is embedded in the JWT as the jti claim; revocation is
// always by identifier lookup, never by parsing the token string.
type AccessToken struct {
	ID     string // -> jti
	Client string // client_id
	UserID string // subject
	Name   string // grant type that produced this token; refresh re-mints under it

	Scope     string
	ExpiresAt time.Time
	UserAgent string

	RevokedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (t *AccessToken) IsExpired(now time.Time) bool { return now.After(t.ExpiresAt) }
func (t *AccessToken) IsRevoked() bool              { return t.RevokedAt != nil }
func (t *AccessToken) Live(now time.Time) bool      { return !t.IsRevoked() && !t.IsExpired(now) }

// RefreshToken is the persisted record underlying a signed refresh JWT. It
// always references exactly one parent AccessToken; revoking the parent
// must revoke the RefreshToken in the same transaction.
type RefreshToken struct {
	ID            string // -> jti
	AccessTokenID string // parent AccessToken.ID

	ExpiresAt time.Time
	RevokedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (t *RefreshToken) IsExpired(now time.Time) bool { return now.After(t.ExpiresAt) }
func (t *RefreshToken) IsRevoked() bool              { return t.RevokedAt != nil }
func (t *RefreshToken) Live(now time.Time) bool      { return !t.IsRevoked() && !t.IsExpired(now) }
