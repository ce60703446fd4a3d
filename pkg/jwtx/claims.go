// Package jwtx signs and verifies the JWS access and refresh tokens the
// authorization server issues.
package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrIssuer      = errors.New("jwtx: unexpected issuer")
	ErrAudience    = errors.New("jwtx: unexpected audience")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
)

// Claims is the claim set minted for every access and refresh token:
// {iss, aud, azp, sub, client_id, scope, jti, exp}.
type Claims struct {
	jwt.RegisteredClaims

	// AZP is the authorized party: the client that requested the token,
	// expressed as the client's domaine (if set) or its client_id.
	AZP string `json:"azp"`

	// ClientID is the requesting client's identifier.
	ClientID string `json:"client_id"`

	// Scope is the space-delimited set of scopes granted to this token.
	Scope string `json:"scope,omitempty"`
}

// NewClaims builds the claim set for a newly minted token.
func NewClaims(issuer, azp, clientID, subject, jti, scope string, expiresAt time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{azp},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        jti,
		},
		AZP:      azp,
		ClientID: clientID,
		Scope:    scope,
	}
}

// ValidateIssuer checks the iss claim against expected, when expected is set.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" || c.Issuer == expected {
		return nil
	}
	return ErrIssuer
}

// ValidateAudience checks that aud contains expected, when expected is set.
func (c *Claims) ValidateAudience(expected string) error {
	if expected == "" {
		return nil
	}
	for _, aud := range c.Audience {
		if aud == expected {
			return nil
		}
	}
	return ErrAudience
}

// ValidateExpiry rejects tokens that are expired.
func (c *Claims) ValidateExpiry() error {
	if c.ExpiresAt != nil && time.Now().After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	return nil
}
