// Package store defines the entity store's query and mutation primitives.
// Concrete drivers (sqlite) implement Store; service code depends only on
// this interface so it can be exercised against a fake in tests.
package store

import (
	"context"
	"errors"

	"github.com/oauth2gate/authd/internal/oauth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. It exposes sub-repositories to
// keep concerns tidy and to stop callers from nesting transactions.
type Store interface {
	Clients() Clients
	AuthorizationCodes() AuthorizationCodes
	AccessTokens() AccessTokens
	RefreshTokens() RefreshTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store. The
	// caller MUST call Commit or Rollback on the result.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn inside a transaction, committing on nil error and
	// rolling back otherwise. This is the preferred way to group a
	// multi-step operation that must be atomic, such as refresh rotation.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transactional store: the same repositories, scoped to one
// transaction, plus explicit commit/rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Clients enforces clientId, name, and domaine uniqueness at the write
// boundary. CreateClient persists the Client as given: it does not derive
// Type, Grants or SecretKey itself; service.ClientRegistry computes those
// with normalize before calling it.
type Clients interface {
	GetClientByID(ctx context.Context, clientID string) (domain.Client, error)
	GetClientByName(ctx context.Context, name string) (domain.Client, error)
	ListClients(ctx context.Context) ([]domain.Client, error)
	CreateClient(ctx context.Context, c domain.Client) (domain.Client, error)
	RevokeClient(ctx context.Context, clientID string) error
}

// AuthorizationCodes stores the short-lived front-channel credential.
type AuthorizationCodes interface {
	GetByClientAndCode(ctx context.Context, clientID, code string) (domain.AuthorizationCode, error)
	CreateAuthorizationCode(ctx context.Context, c domain.AuthorizationCode) (domain.AuthorizationCode, error)

	// AttachSubject records the dialog's decision: the authenticated
	// user and the resolved scope for the pending code.
	AttachSubject(ctx context.Context, clientID, code, userID, scope string) error

	// RevokeIfLive performs the conditional "revoke if not yet revoked"
	// update required to prevent double-redemption; it reports whether the
	// update matched a row (i.e. the code was live immediately before).
	RevokeIfLive(ctx context.Context, clientID, code string) (bool, error)
}

// AccessTokens stores the record underlying every signed access JWT.
type AccessTokens interface {
	GetByID(ctx context.Context, id string) (domain.AccessToken, error)
	CreateAccessToken(ctx context.Context, t domain.AccessToken) (domain.AccessToken, error)
	RevokeIfLive(ctx context.Context, id string) (bool, error)
}

// RefreshTokens stores the record underlying every signed refresh JWT.
type RefreshTokens interface {
	GetByID(ctx context.Context, id string) (domain.RefreshToken, error)
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) (domain.RefreshToken, error)
	RevokeIfLive(ctx context.Context, id string) (bool, error)

	// RevokeByAccessTokenID cascades revocation from an AccessToken to its
	// paired RefreshToken, per the invariant that a revoked AccessToken
	// always revokes its RefreshToken.
	RevokeByAccessTokenID(ctx context.Context, accessTokenID string) error
}
