package sqlite

import (
	"context"
	"database/sql"

	"github.com/oauth2gate/authd/internal/oauth/store"
)

type txStore struct {
	tx *sql.Tx
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested transactions are not supported; SQLite's own SAVEPOINT could
	// emulate them if a caller ever needs it.
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) ApplyMigrations() error { return nil }

func (t *txStore) Clients() store.Clients                       { return &clientsRepo{q: t.tx} }
func (t *txStore) AuthorizationCodes() store.AuthorizationCodes { return &codesRepo{q: t.tx} }
func (t *txStore) AccessTokens() store.AccessTokens             { return &accessTokensRepo{q: t.tx} }
func (t *txStore) RefreshTokens() store.RefreshTokens           { return &refreshTokensRepo{q: t.tx} }
