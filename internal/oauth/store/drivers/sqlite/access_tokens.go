package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/oauth2gate/authd/internal/oauth/domain"
	"github.com/oauth2gate/authd/internal/oauth/store"
)

type accessTokensRepo struct {
	q querier
}

const accessTokenColumns = `id, client_id, user_id, name, scope, expires_at,
	user_agent, revoked_at, created_at, updated_at`

func scanAccessToken(row interface{ Scan(dest ...any) error }) (domain.AccessToken, error) {
	var (
		t         domain.AccessToken
		scope     sql.NullString
		userAgent sql.NullString
		revokedAt sql.NullTime
	)
	if err := row.Scan(
		&t.ID, &t.Client, &t.UserID, &t.Name, &scope, &t.ExpiresAt,
		&userAgent, &revokedAt, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return domain.AccessToken{}, err
	}
	t.Scope = stringOrEmpty(scope)
	t.UserAgent = stringOrEmpty(userAgent)
	t.RevokedAt = timePtr(revokedAt)
	return t, nil
}

func (r *accessTokensRepo) GetByID(ctx context.Context, id string) (domain.AccessToken, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+accessTokenColumns+` FROM oauth_access_tokens WHERE id = ?`, id)
	t, err := scanAccessToken(row)
	if err != nil {
		return domain.AccessToken{}, mapNotFound(err)
	}
	return t, nil
}

func (r *accessTokensRepo) CreateAccessToken(ctx context.Context, t domain.AccessToken) (domain.AccessToken, error) {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO oauth_access_tokens (
			id, client_id, user_id, name, scope, expires_at, user_agent,
			revoked_at, created_at, updated_at
		) VALUES (?,?,?,?,?,?,?,?,?,?)`,
		t.ID, t.Client, t.UserID, t.Name, nullString(t.Scope), t.ExpiresAt,
		nullString(t.UserAgent), nullTime(t.RevokedAt), t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return domain.AccessToken{}, err
	}
	return t, nil
}

func (r *accessTokensRepo) RevokeIfLive(ctx context.Context, id string) (bool, error) {
	now := time.Now().UTC()
	res, err := r.q.ExecContext(ctx,
		`UPDATE oauth_access_tokens SET revoked_at = ?, updated_at = ? WHERE id = ? AND revoked_at IS NULL`,
		now, now, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

var _ store.AccessTokens = (*accessTokensRepo)(nil)
