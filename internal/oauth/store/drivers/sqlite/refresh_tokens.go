package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/oauth2gate/authd/internal/oauth/domain"
	"github.com/oauth2gate/authd/internal/oauth/store"
)

type refreshTokensRepo struct {
	q querier
}

const refreshTokenColumns = `id, access_token_id, expires_at, revoked_at, created_at, updated_at`

func scanRefreshToken(row interface{ Scan(dest ...any) error }) (domain.RefreshToken, error) {
	var (
		t         domain.RefreshToken
		revokedAt sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.AccessTokenID, &t.ExpiresAt, &revokedAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return domain.RefreshToken{}, err
	}
	t.RevokedAt = timePtr(revokedAt)
	return t, nil
}

func (r *refreshTokensRepo) GetByID(ctx context.Context, id string) (domain.RefreshToken, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+refreshTokenColumns+` FROM oauth_refresh_tokens WHERE id = ?`, id)
	t, err := scanRefreshToken(row)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	return t, nil
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) (domain.RefreshToken, error) {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO oauth_refresh_tokens (id, access_token_id, expires_at, revoked_at, created_at, updated_at)
		VALUES (?,?,?,?,?,?)`,
		t.ID, t.AccessTokenID, t.ExpiresAt, nullTime(t.RevokedAt), t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return domain.RefreshToken{}, err
	}
	return t, nil
}

func (r *refreshTokensRepo) RevokeIfLive(ctx context.Context, id string) (bool, error) {
	now := time.Now().UTC()
	res, err := r.q.ExecContext(ctx,
		`UPDATE oauth_refresh_tokens SET revoked_at = ?, updated_at = ? WHERE id = ? AND revoked_at IS NULL`,
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

func (r *refreshTokensRepo) RevokeByAccessTokenID(ctx context.Context, accessTokenID string) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx,
		`UPDATE oauth_refresh_tokens SET revoked_at = ?, updated_at = ? WHERE access_token_id = ? AND revoked_at IS NULL`,
		now, now, accessTokenID)
	return err
}

var _ store.RefreshTokens = (*refreshTokensRepo)(nil)
