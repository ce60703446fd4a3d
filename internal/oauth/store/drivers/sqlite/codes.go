package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/oauth2gate/authd/internal/oauth/domain"
	"github.com/oauth2gate/authd/internal/oauth/store"
)

type codesRepo struct {
	q querier
}

const codeColumns = `client_id, code, user_id, scope, redirect_uri, state,
	code_challenge, code_challenge_method, expires_at, revoked_at, created_at, updated_at`

func scanCode(row interface{ Scan(dest ...any) error }) (domain.AuthorizationCode, error) {
	var (
		c             domain.AuthorizationCode
		userID        sql.NullString
		scope         sql.NullString
		state         sql.NullString
		codeChallenge sql.NullString
		challengeMeth sql.NullString
		revokedAt     sql.NullTime
	)
	if err := row.Scan(
		&c.ClientID, &c.AuthorizationCode, &userID, &scope, &c.RedirectURI, &state,
		&codeChallenge, &challengeMeth, &c.ExpiresAt, &revokedAt, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return domain.AuthorizationCode{}, err
	}
	c.UserID = stringOrEmpty(userID)
	c.Scope = stringOrEmpty(scope)
	c.State = stringOrEmpty(state)
	c.CodeChallenge = stringOrEmpty(codeChallenge)
	c.CodeChallengeMethod = stringOrEmpty(challengeMeth)
	c.RevokedAt = timePtr(revokedAt)
	return c, nil
}

func (r *codesRepo) GetByClientAndCode(ctx context.Context, clientID, code string) (domain.AuthorizationCode, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+codeColumns+` FROM oauth_auth_codes WHERE client_id = ? AND code = ?`, clientID, code)
	c, err := scanCode(row)
	if err != nil {
		return domain.AuthorizationCode{}, mapNotFound(err)
	}
	return c, nil
}

func (r *codesRepo) CreateAuthorizationCode(ctx context.Context, c domain.AuthorizationCode) (domain.AuthorizationCode, error) {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO oauth_auth_codes (
			client_id, code, user_id, scope, redirect_uri, state,
			code_challenge, code_challenge_method, expires_at, revoked_at, created_at, updated_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		c.ClientID, c.AuthorizationCode, nullString(c.UserID), nullString(c.Scope), c.RedirectURI,
		nullString(c.State), nullString(c.CodeChallenge), nullString(c.CodeChallengeMethod),
		c.ExpiresAt, nullTime(c.RevokedAt), c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return domain.AuthorizationCode{}, err
	}
	return c, nil
}

func (r *codesRepo) AttachSubject(ctx context.Context, clientID, code, userID, scope string) error {
	now := time.Now().UTC()
	res, err := r.q.ExecContext(ctx,
		`UPDATE oauth_auth_codes SET user_id = ?, scope = ?, updated_at = ?
		 WHERE client_id = ? AND code = ? AND revoked_at IS NULL`,
		userID, scope, now, clientID, code)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *codesRepo) RevokeIfLive(ctx context.Context, clientID, code string) (bool, error) {
	now := time.Now().UTC()
	res, err := r.q.ExecContext(ctx,
		`UPDATE oauth_auth_codes SET revoked_at = ?, updated_at = ?
		 WHERE client_id = ? AND code = ? AND revoked_at IS NULL`,
		now, now, clientID, code)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

var _ store.AuthorizationCodes = (*codesRepo)(nil)
