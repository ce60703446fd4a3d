package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/oauth2gate/authd/internal/oauth/domain"
	"github.com/oauth2gate/authd/internal/oauth/store"
)

type clientsRepo struct {
	q querier
}

func (r *clientsRepo) scanClient(row interface {
	Scan(dest ...any) error
}) (domain.Client, error) {
	var (
		c           domain.Client
		secretKey   sql.NullString
		domaine     sql.NullString
		logo        sql.NullString
		description sql.NullString
		legalTerms  sql.NullTime
		revokedAt   sql.NullTime
		redirectURI string
		grants      string
		internal    int64
	)
	if err := row.Scan(
		&c.ClientID, &c.Name, &c.Profile, &c.Type, &internal, &secretKey,
		&grants, &redirectURI, &c.Scope, &domaine, &logo,
		&description, &legalTerms, &revokedAt, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return domain.Client{}, err
	}
	c.Internal = internal != 0
	c.Grants = splitGrants(grants)
	c.RedirectURIs = splitURIs(redirectURI)
	c.Domaine = stringOrEmpty(domaine)
	c.Logo = stringOrEmpty(logo)
	c.Description = stringOrEmpty(description)
	c.LegalTermsAcceptedAt = timePtr(legalTerms)
	c.RevokedAt = timePtr(revokedAt)
	c.SecretKey = stringOrEmpty(secretKey)
	return c, nil
}

const clientColumns = `client_id, name, profile, type, internal, secret_key,
	grants, redirect_uris, scope, domaine, logo,
	description, legal_terms_accepted_at, revoked_at, created_at, updated_at`

func (r *clientsRepo) GetClientByID(ctx context.Context, clientID string) (domain.Client, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM oauth_clients WHERE client_id = ?`, clientID)
	c, err := r.scanClient(row)
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	return c, nil
}

func (r *clientsRepo) GetClientByName(ctx context.Context, name string) (domain.Client, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM oauth_clients WHERE name = ?`, name)
	c, err := r.scanClient(row)
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	return c, nil
}

func (r *clientsRepo) ListClients(ctx context.Context) ([]domain.Client, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+clientColumns+` FROM oauth_clients ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		c, err := r.scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (r *clientsRepo) CreateClient(ctx context.Context, c domain.Client) (domain.Client, error) {
	secret := nullString(c.SecretKey)
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO oauth_clients (
			client_id, name, profile, type, internal, secret_key,
			grants, redirect_uris, scope, domaine, logo,
			description, legal_terms_accepted_at, revoked_at, created_at, updated_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		c.ClientID, c.Name, string(c.Profile), string(c.Type), boolToInt(c.Internal), secret,
		joinGrants(c.Grants), joinURIs(c.RedirectURIs), c.Scope,
		nullString(c.Domaine), nullString(c.Logo), nullString(c.Description),
		nullTime(c.LegalTermsAcceptedAt), nullTime(c.RevokedAt), c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Client{}, store.ErrAlreadyExists
		}
		return domain.Client{}, err
	}
	return c, nil
}

func (r *clientsRepo) RevokeClient(ctx context.Context, clientID string) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx,
		`UPDATE oauth_clients SET revoked_at = ?, updated_at = ? WHERE client_id = ? AND revoked_at IS NULL`,
		now, now, clientID)
	return err
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// isUniqueViolation reports whether err came from a UNIQUE constraint,
// covering client_id, name, and domaine collisions.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}

var _ store.Clients = (*clientsRepo)(nil)
