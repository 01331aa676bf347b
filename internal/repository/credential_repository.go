package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GoogleOAuthCredential is the per-user token record. One row per user,
// mutated in place on refresh, deleted only on explicit disconnect.
type GoogleOAuthCredential struct {
	ID           string
	UserID       string
	Token        string
	RefreshToken *string
	TokenURI     string
	Scopes       string // space-separated
	Expiry       *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CredentialRepository interface {
	Upsert(ctx context.Context, cred *GoogleOAuthCredential) error
	FindByUserID(ctx context.Context, userID string) (*GoogleOAuthCredential, error)
	UpdateTokens(ctx context.Context, cred *GoogleOAuthCredential) error
	DeleteByUserID(ctx context.Context, userID string) error
}

type pgCredentialRepository struct {
	pool *pgxpool.Pool
}

func NewCredentialRepository(pool *pgxpool.Pool) CredentialRepository {
	return &pgCredentialRepository{pool: pool}
}

func (r *pgCredentialRepository) Upsert(ctx context.Context, cred *GoogleOAuthCredential) error {
	query := `
		INSERT INTO google_oauth_credentials (user_id, token, refresh_token, token_uri, scopes, expiry)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			token = EXCLUDED.token,
			refresh_token = COALESCE(EXCLUDED.refresh_token, google_oauth_credentials.refresh_token),
			token_uri = EXCLUDED.token_uri,
			scopes = EXCLUDED.scopes,
			expiry = EXCLUDED.expiry,
			updated_at = now()
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		cred.UserID, cred.Token, cred.RefreshToken, cred.TokenURI, cred.Scopes, cred.Expiry,
	).Scan(&cred.ID, &cred.CreatedAt, &cred.UpdatedAt)
}

func (r *pgCredentialRepository) FindByUserID(ctx context.Context, userID string) (*GoogleOAuthCredential, error) {
	query := `
		SELECT id, user_id, token, refresh_token, token_uri, scopes, expiry, created_at, updated_at
		FROM google_oauth_credentials WHERE user_id = $1
	`
	cred := &GoogleOAuthCredential{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&cred.ID, &cred.UserID, &cred.Token, &cred.RefreshToken, &cred.TokenURI,
		&cred.Scopes, &cred.Expiry, &cred.CreatedAt, &cred.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cred, nil
}

func (r *pgCredentialRepository) UpdateTokens(ctx context.Context, cred *GoogleOAuthCredential) error {
	query := `
		UPDATE google_oauth_credentials
		SET token = $2,
		    refresh_token = COALESCE($3, refresh_token),
		    expiry = $4,
		    updated_at = now()
		WHERE user_id = $1
		RETURNING updated_at
	`
	return r.pool.QueryRow(ctx, query,
		cred.UserID, cred.Token, cred.RefreshToken, cred.Expiry,
	).Scan(&cred.UpdatedAt)
}

func (r *pgCredentialRepository) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM google_oauth_credentials WHERE user_id = $1`, userID)
	return err
}
