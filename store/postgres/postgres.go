// Package postgres provides pgx-backed implementations of the persistence
// interfaces.
//
// Expected schema:
//
//	CREATE TABLE users (
//	    id          TEXT PRIMARY KEY,
//	    email       TEXT NOT NULL UNIQUE,
//	    password_hash TEXT NOT NULL DEFAULT '',
//	    providers   TEXT[] NOT NULL DEFAULT '{}',
//	    language    TEXT NOT NULL DEFAULT '',
//	    google_linking_requested_at TIMESTAMPTZ
//	);
//
//	CREATE TABLE refresh_tokens (
//	    id         TEXT PRIMARY KEY,
//	    user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
//	    token_hash TEXT NOT NULL,
//	    expires_at TIMESTAMPTZ NOT NULL,
//	    revoked    BOOLEAN NOT NULL DEFAULT FALSE,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//
//	CREATE TABLE password_resets (
//	    id         TEXT PRIMARY KEY,
//	    user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
//	    token      TEXT NOT NULL UNIQUE,
//	    expires_at TIMESTAMPTZ NOT NULL
//	);
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	auth "github.com/linguetta/linguetta-auth"
)

// Compile-time interface assertions.
var (
	_ auth.UserStore          = (*UserStore)(nil)
	_ auth.RefreshTokenStore  = (*RefreshTokenStore)(nil)
	_ auth.PasswordResetStore = (*PasswordResetStore)(nil)
)

// UserStore implements [auth.UserStore] on a pgx connection pool.
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore creates a user store over the given pool.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

const userColumns = "id, email, password_hash, providers, language, google_linking_requested_at"

func (s *UserStore) GetByID(ctx context.Context, id string) (*auth.User, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id)
	return scanUser(row)
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = $1", email)
	return scanUser(row)
}

func (s *UserStore) Create(ctx context.Context, user *auth.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, providers, language, google_linking_requested_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Email, user.PasswordHash, user.Providers, user.PreferredLanguage, user.GoogleLinkingRequestedAt)
	if err != nil {
		return fmt.Errorf("%w: %v", auth.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *UserStore) Update(ctx context.Context, user *auth.User) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users
		 SET email = $2, password_hash = $3, providers = $4, language = $5, google_linking_requested_at = $6
		 WHERE id = $1`,
		user.ID, user.Email, user.PasswordHash, user.Providers, user.PreferredLanguage, user.GoogleLinkingRequestedAt)
	if err != nil {
		return fmt.Errorf("%w: %v", auth.ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrRecordNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*auth.User, error) {
	var user auth.User
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Providers,
		&user.PreferredLanguage, &user.GoogleLinkingRequestedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrRecordNotFound
		}
		return nil, fmt.Errorf("%w: %v", auth.ErrStoreUnavailable, err)
	}
	return &user, nil
}

// RefreshTokenStore implements [auth.RefreshTokenStore] on a pgx pool.
type RefreshTokenStore struct {
	pool *pgxpool.Pool
}

// NewRefreshTokenStore creates a refresh token store over the given pool.
func NewRefreshTokenStore(pool *pgxpool.Pool) *RefreshTokenStore {
	return &RefreshTokenStore{pool: pool}
}

func (s *RefreshTokenStore) Create(ctx context.Context, token *auth.RefreshToken) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, revoked)
		 VALUES ($1, $2, $3, $4, $5)`,
		token.ID, token.UserID, token.TokenHash, token.ExpiresAt, token.Revoked)
	if err != nil {
		return fmt.Errorf("%w: %v", auth.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RefreshTokenStore) Get(ctx context.Context, id string) (*auth.RefreshToken, error) {
	var t auth.RefreshToken
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, token_hash, expires_at, revoked
		 FROM refresh_tokens WHERE id = $1`, id).
		Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.Revoked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrRecordNotFound
		}
		return nil, fmt.Errorf("%w: %v", auth.ErrStoreUnavailable, err)
	}
	return &t, nil
}

func (s *RefreshTokenStore) ActiveForUser(ctx context.Context, userID string) ([]auth.RefreshToken, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, token_hash, expires_at, revoked
		 FROM refresh_tokens
		 WHERE NOT revoked AND user_id = $1
		 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", auth.ErrStoreUnavailable, err)
	}
	return scanTokens(rows)
}

func (s *RefreshTokenStore) Revoke(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE refresh_tokens SET revoked = TRUE WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("%w: %v", auth.ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrRecordNotFound
	}
	return nil
}

func scanTokens(rows pgx.Rows) ([]auth.RefreshToken, error) {
	defer rows.Close()

	var out []auth.RefreshToken
	for rows.Next() {
		var t auth.RefreshToken
		if err := rows.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.Revoked); err != nil {
			return nil, fmt.Errorf("%w: %v", auth.ErrStoreUnavailable, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", auth.ErrStoreUnavailable, err)
	}
	return out, nil
}

// PasswordResetStore implements [auth.PasswordResetStore] on a pgx pool.
type PasswordResetStore struct {
	pool *pgxpool.Pool
}

// NewPasswordResetStore creates a reset store over the given pool.
func NewPasswordResetStore(pool *pgxpool.Pool) *PasswordResetStore {
	return &PasswordResetStore{pool: pool}
}

func (s *PasswordResetStore) Create(ctx context.Context, reset *auth.PasswordReset) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO password_resets (id, user_id, token, expires_at)
		 VALUES ($1, $2, $3, $4)`,
		reset.ID, reset.UserID, reset.Token, reset.ExpiresAt)
	if err != nil {
		return fmt.Errorf("%w: %v", auth.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *PasswordResetStore) GetByToken(ctx context.Context, token string) (*auth.PasswordReset, error) {
	var reset auth.PasswordReset
	err := s.pool.QueryRow(ctx,
		"SELECT id, user_id, token, expires_at FROM password_resets WHERE token = $1", token).
		Scan(&reset.ID, &reset.UserID, &reset.Token, &reset.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrRecordNotFound
		}
		return nil, fmt.Errorf("%w: %v", auth.ErrStoreUnavailable, err)
	}
	return &reset, nil
}

func (s *PasswordResetStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM password_resets WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("%w: %v", auth.ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrRecordNotFound
	}
	return nil
}
