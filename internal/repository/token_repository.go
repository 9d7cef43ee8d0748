package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/user-auth-service/internal/model"
)

// TokenRepo is the refresh token ledger.  Rows are keyed by the SHA-256
// hash of the serialized token so a leaked database dump cannot be used
// to mint access tokens.  A row exists exactly while its token is usable:
// login inserts, logout and revocation delete.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Store inserts a ledger row.  Called once per successful login; each
// login gets its own row, so concurrent logins by one user never collide.
func (r *TokenRepo) Store(ctx context.Context, userID uint64, tokenHash string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, expiresAt)
	return err
}

// GetByHash fetches a ledger row by token hash.
func (r *TokenRepo) GetByHash(ctx context.Context, tokenHash string) (model.RefreshToken, error) {
	var row model.RefreshToken
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token_hash, expires_at, created_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&row.ID, &row.UserID, &row.TokenHash, &row.ExpiresAt, &row.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RefreshToken{}, ErrTokenNotFound
	}
	return row, err
}

// Exists reports whether a ledger row for the hash is present.  Expiry is
// enforced by the token's own signature; a row is only ever written for a
// token issued with a future expiry, so presence alone answers validity.
func (r *TokenRepo) Exists(ctx context.Context, tokenHash string) (bool, error) {
	_, err := r.GetByHash(ctx, tokenHash)
	if errors.Is(err, ErrTokenNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Revoke deletes a ledger row.  Deleting an absent row is not an error:
// logout is best-effort and must be idempotent.
func (r *TokenRepo) Revoke(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE token_hash=?", tokenHash)
	return err
}

// DeleteAllForUser removes every ledger row owned by a user.  The admin
// delete path calls this after removing the user so no session survives
// the account.
func (r *TokenRepo) DeleteAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE user_id=?", userID)
	return err
}

// DeleteExpired prunes rows whose expiry has passed.  The signature check
// already rejects expired tokens, so this is pure housekeeping invoked by
// the janitor loop in main.
func (r *TokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE expires_at < UTC_TIMESTAMP()")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
