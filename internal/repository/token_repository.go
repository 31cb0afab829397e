package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/parking-reservation/internal/model"
)

// StoreRefreshToken inserts a refresh token hash row.
func (q *Queries) StoreRefreshToken(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, exp)
	return err
}

// GetRefreshToken loads a token by its hash.  Expiry and revocation are
// left to the caller.
func (q *Queries) GetRefreshToken(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	var (
		t         model.RefreshToken
		revokedAt sql.NullTime
	)
	err := q.db.QueryRowContext(ctx,
		"SELECT id, user_id, token_hash, expires_at, revoked_at, created_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &revokedAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	t.RevokedAt = fromNullTime(revokedAt)
	return &t, nil
}

// RevokeRefreshToken marks a token as revoked.
func (q *Queries) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	_, err := q.db.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE token_hash=? AND revoked_at IS NULL",
		tokenHash)
	return err
}

// RevokeAllRefreshTokens revokes all of a user's active tokens.
func (q *Queries) RevokeAllRefreshTokens(ctx context.Context, userID uint64) error {
	_, err := q.db.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE user_id=? AND revoked_at IS NULL",
		userID)
	return err
}
