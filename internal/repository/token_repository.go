package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/skillswap/internal/model"
)

// TokenRepo persists/validates refresh tokens (single 'token_hash' column).
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// StoreRefresh inserts a refresh token hash row.
func (r *TokenRepo) StoreRefresh(ctx context.Context, t model.RefreshToken) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO sessions (id, user_id, token_hash, expires_at, created_at) VALUES (?,?,?,?,?)",
		t.ID, t.UserID, t.TokenHash, t.ExpiresAt, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("store refresh: %w", err)
	}
	return nil
}

// ValidateRefresh returns userID if a non-revoked, non-expired token exists.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (string, error) {
	var (
		t         model.RefreshToken
		revokedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, expires_at, revoked_at FROM sessions WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&t.UserID, &t.ExpiresAt, &revokedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrSessionInvalid
		}
		return "", fmt.Errorf("validate refresh: %w", err)
	}
	if revokedAt.Valid {
		t.RevokedAt = &revokedAt.Time
	}
	if !t.Active(time.Now().UTC()) {
		return "", ErrSessionInvalid
	}
	return t.UserID, nil
}

// ConsumeRefresh validates a token and revokes it only if no one else has.
func (r *TokenRepo) ConsumeRefresh(ctx context.Context, tokenHash string) (string, error) {
	userID, err := r.ValidateRefresh(ctx, tokenHash)
	if err != nil {
		return "", err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET revoked_at=CURRENT_TIMESTAMP(3) WHERE token_hash=? AND revoked_at IS NULL",
		tokenHash)
	if err != nil {
		return "", fmt.Errorf("consume refresh: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("consume refresh: %w", err)
	}
	if n == 0 {
		return "", ErrSessionInvalid
	}
	return userID, nil
}

// RevokeByHash marks a token as revoked.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET revoked_at=CURRENT_TIMESTAMP(3) WHERE token_hash=? AND revoked_at IS NULL",
		tokenHash)
	return err
}

// RevokeAllForUser revokes all user's active tokens.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET revoked_at=CURRENT_TIMESTAMP(3) WHERE user_id=? AND revoked_at IS NULL",
		userID)
	return err
}

// NewMySQLStore wires the MySQL repositories into a Store.
func NewMySQLStore(db *sql.DB) Store {
	return Store{
		Users:    NewUserRepo(db),
		Skills:   NewSkillRepo(db),
		Swaps:    NewSwapRepo(db),
		Sessions: NewTokenRepo(db),
	}
}
