package gormstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/iliyamo/skillswap/internal/model"
	"github.com/iliyamo/skillswap/internal/repository"
)

type SessionRepo struct{ db *gorm.DB }

func (r *SessionRepo) StoreRefresh(ctx context.Context, t model.RefreshToken) error {
	row := sessionRow{
		ID:        t.ID,
		UserID:    t.UserID,
		TokenHash: t.TokenHash,
		ExpiresAt: t.ExpiresAt,
		RevokedAt: t.RevokedAt,
		CreatedAt: t.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *SessionRepo) ValidateRefresh(ctx context.Context, tokenHash string) (string, error) {
	var row sessionRow
	if err := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", repository.ErrSessionInvalid
		}
		return "", err
	}
	t := model.RefreshToken{UserID: row.UserID, ExpiresAt: row.ExpiresAt, RevokedAt: row.RevokedAt}
	if !t.Active(time.Now().UTC()) {
		return "", repository.ErrSessionInvalid
	}
	return row.UserID, nil
}

func (r *SessionRepo) ConsumeRefresh(ctx context.Context, tokenHash string) (string, error) {
	userID, err := r.ValidateRefresh(ctx, tokenHash)
	if err != nil {
		return "", err
	}
	res := r.db.WithContext(ctx).Model(&sessionRow{}).
		Where("token_hash = ? AND revoked_at IS NULL", tokenHash).
		Update("revoked_at", time.Now().UTC())
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		return "", repository.ErrSessionInvalid
	}
	return userID, nil
}

func (r *SessionRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	return r.db.WithContext(ctx).Model(&sessionRow{}).
		Where("token_hash = ? AND revoked_at IS NULL", tokenHash).
		Update("revoked_at", time.Now().UTC()).Error
}

func (r *SessionRepo) RevokeAllForUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Model(&sessionRow{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", time.Now().UTC()).Error
}
