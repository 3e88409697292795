package gormstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/iliyamo/skillswap/internal/model"
	"github.com/iliyamo/skillswap/internal/repository"
)

type UserRepo struct{ db *gorm.DB }

func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	row := userRow{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Location:     u.Location,
		Avatar:       u.Avatar,
		Privacy:      string(u.Privacy),
		Availability: u.Availability,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isDuplicate(err) {
			return repository.ErrEmailExists
		}
		return err
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.first(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (r *UserRepo) first(ctx context.Context, cond string, arg any) (*model.User, error) {
	var row userRow
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}
		return nil, err
	}
	u := row.model()
	return &u, nil
}

func (r *UserRepo) Update(ctx context.Context, id string, upd model.UserUpdate) (*model.User, error) {
	fields := map[string]any{}
	if upd.Username != nil {
		fields["username"] = *upd.Username
	}
	if upd.Location != nil {
		fields["location"] = *upd.Location
	}
	if upd.Privacy != nil {
		fields["privacy"] = string(*upd.Privacy)
	}
	if upd.Availability != nil {
		fields["availability"] = *upd.Availability
	}
	if upd.Avatar != nil {
		fields["avatar"] = *upd.Avatar
	}
	if len(fields) > 0 {
		fields["updated_at"] = time.Now().UTC()
		err := r.db.WithContext(ctx).Model(&userRow{}).Where("id = ?", id).Updates(fields).Error
		if err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepo) ListPublic(ctx context.Context) ([]model.User, error) {
	var rows []userRow
	err := r.db.WithContext(ctx).
		Where("privacy = ?", string(model.PrivacyPublic)).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]model.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.model())
	}
	return out, nil
}
