package gormstore

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/iliyamo/skillswap/internal/model"
)

type SkillRepo struct{ db *gorm.DB }

// joinedRow is the flat result of a skill joined with its owner.
type joinedRow struct {
	ID                string
	UserID            string
	SkillName         string
	Description       string
	Category          string
	CreatedAt         time.Time
	OwnerName         string
	OwnerLocation     string
	OwnerAvatar       string
	OwnerAvailability string
}

func (r *SkillRepo) Create(ctx context.Context, kind model.SkillKind, s *model.Skill) error {
	row := skillRow{
		ID:          s.ID,
		UserID:      s.UserID,
		SkillName:   s.SkillName,
		Description: s.Description,
		Category:    s.Category,
		CreatedAt:   s.CreatedAt,
	}
	row.fold()
	return r.db.WithContext(ctx).Table(kind.Table()).Create(&row).Error
}

func (r *SkillRepo) ListByUser(ctx context.Context, kind model.SkillKind, userID string) ([]model.Skill, error) {
	var rows []skillRow
	err := r.db.WithContext(ctx).Table(kind.Table()).
		Where("user_id = ?", userID).
		Order("created_at DESC, rowid DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]model.Skill, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.model())
	}
	return out, nil
}

func (r *SkillRepo) ListAll(ctx context.Context, kind model.SkillKind) ([]model.SkillWithOwner, error) {
	return r.joined(ctx, kind, func(q *gorm.DB) *gorm.DB { return q })
}

func (r *SkillRepo) Search(ctx context.Context, kind model.SkillKind, term string) ([]model.SkillWithOwner, error) {
	like := "%" + escapeLike(strings.ToLower(term)) + "%"
	return r.joined(ctx, kind, func(q *gorm.DB) *gorm.DB {
		return q.Where(`(s.name_key LIKE ? ESCAPE '\' OR s.description_key LIKE ? ESCAPE '\' OR s.category_key LIKE ? ESCAPE '\')`,
			like, like, like)
	})
}

func (r *SkillRepo) ListByCategory(ctx context.Context, kind model.SkillKind, category string) ([]model.SkillWithOwner, error) {
	c := strings.ToLower(strings.TrimSpace(category))
	return r.joined(ctx, kind, func(q *gorm.DB) *gorm.DB {
		return q.Where("s.category_key = ?", c)
	})
}

func (r *SkillRepo) Delete(ctx context.Context, kind model.SkillKind, id, userID string) (bool, error) {
	res := r.db.WithContext(ctx).Table(kind.Table()).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&skillRow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *SkillRepo) joined(ctx context.Context, kind model.SkillKind, scope func(*gorm.DB) *gorm.DB) ([]model.SkillWithOwner, error) {
	var rows []joinedRow
	q := r.db.WithContext(ctx).
		Table(kind.Table()+" AS s").
		Select(`s.id, s.user_id, s.skill_name, s.description, s.category, s.created_at,
		        u.username AS owner_name, u.location AS owner_location,
		        u.avatar AS owner_avatar, u.availability AS owner_availability`).
		Joins("JOIN users u ON u.id = s.user_id").
		Where("u.privacy = ?", string(model.PrivacyPublic))
	if err := scope(q).Order("s.created_at DESC, s.rowid DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]model.SkillWithOwner, 0, len(rows))
	for _, j := range rows {
		out = append(out, model.SkillWithOwner{
			Skill: model.Skill{
				ID:          j.ID,
				UserID:      j.UserID,
				SkillName:   j.SkillName,
				Description: j.Description,
				Category:    j.Category,
				CreatedAt:   j.CreatedAt,
			},
			User: &model.SkillOwner{
				ID:           j.UserID,
				Name:         j.OwnerName,
				Location:     j.OwnerLocation,
				Avatar:       j.OwnerAvatar,
				Availability: j.OwnerAvailability,
			},
		})
	}
	return out, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
