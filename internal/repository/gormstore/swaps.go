package gormstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/iliyamo/skillswap/internal/model"
	"github.com/iliyamo/skillswap/internal/repository"
)

type SwapRepo struct{ db *gorm.DB }

func (r *SwapRepo) Create(ctx context.Context, s *model.SwapRequest) error {
	row := swapRow{
		ID:             s.ID,
		RequesterID:    s.RequesterID,
		ReceiverID:     s.ReceiverID,
		OfferedSkillID: s.OfferedSkillID,
		WantedSkillID:  s.WantedSkillID,
		Message:        s.Message,
		Status:         string(s.Status),
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *SwapRepo) GetByID(ctx context.Context, id string) (*model.SwapRequest, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *SwapRepo) first(q *gorm.DB) (*model.SwapRequest, error) {
	var row swapRow
	if err := q.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSwapNotFound
		}
		return nil, err
	}
	s := row.model()
	return &s, nil
}

// ListByUser loads the swaps first and resolves the referenced users and
// skills with one IN query per table.
func (r *SwapRepo) ListByUser(ctx context.Context, userID string) ([]model.SwapDetail, error) {
	db := r.db.WithContext(ctx)
	var rows []swapRow
	err := db.Where("requester_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC, rowid DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []model.SwapDetail{}, nil
	}

	var userIDs, offeredIDs, wantedIDs []string
	for _, w := range rows {
		userIDs = append(userIDs, w.RequesterID, w.ReceiverID)
		offeredIDs = append(offeredIDs, w.OfferedSkillID)
		wantedIDs = append(wantedIDs, w.WantedSkillID)
	}

	var users []userRow
	if err := db.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, err
	}
	byUser := make(map[string]model.User, len(users))
	for _, u := range users {
		byUser[u.ID] = u.model()
	}
	offered, err := r.skillsByID(db, model.SkillOffered, offeredIDs)
	if err != nil {
		return nil, err
	}
	wanted, err := r.skillsByID(db, model.SkillWanted, wantedIDs)
	if err != nil {
		return nil, err
	}

	out := make([]model.SwapDetail, 0, len(rows))
	for _, w := range rows {
		d := model.SwapDetail{SwapRequest: w.model()}
		if u, ok := byUser[w.RequesterID]; ok {
			d.Requester = model.SummaryOf(u)
		}
		if u, ok := byUser[w.ReceiverID]; ok {
			d.Receiver = model.SummaryOf(u)
		}
		if sk, ok := offered[w.OfferedSkillID]; ok {
			d.OfferedSkill = model.SkillSummaryOf(sk)
		}
		if sk, ok := wanted[w.WantedSkillID]; ok {
			d.WantedSkill = model.SkillSummaryOf(sk)
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *SwapRepo) skillsByID(db *gorm.DB, kind model.SkillKind, ids []string) (map[string]model.Skill, error) {
	var rows []skillRow
	if err := db.Table(kind.Table()).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]model.Skill, len(rows))
	for _, row := range rows {
		out[row.ID] = row.model()
	}
	return out, nil
}

// UpdateStatus is scoped to the receiver; anyone else gets ErrSwapNotFound.
func (r *SwapRepo) UpdateStatus(ctx context.Context, id string, status model.SwapStatus, receiverID string) (*model.SwapRequest, error) {
	db := r.db.WithContext(ctx)
	res := db.Model(&swapRow{}).
		Where("id = ? AND receiver_id = ?", id, receiverID).
		Updates(map[string]any{"status": string(status), "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, repository.ErrSwapNotFound
	}
	return r.first(db.Where("id = ?", id))
}
