package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/skillswap/internal/model"
)

const swapColumns = "id, requester_id, receiver_id, offered_skill_id, wanted_skill_id, message, status, created_at, updated_at"

// SwapRepo is the MySQL implementation of SwapRepository.
type SwapRepo struct {
	db *sql.DB
}

func NewSwapRepo(db *sql.DB) *SwapRepo {
	return &SwapRepo{db: db}
}

func (r *SwapRepo) Create(ctx context.Context, s *model.SwapRequest) error {
	q := "INSERT INTO swap_requests (" + swapColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"
	_, err := r.db.ExecContext(ctx, q, s.ID, s.RequesterID, s.ReceiverID, s.OfferedSkillID, s.WantedSkillID,
		s.Message, string(s.Status), s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert swap: %w", err)
	}
	return nil
}

func (r *SwapRepo) GetByID(ctx context.Context, id string) (*model.SwapRequest, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+swapColumns+" FROM swap_requests WHERE id = ?", id)
	return scanSwap(row)
}

// ListByUser left-joins both parties and both skills so that a swap whose
// references were removed is still listed, just without that summary.
func (r *SwapRepo) ListByUser(ctx context.Context, userID string) ([]model.SwapDetail, error) {
	const q = `SELECT w.id, w.requester_id, w.receiver_id, w.offered_skill_id, w.wanted_skill_id,
	                  w.message, w.status, w.created_at, w.updated_at,
	                  rq.id, rq.username, rq.avatar, rq.location,
	                  rc.id, rc.username, rc.avatar, rc.location,
	                  so.id, so.skill_name, so.category,
	                  sw.id, sw.skill_name, sw.category
	           FROM swap_requests w
	           LEFT JOIN users rq          ON rq.id = w.requester_id
	           LEFT JOIN users rc          ON rc.id = w.receiver_id
	           LEFT JOIN skills_offered so ON so.id = w.offered_skill_id
	           LEFT JOIN skills_wanted sw  ON sw.id = w.wanted_skill_id
	           WHERE w.requester_id = ? OR w.receiver_id = ?
	           ORDER BY w.created_at DESC`

	rows, err := r.db.QueryContext(ctx, q, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("list swaps: %w", err)
	}
	defer rows.Close()

	out := []model.SwapDetail{}
	for rows.Next() {
		var (
			d      model.SwapDetail
			status string
			rq, rc nullUser
			so, sw nullSkill
		)
		if err := rows.Scan(&d.ID, &d.RequesterID, &d.ReceiverID, &d.OfferedSkillID, &d.WantedSkillID,
			&d.Message, &status, &d.CreatedAt, &d.UpdatedAt,
			&rq.id, &rq.name, &rq.avatar, &rq.location,
			&rc.id, &rc.name, &rc.avatar, &rc.location,
			&so.id, &so.name, &so.category,
			&sw.id, &sw.name, &sw.category); err != nil {
			return nil, err
		}
		d.Status = model.SwapStatus(status)
		d.Requester = rq.summary()
		d.Receiver = rc.summary()
		d.OfferedSkill = so.summary()
		d.WantedSkill = sw.summary()
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus only touches rows where receiverID is the receiver. The
// follow-up SELECT uses the same predicate, so a requester (or anybody
// else) gets ErrSwapNotFound and the row keeps its status.
func (r *SwapRepo) UpdateStatus(ctx context.Context, id string, status model.SwapStatus, receiverID string) (*model.SwapRequest, error) {
	const q = `UPDATE swap_requests
	           SET status = ?, updated_at = CURRENT_TIMESTAMP(3)
	           WHERE id = ? AND receiver_id = ?`
	if _, err := r.db.ExecContext(ctx, q, string(status), id, receiverID); err != nil {
		return nil, fmt.Errorf("update swap status: %w", err)
	}
	row := r.db.QueryRowContext(ctx, "SELECT "+swapColumns+" FROM swap_requests WHERE id = ? AND receiver_id = ?", id, receiverID)
	return scanSwap(row)
}

func scanSwap(s rowScanner) (*model.SwapRequest, error) {
	var (
		w      model.SwapRequest
		status string
	)
	if err := s.Scan(&w.ID, &w.RequesterID, &w.ReceiverID, &w.OfferedSkillID, &w.WantedSkillID,
		&w.Message, &status, &w.CreatedAt, &w.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSwapNotFound
		}
		return nil, fmt.Errorf("scan swap: %w", err)
	}
	w.Status = model.SwapStatus(status)
	return &w, nil
}

type nullUser struct {
	id, name, avatar, location sql.NullString
}

func (n nullUser) summary() *model.UserSummary {
	if !n.id.Valid {
		return nil
	}
	return &model.UserSummary{ID: n.id.String, Name: n.name.String, Avatar: n.avatar.String, Location: n.location.String}
}

type nullSkill struct {
	id, name, category sql.NullString
}

func (n nullSkill) summary() *model.SkillSummary {
	if !n.id.Valid {
		return nil
	}
	return &model.SkillSummary{ID: n.id.String, SkillName: n.name.String, Category: n.category.String}
}
