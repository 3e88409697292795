package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/iliyamo/skillswap/internal/model"
)

// SkillRepo is the MySQL implementation of SkillRepository. Offered and
// wanted skills live in two tables with identical columns; the table is
// picked from the kind, never from user input.
type SkillRepo struct {
	db *sql.DB
}

func NewSkillRepo(db *sql.DB) *SkillRepo {
	return &SkillRepo{db: db}
}

func (r *SkillRepo) Create(ctx context.Context, kind model.SkillKind, s *model.Skill) error {
	q := "INSERT INTO " + kind.Table() + " (id, user_id, skill_name, description, category, created_at) VALUES (?, ?, ?, ?, ?, ?)"
	if _, err := r.db.ExecContext(ctx, q, s.ID, s.UserID, s.SkillName, s.Description, s.Category, s.CreatedAt); err != nil {
		return fmt.Errorf("insert %s skill: %w", kind, err)
	}
	return nil
}

func (r *SkillRepo) ListByUser(ctx context.Context, kind model.SkillKind, userID string) ([]model.Skill, error) {
	q := `SELECT id, user_id, skill_name, description, category, created_at
	      FROM ` + kind.Table() + ` WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list %s skills: %w", kind, err)
	}
	defer rows.Close()

	out := []model.Skill{}
	for rows.Next() {
		var s model.Skill
		if err := rows.Scan(&s.ID, &s.UserID, &s.SkillName, &s.Description, &s.Category, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SkillRepo) ListAll(ctx context.Context, kind model.SkillKind) ([]model.SkillWithOwner, error) {
	return r.listJoined(ctx, kind, "", nil)
}

// Search mirrors an ILIKE over the three text columns.
func (r *SkillRepo) Search(ctx context.Context, kind model.SkillKind, term string) ([]model.SkillWithOwner, error) {
	like := "%" + escapeLike(strings.ToLower(term)) + "%"
	cond := "(LOWER(s.skill_name) LIKE ? OR LOWER(s.description) LIKE ? OR LOWER(s.category) LIKE ?)"
	return r.listJoined(ctx, kind, cond, []any{like, like, like})
}

func (r *SkillRepo) ListByCategory(ctx context.Context, kind model.SkillKind, category string) ([]model.SkillWithOwner, error) {
	return r.listJoined(ctx, kind, "LOWER(s.category) = ?", []any{strings.ToLower(strings.TrimSpace(category))})
}

// Delete scopes the predicate by owner; a foreign skill is left untouched.
func (r *SkillRepo) Delete(ctx context.Context, kind model.SkillKind, id, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM "+kind.Table()+" WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return false, fmt.Errorf("delete %s skill: %w", kind, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *SkillRepo) listJoined(ctx context.Context, kind model.SkillKind, cond string, args []any) ([]model.SkillWithOwner, error) {
	where := "u.privacy = ?"
	all := append([]any{string(model.PrivacyPublic)}, args...)
	if cond != "" {
		where += " AND " + cond
	}
	q := `SELECT s.id, s.user_id, s.skill_name, s.description, s.category, s.created_at,
	             u.username, u.location, u.avatar, u.availability
	      FROM ` + kind.Table() + ` s
	      JOIN users u ON u.id = s.user_id
	      WHERE ` + where + `
	      ORDER BY s.created_at DESC`

	rows, err := r.db.QueryContext(ctx, q, all...)
	if err != nil {
		return nil, fmt.Errorf("list %s skills: %w", kind, err)
	}
	defer rows.Close()

	out := []model.SkillWithOwner{}
	for rows.Next() {
		var (
			s model.SkillWithOwner
			o model.SkillOwner
		)
		if err := rows.Scan(&s.ID, &s.UserID, &s.SkillName, &s.Description, &s.Category, &s.CreatedAt,
			&o.Name, &o.Location, &o.Avatar, &o.Availability); err != nil {
			return nil, err
		}
		o.ID = s.UserID
		s.User = &o
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// escapeLike neutralises LIKE wildcards in user supplied search terms.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
