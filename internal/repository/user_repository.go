package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/skillswap/internal/model"
)

const userColumns = "id,email,username,password_hash,location,avatar,privacy,availability,created_at,updated_at"

// UserRepo is the MySQL implementation of UserRepository.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts the user row. Emails are stored lower-cased.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = normalizeEmail(u.Email)
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?,?,?,?,?,?,?,?,?,?)",
		u.ID, u.Email, u.Username, u.PasswordHash, u.Location, u.Avatar, string(u.Privacy), u.Availability, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	return scanUser(row)
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", normalizeEmail(email))
	return scanUser(row)
}

// Update writes only the fields present in upd, then reloads the row.
func (r *UserRepo) Update(ctx context.Context, id string, upd model.UserUpdate) (*model.User, error) {
	sets := []string{}
	args := []any{}
	if upd.Username != nil {
		sets = append(sets, "username=?")
		args = append(args, *upd.Username)
	}
	if upd.Location != nil {
		sets = append(sets, "location=?")
		args = append(args, *upd.Location)
	}
	if upd.Privacy != nil {
		sets = append(sets, "privacy=?")
		args = append(args, string(*upd.Privacy))
	}
	if upd.Availability != nil {
		sets = append(sets, "availability=?")
		args = append(args, *upd.Availability)
	}
	if upd.Avatar != nil {
		sets = append(sets, "avatar=?")
		args = append(args, *upd.Avatar)
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}
	sets = append(sets, "updated_at=CURRENT_TIMESTAMP(3)")
	args = append(args, id)

	if _, err := r.DB.ExecContext(ctx, "UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id=?", args...); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	// MySQL reports 0 affected rows when values are unchanged, so a miss
	// is detected by the reload instead of RowsAffected.
	return r.GetByID(ctx, id)
}

// ListPublic returns every public profile ordered by creation time.
func (r *UserRepo) ListPublic(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE privacy=? ORDER BY created_at DESC", string(model.PrivacyPublic))
	if err != nil {
		return nil, fmt.Errorf("list public users: %w", err)
	}
	defer rows.Close()

	out := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (*model.User, error) {
	var (
		u       model.User
		privacy string
	)
	err := s.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Location, &u.Avatar, &privacy, &u.Availability, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.Privacy = model.Privacy(privacy)
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// isDuplicateKey detects MySQL error 1062 (ER_DUP_ENTRY).
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return strings.Contains(err.Error(), "1062")
}
