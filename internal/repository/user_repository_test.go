package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/skillswap/internal/model"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "username", "password_hash", "location", "avatar", "privacy", "availability", "created_at", "updated_at"})
}

func TestUserRepoCreate_LowercasesEmail(t *testing.T) {
	db, mock := setupMockDB(t)
	now := time.Now().UTC()
	u := &model.User{ID: "u1", Email: " Alice@X.com ", Username: "alice", PasswordHash: "h", Privacy: model.PrivacyPublic, Availability: "available", CreatedAt: now, UpdatedAt: now}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (" + userColumns + ")")).
		WithArgs("u1", "alice@x.com", "alice", "h", "", "", "public", "available", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewUserRepo(db).Create(context.Background(), u))
	require.Equal(t, "alice@x.com", u.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoCreate_DuplicateEmail(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := NewUserRepo(db).Create(context.Background(), &model.User{ID: "u1", Email: "a@x.com"})
	require.ErrorIs(t, err, ErrEmailExists)
}

func TestUserRepoGetByID_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=?")).
		WithArgs("missing").
		WillReturnRows(userRows())

	_, err := NewUserRepo(db).GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepoGetByEmail_Normalizes(t *testing.T) {
	db, mock := setupMockDB(t)
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=?")).
		WithArgs("a@x.com").
		WillReturnRows(userRows().AddRow("u1", "a@x.com", "alice", "h", "Berlin", "", "private", "weekends", now, now))

	u, err := NewUserRepo(db).GetByEmail(context.Background(), "A@X.COM")
	require.NoError(t, err)
	require.Equal(t, "u1", u.ID)
	require.Equal(t, model.PrivacyPrivate, u.Privacy)
	require.Equal(t, "Berlin", u.Location)
}

func TestUserRepoUpdate_OnlyGivenFields(t *testing.T) {
	db, mock := setupMockDB(t)
	now := time.Now().UTC()
	loc := "Paris"
	priv := model.PrivacyPrivate

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET location=?, privacy=?, updated_at=CURRENT_TIMESTAMP(3) WHERE id=?")).
		WithArgs("Paris", "private", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=?")).
		WithArgs("u1").
		WillReturnRows(userRows().AddRow("u1", "a@x.com", "alice", "h", "Paris", "", "private", "available", now, now))

	u, err := NewUserRepo(db).Update(context.Background(), "u1", model.UserUpdate{Location: &loc, Privacy: &priv})
	require.NoError(t, err)
	require.Equal(t, "Paris", u.Location)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoUpdate_EmptyJustReloads(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=?")).
		WithArgs("u1").
		WillReturnRows(userRows())

	_, err := NewUserRepo(db).Update(context.Background(), "u1", model.UserUpdate{})
	require.ErrorIs(t, err, ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoListPublic(t *testing.T) {
	db, mock := setupMockDB(t)
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE privacy=? ORDER BY created_at DESC")).
		WithArgs("public").
		WillReturnRows(userRows().
			AddRow("u2", "b@x.com", "bob", "h", "", "", "public", "available", now, now).
			AddRow("u1", "a@x.com", "alice", "h", "", "", "public", "available", now.Add(-time.Hour), now))

	users, err := NewUserRepo(db).ListPublic(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, "u2", users[0].ID)
}
