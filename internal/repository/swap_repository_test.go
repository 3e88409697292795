package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/skillswap/internal/model"
)

func swapRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "requester_id", "receiver_id", "offered_skill_id", "wanted_skill_id", "message", "status", "created_at", "updated_at"})
}

func TestSwapRepoUpdateStatus_Receiver(t *testing.T) {
	db, mock := setupMockDB(t)
	now := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE swap_requests")).
		WithArgs("accepted", "w1", "bob").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM swap_requests WHERE id = ? AND receiver_id = ?")).
		WithArgs("w1", "bob").
		WillReturnRows(swapRows().AddRow("w1", "alice", "bob", "s1", "s2", "hi", "accepted", now, now))

	w, err := NewSwapRepo(db).UpdateStatus(context.Background(), "w1", model.SwapAccepted, "bob")
	require.NoError(t, err)
	require.Equal(t, model.SwapAccepted, w.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSwapRepoUpdateStatus_NotReceiver(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE swap_requests")).
		WithArgs("accepted", "w1", "alice").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("FROM swap_requests WHERE id = ? AND receiver_id = ?")).
		WithArgs("w1", "alice").
		WillReturnRows(swapRows())

	_, err := NewSwapRepo(db).UpdateStatus(context.Background(), "w1", model.SwapAccepted, "alice")
	require.ErrorIs(t, err, ErrSwapNotFound)
}

func TestSwapRepoListByUser_MissingReferences(t *testing.T) {
	db, mock := setupMockDB(t)
	now := time.Now().UTC()
	cols := []string{
		"id", "requester_id", "receiver_id", "offered_skill_id", "wanted_skill_id", "message", "status", "created_at", "updated_at",
		"rq_id", "rq_name", "rq_avatar", "rq_location",
		"rc_id", "rc_name", "rc_avatar", "rc_location",
		"so_id", "so_name", "so_category",
		"sw_id", "sw_name", "sw_category",
	}
	mock.ExpectQuery(regexp.QuoteMeta("WHERE w.requester_id = ? OR w.receiver_id = ?")).
		WithArgs("alice", "alice").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			"w1", "alice", "bob", "s1", "s2", "", "pending", now, now,
			"alice", "Alice", "", "Berlin",
			"bob", "Bob", "", "",
			"s1", "Guitar Basics", "Music",
			nil, nil, nil,
		))

	out, err := NewSwapRepo(db).ListByUser(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "Alice", out[0].Requester.Name)
	require.Equal(t, "Guitar Basics", out[0].OfferedSkill.SkillName)
	require.Nil(t, out[0].WantedSkill)
}

func TestTokenRepoValidateRefresh(t *testing.T) {
	db, mock := setupMockDB(t)
	cols := []string{"user_id", "expires_at", "revoked_at"}
	future := time.Now().UTC().Add(time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE token_hash=?")).
		WithArgs("active").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("u1", future, nil))
	mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE token_hash=?")).
		WithArgs("revoked").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("u1", future, time.Now().UTC()))
	mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE token_hash=?")).
		WithArgs("expired").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("u1", time.Now().UTC().Add(-time.Minute), nil))

	repo := NewTokenRepo(db)
	uid, err := repo.ValidateRefresh(context.Background(), "active")
	require.NoError(t, err)
	require.Equal(t, "u1", uid)

	_, err = repo.ValidateRefresh(context.Background(), "revoked")
	require.ErrorIs(t, err, ErrSessionInvalid)
	_, err = repo.ValidateRefresh(context.Background(), "expired")
	require.ErrorIs(t, err, ErrSessionInvalid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepoConsumeRefresh_OnlyOnce(t *testing.T) {
	db, mock := setupMockDB(t)
	cols := []string{"user_id", "expires_at", "revoked_at"}
	future := time.Now().UTC().Add(time.Hour)
	update := regexp.QuoteMeta("UPDATE sessions SET revoked_at=CURRENT_TIMESTAMP(3) WHERE token_hash=? AND revoked_at IS NULL")

	mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE token_hash=?")).
		WithArgs("h").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("u1", future, nil))
	mock.ExpectExec(update).WithArgs("h").WillReturnResult(sqlmock.NewResult(0, 1))
	// A concurrent caller read the row before the first revoke landed.
	mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE token_hash=?")).
		WithArgs("h").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("u1", future, nil))
	mock.ExpectExec(update).WithArgs("h").WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewTokenRepo(db)
	uid, err := repo.ConsumeRefresh(context.Background(), "h")
	require.NoError(t, err)
	require.Equal(t, "u1", uid)

	_, err = repo.ConsumeRefresh(context.Background(), "h")
	require.ErrorIs(t, err, ErrSessionInvalid)
	require.NoError(t, mock.ExpectationsWereMet())
}
