package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*BlacklistRepositoryImpl, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	return NewBlacklistRepository(sqlx.NewDb(raw, "mysql")), mock
}

func TestBlacklist_Exists(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT 1 FROM email_blacklist WHERE email = \?`).
		WithArgs("bad@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(`SELECT 1 FROM email_blacklist WHERE email = \?`).
		WithArgs("ok@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	hit, err := repo.Exists(ctx, "bad@example.com")
	require.NoError(t, err)
	assert.True(t, hit)

	hit, err = repo.Exists(ctx, "ok@example.com")
	require.NoError(t, err)
	assert.False(t, hit)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlacklist_ExistsError(t *testing.T) {
	repo, mock := newMockRepo(t)
	boom := errors.New("connection reset")

	mock.ExpectQuery(`SELECT 1 FROM email_blacklist`).WillReturnError(boom)

	_, err := repo.Exists(context.Background(), "x@example.com")
	assert.ErrorIs(t, err, boom)
}

func TestBlacklist_AddRemove(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO email_blacklist`).
		WithArgs("bad@example.com", "hard bounce", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM email_blacklist WHERE email = \?`).
		WithArgs("bad@example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM email_blacklist WHERE email = \?`).
		WithArgs("bad@example.com").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Add(ctx, "bad@example.com", "hard bounce"))

	removed, err := repo.Remove(ctx, "bad@example.com")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Remove(ctx, "bad@example.com")
	require.NoError(t, err)
	assert.False(t, removed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlacklist_List(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(`SELECT email, reason, created_at`).
		WithArgs(100, 0).
		WillReturnRows(sqlmock.NewRows([]string{"email", "reason", "created_at"}).
			AddRow("a@example.com", "complaint", now).
			AddRow("b@example.com", "", now))

	out, err := repo.List(context.Background(), 0, -5)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "a@example.com", out[0].Email)
	assert.Equal(t, "complaint", out[0].Reason)
	assert.Equal(t, now, out[0].CreatedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}
