package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenRepo(t *testing.T) (*TokenRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTokenRepo(db), mock
}

func TestTokenRepo_StoreRefresh(t *testing.T) {
	repo, mock := newTokenRepo(t)
	exp := time.Now().UTC().Add(7 * 24 * time.Hour)

	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)")).
		WithArgs("user-1", "hash-1", exp).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.StoreRefresh(context.Background(), "user-1", "hash-1", exp)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepo_FindByHash(t *testing.T) {
	repo, mock := newTokenRepo(t)
	created := time.Now().UTC()
	exp := created.Add(24 * time.Hour)

	rows := sqlmock.NewRows([]string{"id", "user_id", "token_hash", "expires_at", "revoked_at", "created_at"}).
		AddRow(7, "user-1", "hash-1", exp, nil, created)
	mock.ExpectQuery("SELECT id, user_id, token_hash, expires_at, revoked_at, created_at FROM refresh_tokens").
		WithArgs("hash-1").
		WillReturnRows(rows)

	rec, err := repo.FindByHash(context.Background(), "hash-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), rec.ID)
	assert.Equal(t, "user-1", rec.UserID)
	require.NotNil(t, rec.ExpiresAt)
	assert.Nil(t, rec.RevokedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepo_FindByHash_NotFound(t *testing.T) {
	repo, mock := newTokenRepo(t)

	mock.ExpectQuery("SELECT id, user_id, token_hash").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByHash(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestTokenRepo_RevokeByHash(t *testing.T) {
	repo, mock := newTokenRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE token_hash=? AND revoked_at IS NULL")).
		WithArgs("hash-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	flipped, err := repo.RevokeByHash(context.Background(), "hash-1")
	require.NoError(t, err)
	assert.True(t, flipped)
}

func TestTokenRepo_RevokeByHash_AlreadyRevoked(t *testing.T) {
	repo, mock := newTokenRepo(t)

	// Second revoke matches zero rows due to the revoked_at IS NULL
	// predicate: not an error, just flipped=false.
	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at=NOW()").
		WithArgs("hash-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	flipped, err := repo.RevokeByHash(context.Background(), "hash-1")
	require.NoError(t, err)
	assert.False(t, flipped)
}

func TestTokenRepo_RevokeAllForUser(t *testing.T) {
	repo, mock := newTokenRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE user_id=? AND revoked_at IS NULL")).
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	assert.NoError(t, repo.RevokeAllForUser(context.Background(), "user-1"))
}

func TestTokenRepo_PurgeExpired(t *testing.T) {
	repo, mock := newTokenRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(
		"DELETE FROM refresh_tokens WHERE expires_at IS NOT NULL AND expires_at <= NOW()")).
		WillReturnResult(sqlmock.NewResult(0, 12))

	n, err := repo.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)

	// Idempotent: a second run simply deletes nothing.
	mock.ExpectExec("DELETE FROM refresh_tokens").
		WillReturnResult(sqlmock.NewResult(0, 0))
	n, err = repo.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
