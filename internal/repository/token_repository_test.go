package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/swapi-mirror/internal/model"
)

var tokenCols = []string{"id", "user_id", "token", "remaining_requests", "expires_at", "created_at"}

func TestTokenRepoInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	exp := time.Now().Add(5 * time.Minute)
	mock.ExpectExec("INSERT INTO api_tokens").
		WithArgs("u-1", "tok", 5, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(42, 1))

	rec := &model.APIToken{UserID: "u-1", Token: "tok", RemainingRequests: 5, ExpiresAt: exp}
	require.NoError(t, NewTokenRepo(db).Insert(context.Background(), rec))
	assert.Equal(t, uint64(42), rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepoConsumeLatestDecrementsLockedRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM api_tokens WHERE token_hash = SHA2\(\?, 256\) AND token = \? AND expires_at > \? AND remaining_requests > 0 ORDER BY created_at DESC, id DESC LIMIT 1 FOR UPDATE`).
		WithArgs("tok", "tok", now).
		WillReturnRows(sqlmock.NewRows(tokenCols).AddRow(7, "u-1", "tok", 3, now.Add(time.Minute), now))
	mock.ExpectExec(`UPDATE api_tokens SET remaining_requests = remaining_requests - 1 WHERE id = \? AND remaining_requests > 0`).
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	got, err := NewTokenRepo(db).ConsumeLatest(context.Background(), "tok", now)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), got.ID)
	assert.Equal(t, "u-1", got.UserID)
	assert.Equal(t, 2, got.RemainingRequests)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepoConsumeLatestNoLiveRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM api_tokens").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err = NewTokenRepo(db).ConsumeLatest(context.Background(), "tok", time.Now())
	assert.ErrorIs(t, err, ErrTokenUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepoConsumeLatestLostRace(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM api_tokens").
		WillReturnRows(sqlmock.NewRows(tokenCols).AddRow(7, "u-1", "tok", 1, now.Add(time.Minute), now))
	mock.ExpectExec("UPDATE api_tokens").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err = NewTokenRepo(db).ConsumeLatest(context.Background(), "tok", now)
	assert.ErrorIs(t, err, ErrTokenUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}
