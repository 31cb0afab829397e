package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db), mock
}

func TestInTxCommits(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE parking_spots SET status").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.InTx(context.Background(), func(q *Queries) error {
		return q.SetSpotStatus(context.Background(), 1, "M")
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInTxRollsBackOnError(t *testing.T) {
	s, mock := newMock(t)
	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectRollback()

	err := s.InTx(context.Background(), func(q *Queries) error { return boom })
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDuplicateKey(t *testing.T) {
	err := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'bob' for key 'users.uq_users_username'"}
	assert.Equal(t, "uq_users_username", duplicateKey(err))

	legacy := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '3' for key 'uq_reservations_open_user'"}
	assert.Equal(t, "uq_reservations_open_user", duplicateKey(legacy))

	assert.Equal(t, "", duplicateKey(&mysql.MySQLError{Number: 1213, Message: "Deadlock found"}))
	assert.Equal(t, "", duplicateKey(errors.New("plain")))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?,?,?", placeholders(3))
}
