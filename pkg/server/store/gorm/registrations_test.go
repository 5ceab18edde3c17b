package gorm

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/inscricao/pkg/server/store"
)

func TestRegistrationStore_FindByName(t *testing.T) {
	db, mock := setupTestDB(t)
	cipher := testCipher(t)
	s := NewRegistrationStore(db, cipher)

	encName, err := cipher.Encrypt(nameAAD, []byte("alice"))
	require.NoError(t, err)
	encSchool, err := cipher.Encrypt(encName, []byte("10"))
	require.NoError(t, err)
	consent := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE name = \$1`).
		WithArgs(encName).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "school", "date_consent"}).
			AddRow(7, encName, encSchool, consent))

	r, err := s.FindByName(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, &store.Registration{ID: 7, Name: "alice", SchoolID: 10, DateConsent: consent}, r)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationStore_FindByNameMissing(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewRegistrationStore(db, testCipher(t))

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE name = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "school", "date_consent"}))

	_, err := s.FindByName(context.Background(), "bob")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRegistrationStore_FindByNameRejectsMovedSchool(t *testing.T) {
	db, mock := setupTestDB(t)
	cipher := testCipher(t)
	s := NewRegistrationStore(db, cipher)

	aliceName, _ := cipher.Encrypt(nameAAD, []byte("alice"))
	bobName, _ := cipher.Encrypt(nameAAD, []byte("bob"))
	bobSchool, _ := cipher.Encrypt(bobName, []byte("10"))

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE name = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "school", "date_consent"}).
			AddRow(1, aliceName, bobSchool, time.Now()))

	_, err := s.FindByName(context.Background(), "alice")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrNotFound)
}

func TestRegistrationStore_CreateEncryptsColumns(t *testing.T) {
	db, mock := setupTestDB(t)
	cipher := testCipher(t)
	s := NewRegistrationStore(db, cipher)

	encName, _ := cipher.Encrypt(nameAAD, []byte("alice"))
	encSchool, _ := cipher.Encrypt(encName, []byte(strconv.Itoa(10)))

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WithArgs(encName, encSchool, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectCommit()

	r := &store.Registration{Name: "alice", SchoolID: 10, DateConsent: time.Now()}
	require.NoError(t, s.Create(context.Background(), r))
	assert.Equal(t, int64(42), r.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationStore_CreateDuplicate(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "pg unique violation", err: &pgconn.PgError{Code: "23505", Message: "duplicate key value"}},
		{name: "translated gorm error", err: gorm.ErrDuplicatedKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupTestDB(t)
			s := NewRegistrationStore(db, testCipher(t))

			mock.ExpectBegin()
			mock.ExpectQuery(`INSERT INTO "users"`).WillReturnError(tt.err)
			mock.ExpectRollback()

			err := s.Create(context.Background(), &store.Registration{Name: "alice", SchoolID: 10})
			assert.ErrorIs(t, err, store.ErrDuplicate)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegistrationStore_UpdateSchool(t *testing.T) {
	t.Run("updates only the school", func(t *testing.T) {
		db, mock := setupTestDB(t)
		cipher := testCipher(t)
		s := NewRegistrationStore(db, cipher)

		encName, _ := cipher.Encrypt(nameAAD, []byte("alice"))
		encSchool, _ := cipher.Encrypt(encName, []byte("99"))

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "users" SET "school"=\$1 WHERE name = \$2`).
			WithArgs(encSchool, encName).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, s.UpdateSchool(context.Background(), "alice", 99))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no registration", func(t *testing.T) {
		db, mock := setupTestDB(t)
		s := NewRegistrationStore(db, testCipher(t))

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "users"`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := s.UpdateSchool(context.Background(), "nobody", 99)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestRegistrationStore_Delete(t *testing.T) {
	db, mock := setupTestDB(t)
	cipher := testCipher(t)
	s := NewRegistrationStore(db, cipher)

	encName, _ := cipher.Encrypt(nameAAD, []byte("alice"))

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "users" WHERE name = \$1`).
		WithArgs(encName).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "users" WHERE name = \$1`).
		WithArgs(encName).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, s.Delete(context.Background(), "alice"))
	assert.ErrorIs(t, s.Delete(context.Background(), "alice"), store.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
