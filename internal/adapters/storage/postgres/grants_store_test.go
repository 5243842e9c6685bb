package postgres

import (
	"context"
	"testing"
	"time"

	"pet-medical-records/internal/domain/grants"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*GrantStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewGrantStore(db), mock
}

func TestGrantStore_ConsumeToken_FlipsUnused(t *testing.T) {
	store, mock := setupMockDB(t)

	mock.ExpectExec(`UPDATE tokens SET used = TRUE`).
		WithArgs(grants.TokenKindShare, "tok-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.ConsumeToken(context.Background(), grants.TokenKindShare, "tok-1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGrantStore_ConsumeToken_AlreadyUsed(t *testing.T) {
	store, mock := setupMockDB(t)

	mock.ExpectExec(`UPDATE tokens SET used = TRUE`).
		WithArgs(grants.TokenKindShare, "tok-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(grants.TokenKindShare, "tok-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	err := store.ConsumeToken(context.Background(), grants.TokenKindShare, "tok-1")
	assert.ErrorIs(t, err, grants.ErrExpiredOrUsed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGrantStore_ConsumeToken_Missing(t *testing.T) {
	store, mock := setupMockDB(t)

	mock.ExpectExec(`UPDATE tokens SET used = TRUE`).
		WithArgs(grants.TokenKindVet, "tok-x").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(grants.TokenKindVet, "tok-x").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	err := store.ConsumeToken(context.Background(), grants.TokenKindVet, "tok-x")
	assert.ErrorIs(t, err, grants.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGrantStore_CreateCode_CollisionWithLiveCode(t *testing.T) {
	store, mock := setupMockDB(t)

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	code := grants.AccessCode{Code: "123456", PetID: "pet-1", CreatedAt: now, ExpiresAt: now.Add(grants.CodeLifetime)}

	// Cero filas insertadas: otra mascota tiene el código vigente.
	mock.ExpectExec(`INSERT INTO access_codes`).
		WithArgs(code.PetID, code.Code, code.CreatedAt, code.ExpiresAt).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.CreateCode(context.Background(), code)
	assert.ErrorIs(t, err, grants.ErrCodeTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGrantStore_FindValidCode_ExpiredIsMiss(t *testing.T) {
	store, mock := setupMockDB(t)

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT pet_id, code, created_at, expires_at FROM access_codes`).
		WithArgs("123456", now).
		WillReturnRows(sqlmock.NewRows([]string{"pet_id", "code", "created_at", "expires_at"}))

	_, err := store.FindValidCode(context.Background(), "123456", now)
	assert.ErrorIs(t, err, grants.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGrantStore_PurgeExpiredUnused(t *testing.T) {
	store, mock := setupMockDB(t)

	olderThan := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec(`DELETE FROM tokens`).
		WithArgs(grants.TokenKindShare, olderThan, 1000).
		WillReturnResult(sqlmock.NewResult(0, 42))

	n, err := store.PurgeExpiredUnused(context.Background(), grants.TokenKindShare, olderThan, 1000)
	require.NoError(t, err)
	assert.Equal(t, 42, n)
	require.NoError(t, mock.ExpectationsWereMet())
}
