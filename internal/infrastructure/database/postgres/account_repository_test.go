package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"storefront-identity/internal/domain/account"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var accountColumns = []string{
	"id", "first_name", "last_name", "name", "email", "phone", "password_hash",
	"is_admin", "reset_token", "reset_expires", "created_at", "updated_at",
}

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := NewDBFromConn(conn)
	require.NoError(t, err)
	return db, mock
}

func accountRow(id, email string, isAdmin bool) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(accountColumns).AddRow(
		id, "Ada", "Lovelace", "Ada Lovelace", email, "", "$2a$10$hash",
		isAdmin, nil, nil, now, now,
	)
}

func TestAccountRepository_FindByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)
	id := uuid.NewString()

	mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE email = \$1`).
		WillReturnRows(accountRow(id, "a@x.com", true))

	got, err := repo.FindByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "a@x.com", got.Email)
	assert.True(t, got.IsAdmin)
	assert.Empty(t, got.ResetToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_FindByEmail_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows(accountColumns))

	_, err := repo.FindByEmail(context.Background(), "missing@x.com")
	assert.ErrorIs(t, err, account.ErrAccountNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_FindByEmail_StorageError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "accounts"`).WillReturnError(sql.ErrConnDone)

	_, err := repo.FindByEmail(context.Background(), "a@x.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, account.ErrAccountNotFound)
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestAccountRepository_FindByID_MalformedID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	_, err := repo.FindByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, account.ErrAccountNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_Insert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectExec(`INSERT INTO "accounts"`).WillReturnResult(sqlmock.NewResult(0, 1))

	a := &account.Account{Name: "Ada", Email: "a@x.com", PasswordHash: "hash"}
	require.NoError(t, repo.Insert(context.Background(), a))
	assert.NotEmpty(t, a.ID)
	assert.False(t, a.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_Insert_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectExec(`INSERT INTO "accounts"`).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation, ConstraintName: "accounts_email_key"})

	err := repo.Insert(context.Background(), &account.Account{Name: "Ada", Email: "a@x.com", PasswordHash: "hash"})
	assert.ErrorIs(t, err, account.ErrAccountExists)
}

func TestAccountRepository_ConsumeResetToken(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)
	id := uuid.NewString()

	mock.ExpectQuery(`UPDATE "accounts" SET .* WHERE reset_token = \$\d+ AND reset_expires > \$\d+ RETURNING \*`).
		WillReturnRows(accountRow(id, "a@x.com", false))

	got, err := repo.ConsumeResetToken(context.Background(), "tok", time.Now(), "newhash")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_ConsumeResetToken_NoMatch(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectQuery(`UPDATE "accounts" SET .* RETURNING \*`).
		WillReturnRows(sqlmock.NewRows(accountColumns))

	_, err := repo.ConsumeResetToken(context.Background(), "tok", time.Now(), "newhash")
	assert.ErrorIs(t, err, account.ErrResetTokenInvalid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_DeleteByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)
	id := uuid.NewString()

	mock.ExpectExec(`DELETE FROM "accounts" WHERE id = \$1`).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.DeleteByID(context.Background(), id))

	mock.ExpectExec(`DELETE FROM "accounts" WHERE id = \$1`).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.DeleteByID(context.Background(), id), account.ErrAccountNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_SetResetToken_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectExec(`UPDATE "accounts" SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetResetToken(context.Background(), uuid.NewString(), "tok", time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, account.ErrAccountNotFound)
}

func TestAccountRepository_ClearExpiredResetTokens(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectExec(`UPDATE "accounts" SET .* WHERE reset_expires <= \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	cleared, err := repo.ClearExpiredResetTokens(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(2), cleared)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatchColumns(t *testing.T) {
	empty := ""
	admin := true
	cols := patchColumns(account.Patch{Phone: &empty, IsAdmin: &admin})

	assert.Equal(t, map[string]interface{}{"phone": "", "is_admin": true}, cols)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: uniqueViolation}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, isUniqueViolation(errors.New("ERROR: duplicate key value violates unique constraint")))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
}

func TestMigrate(t *testing.T) {
	db, _ := newMockDB(t)

	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}
	require.NoError(t, db.Migrate(context.Background()))
	assert.Equal(t, ".", gotDir)

	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	assert.Error(t, db.Migrate(context.Background()))
}
