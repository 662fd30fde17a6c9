package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-adp-console/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

var accountRowColumns = []string{"id", "first_name", "last_name", "email", "role", "account_status", "last_activity_at", "program_ids", "program_names", "created_at", "updated_at"}

func TestListAccountsWithFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(accountRowColumns).
		AddRow("acc-1", "Grace", "Hopper", "grace@example.edu", "program_admin", "active", now, "{p1,p2}", "{Law,Nursing}", now, now).
		AddRow("acc-2", "Ada", "Lovelace", "ada@example.edu", "program_admin", "active", nil, "{}", "{}", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND a.role = $1 AND (LOWER(a.first_name) LIKE $2 OR LOWER(a.last_name) LIKE $2 OR LOWER(a.email) LIKE $2) GROUP BY a.id ORDER BY a.last_name ASC, a.first_name ASC")).
		WithArgs(models.RoleProgramAdmin, "%example%").
		WillReturnRows(rows)

	role := models.RoleProgramAdmin
	accounts, err := repo.List(context.Background(), models.AccountFilter{Role: &role, Search: " Example "})
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, []string{"p1", "p2"}, []string(accounts[0].ProgramIDs))
	assert.Equal(t, models.AccountActive, accounts[0].Status)
	assert.Nil(t, accounts[1].LastActivityAt)
	assert.Empty(t, accounts[1].ProgramIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAccountNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.id = $1 GROUP BY a.id")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAccount(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectExec("UPDATE accounts SET first_name").
		WithArgs("Grace", "Hopper", models.RoleInstructor, models.AccountInactive, sqlmock.AnyArg(), "acc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE accounts SET first_name").WillReturnResult(sqlmock.NewResult(0, 0))

	account := &models.Account{ID: "acc-1", FirstName: "Grace", LastName: "Hopper", Role: models.RoleInstructor, Status: models.AccountInactive}
	require.NoError(t, repo.Update(context.Background(), account))
	assert.False(t, account.UpdatedAt.IsZero())

	err := repo.Update(context.Background(), &models.Account{ID: "gone"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountExistsByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM accounts WHERE LOWER(email) = LOWER($1))")).
		WithArgs("grace@example.edu").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByEmail(context.Background(), "grace@example.edu")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
