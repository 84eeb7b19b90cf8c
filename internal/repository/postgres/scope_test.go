package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubapi/internal/model"
	"clubapi/internal/repository"
)

func newScopeMock(t *testing.T) (*Scope, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewScope(db, "authenticated", "service_role"), mock
}

func TestScope_InScope_BindsClaimsAndCommits(t *testing.T) {
	scope, mock := newScopeMock(t)
	ctx := context.Background()
	claims := model.Claims{Subject: "u1", Email: "a@b.c", Role: model.RoleMember}
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec("SELECT set_config\\('role'").
		WithArgs("authenticated", `{"sub":"u1","email":"a@b.c","app_role":"member"}`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM workshops WHERE id = \\$1").
		WithArgs("w1").
		WillReturnRows(workshopRows().AddRow(workshopRow("w1", "published", now)...))
	mock.ExpectCommit()

	var got *model.Workshop
	err := scope.InScope(ctx, claims, func(st repository.Store) error {
		var err error
		got, err = st.Workshops().FindByID(ctx, "w1")
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, "w1", got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScope_InScope_RollsBackOnError(t *testing.T) {
	scope, mock := newScopeMock(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectExec("set_config").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err := scope.InScope(context.Background(), model.Claims{Subject: "u1"}, func(repository.Store) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScope_InScope_RollsBackOnPanic(t *testing.T) {
	scope, mock := newScopeMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("set_config").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = scope.InScope(context.Background(), model.Claims{Subject: "u1"}, func(repository.Store) error {
			panic("kaboom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScope_InScope_RejectsMissingSubject(t *testing.T) {
	scope, mock := newScopeMock(t)

	err := scope.InScope(context.Background(), model.Claims{}, func(repository.Store) error {
		t.Fatal("fn must not run without claims")
		return nil
	})

	assert.ErrorIs(t, err, repository.ErrUnauthenticated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScope_ServiceClaimsUseServiceRole(t *testing.T) {
	scope, mock := newScopeMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("set_config").
		WithArgs("service_role", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := scope.InReadScope(context.Background(), model.ServiceClaims(), func(repository.Store) error { return nil })

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScope_BindFailureRollsBack(t *testing.T) {
	scope, mock := newScopeMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("set_config").WillReturnError(errors.New("role \"authenticated\" does not exist"))
	mock.ExpectRollback()

	err := scope.InScope(context.Background(), model.Claims{Subject: "u1"}, func(repository.Store) error {
		t.Fatal("fn must not run when binding fails")
		return nil
	})

	assert.ErrorContains(t, err, "bind claims")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScope_CommitError(t *testing.T) {
	scope, mock := newScopeMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("set_config").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

	err := scope.InScope(context.Background(), model.Claims{Subject: "u1"}, func(repository.Store) error { return nil })

	assert.ErrorContains(t, err, "commit tx: serialization failure")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBindClaims(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT set_config('role', $1, true), set_config('request.jwt.claims', $2, true)`).
		WithArgs("authenticated", `{"sub":"staff-1","app_role":"staff"}`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`SELECT set_config('role', $1, true), set_config('request.jwt.claims', $2, true)`).
		WillReturnError(&pgconn.PgError{Code: "42501", Message: `permission denied to set role "service_role"`})
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)

	require.NoError(t, BindClaims(ctx, tx, "authenticated", model.Claims{Subject: "staff-1", Role: model.RoleStaff}))

	err = BindClaims(ctx, tx, "service_role", model.Claims{Subject: "staff-1"})
	assert.ErrorIs(t, err, repository.ErrForbidden)
	assert.NotContains(t, err.Error(), "service_role")

	assert.ErrorIs(t, BindClaims(ctx, tx, "authenticated", model.Claims{}), repository.ErrUnauthenticated)

	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}
