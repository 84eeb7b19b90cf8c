package postgres

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"clubapi/internal/repository"
)

// PostgreSQL SQLSTATE codes translated by mapError.
const (
	codeInsufficientPrivilege = "42501"
	codeUniqueViolation       = "23505"
	codeForeignKeyViolation   = "23503"
	codeCheckViolation        = "23514"
	codeNotNullViolation      = "23502"
	codeInvalidTextRep        = "22P02"
)

// mapError translates driver errors into repository errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeInsufficientPrivilege:
		return &driverError{kind: repository.ErrForbidden, cause: pgErr}
	case codeUniqueViolation:
		return &driverError{kind: repository.ErrConflict, cause: pgErr}
	case codeForeignKeyViolation, codeCheckViolation, codeNotNullViolation, codeInvalidTextRep:
		return &driverError{kind: repository.ErrInvalid, cause: pgErr}
	}
	return err
}

// mapDeleteError treats a foreign key violation as a conflict: the row is still referenced.
func mapDeleteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation {
		return &driverError{kind: repository.ErrConflict, cause: pgErr}
	}
	return mapError(err)
}

// driverError is a translated driver error. Its message is the repository sentinel's
// alone; policy, table and constraint names stay on the wrapped *pgconn.PgError.
type driverError struct {
	kind  error
	cause *pgconn.PgError
}

func (e *driverError) Error() string { return e.kind.Error() }

func (e *driverError) Unwrap() []error { return []error{e.kind, e.cause} }

// expectOne returns ErrNotFound when a write matched no row, which is also what
// row-level security produces for rows the caller cannot see.
func expectOne(res sql.Result, err error) error {
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// MapError exposes the SQLSTATE translation to packages querying outside a Store.
func MapError(err error) error {
	return mapError(err)
}
