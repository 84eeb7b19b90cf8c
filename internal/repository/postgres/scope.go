package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"clubapi/internal/model"
	"clubapi/internal/repository"
)

// bindClaimsQuery makes the transaction assume the database role and exposes the
// caller's claims to policies through current_setting('request.jwt.claims').
const bindClaimsQuery = `SELECT set_config('role', $1, true), set_config('request.jwt.claims', $2, true)`

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Scope opens claim-bound transactions on a PostgreSQL pool.
type Scope struct {
	db                *sql.DB
	authenticatedRole string
	serviceRole       string
}

// NewScope returns a Scope assuming authenticatedRole for callers and serviceRole for service claims.
func NewScope(db *sql.DB, authenticatedRole, serviceRole string) *Scope {
	return &Scope{db: db, authenticatedRole: authenticatedRole, serviceRole: serviceRole}
}

var _ repository.Transactor = (*Scope)(nil)

func (s *Scope) InScope(ctx context.Context, claims model.Claims, fn func(repository.Store) error) error {
	return s.run(ctx, claims, nil, fn)
}

func (s *Scope) InReadScope(ctx context.Context, claims model.Claims, fn func(repository.Store) error) error {
	return s.run(ctx, claims, &sql.TxOptions{ReadOnly: true}, fn)
}

// DatabaseRole returns the role a scope for claims assumes.
func (s *Scope) DatabaseRole(claims model.Claims) string {
	if claims.Service {
		return s.serviceRole
	}
	return s.authenticatedRole
}

// BindClaims makes tx assume role and exposes claims to row-level security policies
// until the transaction ends. Every claim-bound transaction goes through it.
func BindClaims(ctx context.Context, tx DBTX, role string, claims model.Claims) error {
	if !claims.Authenticated() {
		return repository.ErrUnauthenticated
	}
	payload, err := claims.JSON()
	if err != nil {
		return fmt.Errorf("encode claims: %w", err)
	}
	if _, err := tx.ExecContext(ctx, bindClaimsQuery, role, payload); err != nil {
		return fmt.Errorf("bind claims: %w", mapError(err))
	}
	return nil
}

func (s *Scope) run(ctx context.Context, claims model.Claims, opts *sql.TxOptions, fn func(repository.Store) error) (err error) {
	if !claims.Authenticated() {
		return repository.ErrUnauthenticated
	}

	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = BindClaims(ctx, tx, s.DatabaseRole(claims), claims); err != nil {
		return err
	}

	if err = fn(NewStore(tx)); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
