// Package repository defines persistence contracts. Implementations live in subpackages
// and contain SQL only; business rules stay in the service layer.
package repository

import (
	"context"
	"errors"

	"clubapi/internal/model"
)

// Errors returned by implementations after translating driver errors.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrInvalid         = errors.New("invalid input")
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Transactor runs fn inside one transaction bound to claims, so row-level security
// policies see the caller. The transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	InScope(ctx context.Context, claims model.Claims, fn func(Store) error) error
	InReadScope(ctx context.Context, claims model.Claims, fn func(Store) error) error
}

// Store hands out repositories bound to the current scope.
type Store interface {
	Workshops() WorkshopRepository
	Registrations() RegistrationRepository
	Interests() InterestRepository
	Refunds() RefundRepository
	Inventory() InventoryRepository
	Invitations() InvitationRepository
	Members() MemberRepository
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
