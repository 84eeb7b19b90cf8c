package service

import (
	"errors"

	"clubapi/internal/repository"
)

var (
	ErrNotFound        = repository.ErrNotFound
	ErrForbidden       = repository.ErrForbidden
	ErrConflict        = repository.ErrConflict
	ErrInvalidInput    = repository.ErrInvalid
	ErrUnauthenticated = repository.ErrUnauthenticated

	ErrInvalidTransition = errors.New("invalid state transition")
	ErrWorkshopFull      = errors.New("workshop is full")
	ErrPaymentProvider   = errors.New("payment provider error")
	ErrUnavailable       = errors.New("dependency unavailable")
)
