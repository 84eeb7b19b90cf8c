// Package auth verifies bearer tokens and attaches the caller's claims to the request.
package auth

import (
	"context"
	"errors"
)

var ErrInvalidToken = errors.New("invalid token")

// Identity is what a verified token says about the caller. The club role is
// resolved separately from the database.
type Identity struct {
	Subject string
	Email   string
}

type Verifier interface {
	Verify(ctx context.Context, rawToken string) (Identity, error)
}
