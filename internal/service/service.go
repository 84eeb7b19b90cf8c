// Package service holds the club use cases. Every operation runs inside one or more
// transactions bound to the caller's claims; row-level security decides what each
// caller may see, and the checks here turn the remaining rules into typed errors.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"clubapi/internal/events"
	"clubapi/internal/metrics"
	"clubapi/internal/model"
	"clubapi/internal/notify"
	"clubapi/internal/repository"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Deps are the collaborators shared by every service.
type Deps struct {
	Tx       repository.Transactor
	Events   events.Publisher
	Notifier notify.Publisher
	Metrics  *metrics.Metrics
	Now      func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Events == nil {
		d.Events = events.Noop{}
	}
	if d.Notifier == nil {
		d.Notifier = notify.Noop{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

func (d Deps) now() time.Time {
	return d.Now().UTC()
}

// publish sends e after commit. Failures are logged, never returned.
func (d Deps) publish(ctx context.Context, e events.Event) {
	if err := d.Events.Publish(ctx, e); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("event", e.Type).Str("aggregate_id", e.AggregateID).Msg("publish event")
	}
}

// enqueue queues an email after commit. Failures are logged, never returned.
func (d Deps) enqueue(ctx context.Context, job notify.Job) {
	if job.To == "" {
		return
	}
	err := d.Notifier.Enqueue(ctx, job)
	d.Metrics.NotificationEnqueued(string(job.Kind), err)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("kind", string(job.Kind)).Msg("enqueue notification")
	}
}

// requireRole rejects anonymous callers and callers ranked below min.
func requireRole(claims model.Claims, min model.Role) error {
	if !claims.Authenticated() {
		return ErrUnauthenticated
	}
	if !claims.Role.AtLeast(min) {
		return fmt.Errorf("%w: requires %s role", ErrForbidden, min)
	}
	return nil
}

func requireID(name, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s must be a uuid", ErrInvalidInput, name)
	}
	return nil
}

// normalizePage clamps limit to (0, maxLimit] and offset to >= 0.
func normalizePage(limit, offset int) repository.PageQuery {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return repository.PageQuery{Limit: limit, Offset: offset}
}

// ListResult is the service-level DTO for paginated listings.
type ListResult[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

func listResult[T any](res *repository.PageResult[T]) *ListResult[T] {
	items := res.Items
	if items == nil {
		items = []T{}
	}
	return &ListResult[T]{Items: items, Total: res.Total}
}
