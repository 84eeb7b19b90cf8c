package repository

import (
	"context"
	"time"

	"clubapi/internal/model"
)

type WorkshopRepository interface {
	Create(ctx context.Context, w *model.Workshop) (*model.Workshop, error)
	FindByID(ctx context.Context, id string) (*model.Workshop, error)
	// FindByIDForUpdate locks the row until the scope ends.
	FindByIDForUpdate(ctx context.Context, id string) (*model.Workshop, error)
	// List filters by status when it is non-empty.
	List(ctx context.Context, status model.WorkshopStatus, pq PageQuery) (*PageResult[model.Workshop], error)
	// Update writes every mutable column of w, including status and lifecycle timestamps.
	Update(ctx context.Context, w *model.Workshop) (*model.Workshop, error)
	Delete(ctx context.Context, id string) error
}

type RegistrationRepository interface {
	Create(ctx context.Context, r *model.Registration) (*model.Registration, error)
	FindByID(ctx context.Context, id string) (*model.Registration, error)
	FindByIDForUpdate(ctx context.Context, id string) (*model.Registration, error)
	// FindActive returns the caller's pending or confirmed registration for a workshop.
	FindActive(ctx context.Context, workshopID, userID string) (*model.Registration, error)
	FindByPaymentIntent(ctx context.Context, paymentIntentID string) (*model.Registration, error)
	CountActive(ctx context.Context, workshopID string) (int, error)
	// LockSeats serialises seat allocation and workshop state changes until the scope ends.
	// Take it before reading the workshop.
	LockSeats(ctx context.Context, workshopID string) error
	// ListByWorkshop filters by statuses when the slice is non-empty.
	ListByWorkshop(ctx context.Context, workshopID string, statuses []model.RegistrationStatus) ([]model.Registration, error)
	ListByUser(ctx context.Context, userID string) ([]model.Registration, error)
	UpdateStatus(ctx context.Context, id string, status model.RegistrationStatus) error
	SetPaymentIntent(ctx context.Context, id, paymentIntentID string) error
	SetAttendance(ctx context.Context, id string, attendance model.Attendance, checkedInAt *time.Time) error
	// MarkNoShows flips confirmed registrations with unknown attendance to no_show.
	MarkNoShows(ctx context.Context, workshopID string) (int64, error)
}

type InterestRepository interface {
	// Add is idempotent.
	Add(ctx context.Context, workshopID, userID string) error
	Remove(ctx context.Context, workshopID, userID string) error
	Summary(ctx context.Context, workshopID, userID string) (*model.InterestSummary, error)
}
