package repository

import (
	"context"

	"clubapi/internal/model"
)

type RefundRepository interface {
	Create(ctx context.Context, r *model.Refund) (*model.Refund, error)
	FindByID(ctx context.Context, id string) (*model.Refund, error)
	FindByIDForUpdate(ctx context.Context, id string) (*model.Refund, error)
	// FindOpenByRegistration returns ErrNotFound when no requested refund exists.
	FindOpenByRegistration(ctx context.Context, registrationID string) (*model.Refund, error)
	// List filters by status when it is non-empty.
	List(ctx context.Context, status model.RefundStatus) ([]model.Refund, error)
	// Decide stores the decision columns of r.
	Decide(ctx context.Context, r *model.Refund) error
}
