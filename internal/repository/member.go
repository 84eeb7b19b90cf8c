package repository

import (
	"context"

	"clubapi/internal/model"
)

type InvitationRepository interface {
	Create(ctx context.Context, inv *model.Invitation, tokenHash string) (*model.Invitation, error)
	FindByID(ctx context.Context, id string) (*model.Invitation, error)
	// FindByTokenHashForUpdate locks the invitation matching the hashed token.
	FindByTokenHashForUpdate(ctx context.Context, tokenHash string) (*model.Invitation, error)
	// List filters by stored status when it is non-empty.
	List(ctx context.Context, status model.InvitationStatus) ([]model.Invitation, error)
	// UpdateStatus stores status, accepted_by and accepted_at of inv.
	UpdateStatus(ctx context.Context, inv *model.Invitation) error
}

type MemberRepository interface {
	FindByUserID(ctx context.Context, userID string) (*model.Member, error)
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Member], error)
	// Upsert inserts the member or updates email, display name and role.
	Upsert(ctx context.Context, m *model.Member) (*model.Member, error)
	UpdateRole(ctx context.Context, userID string, role model.Role) error
}
