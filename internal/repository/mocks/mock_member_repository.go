package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"clubapi/internal/model"
	"clubapi/internal/repository"
)

type MockInvitationRepository struct {
	mock.Mock
}

func (m *MockInvitationRepository) Create(ctx context.Context, inv *model.Invitation, tokenHash string) (*model.Invitation, error) {
	args := m.Called(ctx, inv, tokenHash)
	if args.Get(0) == nil {
		if err := args.Error(1); err != nil {
			return nil, err
		}
		return inv, nil
	}
	return args.Get(0).(*model.Invitation), args.Error(1)
}

func (m *MockInvitationRepository) FindByID(ctx context.Context, id string) (*model.Invitation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invitation), args.Error(1)
}

func (m *MockInvitationRepository) FindByTokenHashForUpdate(ctx context.Context, tokenHash string) (*model.Invitation, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invitation), args.Error(1)
}

func (m *MockInvitationRepository) List(ctx context.Context, status model.InvitationStatus) ([]model.Invitation, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Invitation), args.Error(1)
}

func (m *MockInvitationRepository) UpdateStatus(ctx context.Context, inv *model.Invitation) error {
	return m.Called(ctx, inv).Error(0)
}

type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) FindByUserID(ctx context.Context, userID string) (*model.Member, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Member), args.Error(1)
}

func (m *MockMemberRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Member], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Member]), args.Error(1)
}

func (m *MockMemberRepository) Upsert(ctx context.Context, mem *model.Member) (*model.Member, error) {
	args := m.Called(ctx, mem)
	if args.Get(0) == nil {
		if err := args.Error(1); err != nil {
			return nil, err
		}
		return mem, nil
	}
	return args.Get(0).(*model.Member), args.Error(1)
}

func (m *MockMemberRepository) UpdateRole(ctx context.Context, userID string, role model.Role) error {
	return m.Called(ctx, userID, role).Error(0)
}
