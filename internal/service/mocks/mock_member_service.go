package mocks

import (
	"context"

	"clubapi/internal/model"
	"clubapi/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockMemberService struct {
	mock.Mock
}

func (m *MockMemberService) List(ctx context.Context, claims model.Claims, limit, offset int) (*service.ListResult[model.Member], error) {
	args := m.Called(ctx, claims, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.Member]), args.Error(1)
}

func (m *MockMemberService) Me(ctx context.Context, claims model.Claims) (*model.Member, error) {
	args := m.Called(ctx, claims)
	return member(args)
}

func (m *MockMemberService) ChangeRole(ctx context.Context, claims model.Claims, userID, role string) (*model.Member, error) {
	args := m.Called(ctx, claims, userID, role)
	return member(args)
}

func (m *MockMemberService) Navigation(claims model.Claims) []model.NavItem {
	args := m.Called(claims)
	return args.Get(0).([]model.NavItem)
}

type MockInvitationService struct {
	mock.Mock
}

func (m *MockInvitationService) Invite(ctx context.Context, claims model.Claims, in service.InviteInput) (*service.InviteResult, error) {
	args := m.Called(ctx, claims, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.InviteResult), args.Error(1)
}

func (m *MockInvitationService) List(ctx context.Context, claims model.Claims, status string) ([]model.Invitation, error) {
	args := m.Called(ctx, claims, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Invitation), args.Error(1)
}

func (m *MockInvitationService) Revoke(ctx context.Context, claims model.Claims, id string) (*model.Invitation, error) {
	args := m.Called(ctx, claims, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invitation), args.Error(1)
}

func (m *MockInvitationService) Accept(ctx context.Context, claims model.Claims, token string) (*model.Member, error) {
	args := m.Called(ctx, claims, token)
	return member(args)
}

func member(args mock.Arguments) (*model.Member, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Member), args.Error(1)
}
