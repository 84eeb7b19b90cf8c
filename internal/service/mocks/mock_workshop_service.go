package mocks

import (
	"context"

	"clubapi/internal/model"
	"clubapi/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockWorkshopService struct {
	mock.Mock
}

func (m *MockWorkshopService) List(ctx context.Context, claims model.Claims, status string, limit, offset int) (*service.ListResult[model.Workshop], error) {
	args := m.Called(ctx, claims, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.Workshop]), args.Error(1)
}

func (m *MockWorkshopService) Get(ctx context.Context, claims model.Claims, id string) (*model.Workshop, error) {
	args := m.Called(ctx, claims, id)
	return workshop(args)
}

func (m *MockWorkshopService) Create(ctx context.Context, claims model.Claims, in service.CreateWorkshopInput) (*model.Workshop, error) {
	args := m.Called(ctx, claims, in)
	return workshop(args)
}

func (m *MockWorkshopService) Update(ctx context.Context, claims model.Claims, id string, patch model.WorkshopPatch) (*model.Workshop, error) {
	args := m.Called(ctx, claims, id, patch)
	return workshop(args)
}

func (m *MockWorkshopService) Delete(ctx context.Context, claims model.Claims, id string) error {
	args := m.Called(ctx, claims, id)
	return args.Error(0)
}

func (m *MockWorkshopService) Publish(ctx context.Context, claims model.Claims, id string) (*model.Workshop, error) {
	args := m.Called(ctx, claims, id)
	return workshop(args)
}

func (m *MockWorkshopService) Cancel(ctx context.Context, claims model.Claims, id, reason string) (*service.CancelResult, error) {
	args := m.Called(ctx, claims, id, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CancelResult), args.Error(1)
}

func (m *MockWorkshopService) Finish(ctx context.Context, claims model.Claims, id string) (*service.FinishResult, error) {
	args := m.Called(ctx, claims, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FinishResult), args.Error(1)
}

func (m *MockWorkshopService) AddInterest(ctx context.Context, claims model.Claims, id string) (*model.InterestSummary, error) {
	args := m.Called(ctx, claims, id)
	return interest(args)
}

func (m *MockWorkshopService) RemoveInterest(ctx context.Context, claims model.Claims, id string) (*model.InterestSummary, error) {
	args := m.Called(ctx, claims, id)
	return interest(args)
}

func (m *MockWorkshopService) Interest(ctx context.Context, claims model.Claims, id string) (*model.InterestSummary, error) {
	args := m.Called(ctx, claims, id)
	return interest(args)
}

func (m *MockWorkshopService) Generate(ctx context.Context, claims model.Claims, in service.GenerateWorkshopInput) (model.WorkshopDraft, error) {
	args := m.Called(ctx, claims, in)
	return args.Get(0).(model.WorkshopDraft), args.Error(1)
}

func workshop(args mock.Arguments) (*model.Workshop, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workshop), args.Error(1)
}

func interest(args mock.Arguments) (*model.InterestSummary, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.InterestSummary), args.Error(1)
}
