package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"clubapi/internal/model"
)

type MockRefundRepository struct {
	mock.Mock
}

func (m *MockRefundRepository) refund(args mock.Arguments) (*model.Refund, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Refund), args.Error(1)
}

func (m *MockRefundRepository) Create(ctx context.Context, r *model.Refund) (*model.Refund, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil && args.Error(1) == nil {
		return r, nil
	}
	return m.refund(args)
}

func (m *MockRefundRepository) FindByID(ctx context.Context, id string) (*model.Refund, error) {
	return m.refund(m.Called(ctx, id))
}

func (m *MockRefundRepository) FindByIDForUpdate(ctx context.Context, id string) (*model.Refund, error) {
	return m.refund(m.Called(ctx, id))
}

func (m *MockRefundRepository) FindOpenByRegistration(ctx context.Context, registrationID string) (*model.Refund, error) {
	return m.refund(m.Called(ctx, registrationID))
}

func (m *MockRefundRepository) List(ctx context.Context, status model.RefundStatus) ([]model.Refund, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Refund), args.Error(1)
}

func (m *MockRefundRepository) Decide(ctx context.Context, r *model.Refund) error {
	return m.Called(ctx, r).Error(0)
}
