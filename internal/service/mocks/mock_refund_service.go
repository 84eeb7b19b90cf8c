package mocks

import (
	"context"

	"clubapi/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockRefundService struct {
	mock.Mock
}

func (m *MockRefundService) Request(ctx context.Context, claims model.Claims, registrationID, reason string) (*model.Refund, error) {
	args := m.Called(ctx, claims, registrationID, reason)
	return refund(args)
}

func (m *MockRefundService) List(ctx context.Context, claims model.Claims, status string) ([]model.Refund, error) {
	args := m.Called(ctx, claims, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Refund), args.Error(1)
}

func (m *MockRefundService) Approve(ctx context.Context, claims model.Claims, refundID, note string) (*model.Refund, error) {
	args := m.Called(ctx, claims, refundID, note)
	return refund(args)
}

func (m *MockRefundService) Reject(ctx context.Context, claims model.Claims, refundID, note string) (*model.Refund, error) {
	args := m.Called(ctx, claims, refundID, note)
	return refund(args)
}

func refund(args mock.Arguments) (*model.Refund, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Refund), args.Error(1)
}
