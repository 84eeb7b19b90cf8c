package mocks

import (
	"context"

	"clubapi/internal/model"
	"clubapi/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockRegistrationService struct {
	mock.Mock
}

func (m *MockRegistrationService) Register(ctx context.Context, claims model.Claims, workshopID string) (*service.RegisterResult, error) {
	args := m.Called(ctx, claims, workshopID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RegisterResult), args.Error(1)
}

func (m *MockRegistrationService) CancelOwn(ctx context.Context, claims model.Claims, workshopID string) (*service.CancelRegistrationResult, error) {
	args := m.Called(ctx, claims, workshopID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CancelRegistrationResult), args.Error(1)
}

func (m *MockRegistrationService) ListForWorkshop(ctx context.Context, claims model.Claims, workshopID string) ([]model.Registration, error) {
	args := m.Called(ctx, claims, workshopID)
	return registrations(args)
}

func (m *MockRegistrationService) ListMine(ctx context.Context, claims model.Claims) ([]model.Registration, error) {
	args := m.Called(ctx, claims)
	return registrations(args)
}

func (m *MockRegistrationService) MarkAttendance(ctx context.Context, claims model.Claims, workshopID, registrationID, attendance string) (*model.Registration, error) {
	args := m.Called(ctx, claims, workshopID, registrationID, attendance)
	return registration(args)
}

func (m *MockRegistrationService) CheckInCode(ctx context.Context, claims model.Claims, registrationID string) ([]byte, error) {
	args := m.Called(ctx, claims, registrationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockRegistrationService) CheckIn(ctx context.Context, claims model.Claims, workshopID, token string) (*model.Registration, error) {
	args := m.Called(ctx, claims, workshopID, token)
	return registration(args)
}

func (m *MockRegistrationService) HandlePaymentWebhook(ctx context.Context, payload []byte, signature string) error {
	args := m.Called(ctx, payload, signature)
	return args.Error(0)
}

func registration(args mock.Arguments) (*model.Registration, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Registration), args.Error(1)
}

func registrations(args mock.Arguments) ([]model.Registration, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Registration), args.Error(1)
}
