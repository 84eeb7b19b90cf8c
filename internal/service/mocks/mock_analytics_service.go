package mocks

import (
	"context"

	"clubapi/internal/analytics"
	"clubapi/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) Overview(ctx context.Context, claims model.Claims) (*analytics.Overview, error) {
	args := m.Called(ctx, claims)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.Overview), args.Error(1)
}

func (m *MockAnalyticsService) Workshop(ctx context.Context, claims model.Claims, workshopID string) (*analytics.WorkshopStats, error) {
	args := m.Called(ctx, claims, workshopID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.WorkshopStats), args.Error(1)
}
