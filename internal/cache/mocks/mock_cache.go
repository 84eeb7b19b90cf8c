package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"clubapi/internal/cache"
	"clubapi/internal/model"
)

type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (*cache.Lock, error) {
	args := m.Called(ctx, key, ttl)
	if l := args.Get(0); l != nil {
		return l.(*cache.Lock), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockRoleCache struct {
	mock.Mock
}

func (m *MockRoleCache) Get(ctx context.Context, userID string) (model.Role, bool, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.Role), args.Bool(1), args.Error(2)
}

func (m *MockRoleCache) Set(ctx context.Context, userID string, role model.Role) error {
	return m.Called(ctx, userID, role).Error(0)
}

func (m *MockRoleCache) Delete(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}
