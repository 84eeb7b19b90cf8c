package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"clubapi/internal/auth"
	"clubapi/internal/model"
)

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, rawToken string) (auth.Identity, error) {
	args := m.Called(ctx, rawToken)
	return args.Get(0).(auth.Identity), args.Error(1)
}

type MockRoleResolver struct {
	mock.Mock
}

func (m *MockRoleResolver) Resolve(ctx context.Context, identity auth.Identity) (model.Role, error) {
	args := m.Called(ctx, identity)
	return args.Get(0).(model.Role), args.Error(1)
}
