package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"clubapi/internal/events"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, e events.Event) error {
	return m.Called(ctx, e).Error(0)
}
