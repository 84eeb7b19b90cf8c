package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"clubapi/internal/notify"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Enqueue(ctx context.Context, job notify.Job) error {
	return m.Called(ctx, job).Error(0)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg notify.Message) error {
	return m.Called(ctx, msg).Error(0)
}
