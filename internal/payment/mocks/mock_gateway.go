package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"clubapi/internal/payment"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreatePaymentIntent(ctx context.Context, req payment.IntentRequest) (payment.Intent, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(payment.Intent), args.Error(1)
}

func (m *MockGateway) CancelPaymentIntent(ctx context.Context, intentID string) error {
	return m.Called(ctx, intentID).Error(0)
}

func (m *MockGateway) Refund(ctx context.Context, req payment.RefundRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) ParseWebhook(payload []byte, signature string) (payment.WebhookEvent, error) {
	args := m.Called(payload, signature)
	return args.Get(0).(payment.WebhookEvent), args.Error(1)
}
