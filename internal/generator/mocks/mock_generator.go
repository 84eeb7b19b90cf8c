package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"clubapi/internal/generator"
	"clubapi/internal/model"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Draft(ctx context.Context, p generator.Prompt) (model.WorkshopDraft, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(model.WorkshopDraft), args.Error(1)
}
