package mocks

import (
	"context"
	"io"

	"clubapi/internal/model"
	"clubapi/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockInventoryService struct {
	mock.Mock
}

func (m *MockInventoryService) ListCategories(ctx context.Context, claims model.Claims) ([]model.Category, error) {
	args := m.Called(ctx, claims)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockInventoryService) CreateCategory(ctx context.Context, claims model.Claims, in service.CategoryInput) (*model.Category, error) {
	args := m.Called(ctx, claims, in)
	return category(args)
}

func (m *MockInventoryService) UpdateCategory(ctx context.Context, claims model.Claims, id string, in service.CategoryInput) (*model.Category, error) {
	args := m.Called(ctx, claims, id, in)
	return category(args)
}

func (m *MockInventoryService) DeleteCategory(ctx context.Context, claims model.Claims, id string) error {
	args := m.Called(ctx, claims, id)
	return args.Error(0)
}

func (m *MockInventoryService) ListContainers(ctx context.Context, claims model.Claims) ([]model.Container, error) {
	args := m.Called(ctx, claims)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Container), args.Error(1)
}

func (m *MockInventoryService) CreateContainer(ctx context.Context, claims model.Claims, in service.ContainerInput) (*model.Container, error) {
	args := m.Called(ctx, claims, in)
	return container(args)
}

func (m *MockInventoryService) UpdateContainer(ctx context.Context, claims model.Claims, id string, in service.ContainerInput) (*model.Container, error) {
	args := m.Called(ctx, claims, id, in)
	return container(args)
}

func (m *MockInventoryService) DeleteContainer(ctx context.Context, claims model.Claims, id string) error {
	args := m.Called(ctx, claims, id)
	return args.Error(0)
}

func (m *MockInventoryService) ListItems(ctx context.Context, claims model.Claims, f model.ItemFilter, limit, offset int) (*service.ListResult[model.Item], error) {
	args := m.Called(ctx, claims, f, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.Item]), args.Error(1)
}

func (m *MockInventoryService) GetItem(ctx context.Context, claims model.Claims, id string) (*model.Item, error) {
	args := m.Called(ctx, claims, id)
	return item(args)
}

func (m *MockInventoryService) CreateItem(ctx context.Context, claims model.Claims, in service.ItemInput) (*model.Item, error) {
	args := m.Called(ctx, claims, in)
	return item(args)
}

func (m *MockInventoryService) UpdateItem(ctx context.Context, claims model.Claims, id string, patch model.ItemPatch) (*model.Item, error) {
	args := m.Called(ctx, claims, id, patch)
	return item(args)
}

func (m *MockInventoryService) DeleteItem(ctx context.Context, claims model.Claims, id string) error {
	args := m.Called(ctx, claims, id)
	return args.Error(0)
}

func (m *MockInventoryService) Adjust(ctx context.Context, claims model.Claims, itemID string, in service.AdjustInput) (*service.AdjustResult, error) {
	args := m.Called(ctx, claims, itemID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AdjustResult), args.Error(1)
}

func (m *MockInventoryService) ListAdjustments(ctx context.Context, claims model.Claims, itemID string) ([]model.Adjustment, error) {
	args := m.Called(ctx, claims, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Adjustment), args.Error(1)
}

func (m *MockInventoryService) UploadPhoto(ctx context.Context, claims model.Claims, itemID string, r io.Reader, filename, contentType string, size int64) (*model.Item, error) {
	args := m.Called(ctx, claims, itemID, r, filename, contentType, size)
	return item(args)
}

func (m *MockInventoryService) PhotoURL(ctx context.Context, claims model.Claims, itemID string) (string, error) {
	args := m.Called(ctx, claims, itemID)
	return args.String(0), args.Error(1)
}

func category(args mock.Arguments) (*model.Category, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func container(args mock.Arguments) (*model.Container, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Container), args.Error(1)
}

func item(args mock.Arguments) (*model.Item, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Item), args.Error(1)
}
