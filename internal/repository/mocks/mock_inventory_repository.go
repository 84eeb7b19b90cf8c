package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"clubapi/internal/model"
	"clubapi/internal/repository"
)

type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockInventoryRepository) CreateCategory(ctx context.Context, c *model.Category) (*model.Category, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockInventoryRepository) UpdateCategory(ctx context.Context, c *model.Category) (*model.Category, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockInventoryRepository) DeleteCategory(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockInventoryRepository) ListContainers(ctx context.Context) ([]model.Container, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Container), args.Error(1)
}

func (m *MockInventoryRepository) CreateContainer(ctx context.Context, c *model.Container) (*model.Container, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Container), args.Error(1)
}

func (m *MockInventoryRepository) UpdateContainer(ctx context.Context, c *model.Container) (*model.Container, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Container), args.Error(1)
}

func (m *MockInventoryRepository) DeleteContainer(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockInventoryRepository) ListItems(ctx context.Context, f model.ItemFilter, pq repository.PageQuery) (*repository.PageResult[model.Item], error) {
	args := m.Called(ctx, f, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Item]), args.Error(1)
}

func (m *MockInventoryRepository) FindItem(ctx context.Context, id string) (*model.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Item), args.Error(1)
}

func (m *MockInventoryRepository) FindItemForUpdate(ctx context.Context, id string) (*model.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Item), args.Error(1)
}

func (m *MockInventoryRepository) CreateItem(ctx context.Context, it *model.Item) (*model.Item, error) {
	args := m.Called(ctx, it)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Item), args.Error(1)
}

// UpdateItem echoes the argument back unless the expectation supplies an item.
func (m *MockInventoryRepository) UpdateItem(ctx context.Context, it *model.Item) (*model.Item, error) {
	args := m.Called(ctx, it)
	if args.Get(0) == nil {
		if err := args.Error(1); err != nil {
			return nil, err
		}
		return it, nil
	}
	return args.Get(0).(*model.Item), args.Error(1)
}

func (m *MockInventoryRepository) DeleteItem(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockInventoryRepository) CreateAdjustment(ctx context.Context, a *model.Adjustment) (*model.Adjustment, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		if err := args.Error(1); err != nil {
			return nil, err
		}
		return a, nil
	}
	return args.Get(0).(*model.Adjustment), args.Error(1)
}

func (m *MockInventoryRepository) ListAdjustments(ctx context.Context, itemID string) ([]model.Adjustment, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Adjustment), args.Error(1)
}
