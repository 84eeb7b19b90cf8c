package repository

import (
	"context"

	"clubapi/internal/model"
)

type InventoryRepository interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, c *model.Category) (*model.Category, error)
	UpdateCategory(ctx context.Context, c *model.Category) (*model.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	ListContainers(ctx context.Context) ([]model.Container, error)
	CreateContainer(ctx context.Context, c *model.Container) (*model.Container, error)
	UpdateContainer(ctx context.Context, c *model.Container) (*model.Container, error)
	DeleteContainer(ctx context.Context, id string) error

	ListItems(ctx context.Context, f model.ItemFilter, pq PageQuery) (*PageResult[model.Item], error)
	FindItem(ctx context.Context, id string) (*model.Item, error)
	FindItemForUpdate(ctx context.Context, id string) (*model.Item, error)
	CreateItem(ctx context.Context, it *model.Item) (*model.Item, error)
	// UpdateItem writes every mutable column of it, quantity and photo key included.
	UpdateItem(ctx context.Context, it *model.Item) (*model.Item, error)
	DeleteItem(ctx context.Context, id string) error

	CreateAdjustment(ctx context.Context, a *model.Adjustment) (*model.Adjustment, error)
	ListAdjustments(ctx context.Context, itemID string) ([]model.Adjustment, error)
}
