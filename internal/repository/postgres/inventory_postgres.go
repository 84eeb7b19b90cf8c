package postgres

import (
	"context"
	"database/sql"

	"clubapi/internal/model"
	"clubapi/internal/repository"
)

const itemColumns = `id, name, description, category_id, container_id, quantity, min_quantity, photo_key,
	created_at, updated_at`

// InventoryPostgres is a PostgreSQL implementation of repository.InventoryRepository.
type InventoryPostgres struct {
	db DBTX
}

func NewInventoryPostgres(db DBTX) *InventoryPostgres {
	return &InventoryPostgres{db: db}
}

var _ repository.InventoryRepository = (*InventoryPostgres)(nil)

func (r *InventoryPostgres) ListCategories(ctx context.Context) ([]model.Category, error) {
	const q = `SELECT id, name, description FROM inventory_categories ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	out := make([]model.Category, 0)
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, mapError(err)
		}
		out = append(out, c)
	}
	return out, mapError(rows.Err())
}

func (r *InventoryPostgres) CreateCategory(ctx context.Context, c *model.Category) (*model.Category, error) {
	const q = `
		INSERT INTO inventory_categories (id, name, description)
		VALUES ($1, $2, $3)
		RETURNING id, name, description`
	var out model.Category
	if err := r.db.QueryRowContext(ctx, q, c.ID, c.Name, c.Description).Scan(&out.ID, &out.Name, &out.Description); err != nil {
		return nil, mapError(err)
	}
	return &out, nil
}

func (r *InventoryPostgres) UpdateCategory(ctx context.Context, c *model.Category) (*model.Category, error) {
	const q = `
		UPDATE inventory_categories SET name = $2, description = $3
		WHERE id = $1
		RETURNING id, name, description`
	var out model.Category
	if err := r.db.QueryRowContext(ctx, q, c.ID, c.Name, c.Description).Scan(&out.ID, &out.Name, &out.Description); err != nil {
		return nil, mapError(err)
	}
	return &out, nil
}

func (r *InventoryPostgres) DeleteCategory(ctx context.Context, id string) error {
	const q = `DELETE FROM inventory_categories WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return mapDeleteError(err)
	}
	return expectOne(res, nil)
}

func (r *InventoryPostgres) ListContainers(ctx context.Context) ([]model.Container, error) {
	const q = `SELECT id, name, location, description FROM inventory_containers ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	out := make([]model.Container, 0)
	for rows.Next() {
		var c model.Container
		if err := rows.Scan(&c.ID, &c.Name, &c.Location, &c.Description); err != nil {
			return nil, mapError(err)
		}
		out = append(out, c)
	}
	return out, mapError(rows.Err())
}

func (r *InventoryPostgres) CreateContainer(ctx context.Context, c *model.Container) (*model.Container, error) {
	const q = `
		INSERT INTO inventory_containers (id, name, location, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, location, description`
	var out model.Container
	if err := r.db.QueryRowContext(ctx, q, c.ID, c.Name, c.Location, c.Description).
		Scan(&out.ID, &out.Name, &out.Location, &out.Description); err != nil {
		return nil, mapError(err)
	}
	return &out, nil
}

func (r *InventoryPostgres) UpdateContainer(ctx context.Context, c *model.Container) (*model.Container, error) {
	const q = `
		UPDATE inventory_containers SET name = $2, location = $3, description = $4
		WHERE id = $1
		RETURNING id, name, location, description`
	var out model.Container
	if err := r.db.QueryRowContext(ctx, q, c.ID, c.Name, c.Location, c.Description).
		Scan(&out.ID, &out.Name, &out.Location, &out.Description); err != nil {
		return nil, mapError(err)
	}
	return &out, nil
}

func (r *InventoryPostgres) DeleteContainer(ctx context.Context, id string) error {
	const q = `DELETE FROM inventory_containers WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return mapDeleteError(err)
	}
	return expectOne(res, nil)
}

func scanItem(s scanner) (*model.Item, error) {
	var it model.Item
	var categoryID, containerID, photoKey sql.NullString
	if err := s.Scan(
		&it.ID,
		&it.Name,
		&it.Description,
		&categoryID,
		&containerID,
		&it.Quantity,
		&it.MinQuantity,
		&photoKey,
		&it.CreatedAt,
		&it.UpdatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	it.CategoryID = stringPtr(categoryID)
	it.ContainerID = stringPtr(containerID)
	it.PhotoKey = photoKey.String
	return &it, nil
}

// itemFilterClause binds $1..$4 to the ItemFilter fields.
const itemFilterClause = `
	WHERE ($1 = '' OR category_id::text = $1)
	  AND ($2 = '' OR container_id::text = $2)
	  AND ($3 = '' OR name ILIKE '%' || $3 || '%' OR description ILIKE '%' || $3 || '%')
	  AND (NOT $4 OR (min_quantity > 0 AND quantity <= min_quantity))`

func (r *InventoryPostgres) ListItems(ctx context.Context, f model.ItemFilter, pq repository.PageQuery) (*repository.PageResult[model.Item], error) {
	args := []any{f.CategoryID, f.ContainerID, f.Query, f.LowStock}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM inventory_items`+itemFilterClause, args...).Scan(&total); err != nil {
		return nil, mapError(err)
	}

	q := `SELECT ` + itemColumns + ` FROM inventory_items` + itemFilterClause + `
		ORDER BY name, id
		LIMIT $5 OFFSET $6`
	rows, err := r.db.QueryContext(ctx, q, append(args, pq.Limit, pq.Offset)...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	items := make([]model.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return &repository.PageResult[model.Item]{Items: items, Total: total}, nil
}

func (r *InventoryPostgres) FindItem(ctx context.Context, id string) (*model.Item, error) {
	q := `SELECT ` + itemColumns + ` FROM inventory_items WHERE id = $1`
	return scanItem(r.db.QueryRowContext(ctx, q, id))
}

func (r *InventoryPostgres) FindItemForUpdate(ctx context.Context, id string) (*model.Item, error) {
	q := `SELECT ` + itemColumns + ` FROM inventory_items WHERE id = $1 FOR UPDATE`
	return scanItem(r.db.QueryRowContext(ctx, q, id))
}

func (r *InventoryPostgres) CreateItem(ctx context.Context, it *model.Item) (*model.Item, error) {
	q := `
		INSERT INTO inventory_items (id, name, description, category_id, container_id, quantity, min_quantity,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING ` + itemColumns
	row := r.db.QueryRowContext(ctx, q,
		it.ID,
		it.Name,
		it.Description,
		it.CategoryID,
		it.ContainerID,
		it.Quantity,
		it.MinQuantity,
		it.CreatedAt,
	)
	return scanItem(row)
}

func (r *InventoryPostgres) UpdateItem(ctx context.Context, it *model.Item) (*model.Item, error) {
	q := `
		UPDATE inventory_items
		SET name = $2, description = $3, category_id = $4, container_id = $5, quantity = $6,
			min_quantity = $7, photo_key = $8, updated_at = $9
		WHERE id = $1
		RETURNING ` + itemColumns
	row := r.db.QueryRowContext(ctx, q,
		it.ID,
		it.Name,
		it.Description,
		it.CategoryID,
		it.ContainerID,
		it.Quantity,
		it.MinQuantity,
		nullString(it.PhotoKey),
		it.UpdatedAt,
	)
	return scanItem(row)
}

func (r *InventoryPostgres) DeleteItem(ctx context.Context, id string) error {
	const q = `DELETE FROM inventory_items WHERE id = $1`
	return expectOne(r.db.ExecContext(ctx, q, id))
}

func (r *InventoryPostgres) CreateAdjustment(ctx context.Context, a *model.Adjustment) (*model.Adjustment, error) {
	const q = `
		INSERT INTO inventory_adjustments (id, item_id, delta, note, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, item_id, delta, note, user_id, created_at`
	var out model.Adjustment
	if err := r.db.QueryRowContext(ctx, q, a.ID, a.ItemID, a.Delta, a.Note, a.UserID, a.CreatedAt).
		Scan(&out.ID, &out.ItemID, &out.Delta, &out.Note, &out.UserID, &out.CreatedAt); err != nil {
		return nil, mapError(err)
	}
	return &out, nil
}

func (r *InventoryPostgres) ListAdjustments(ctx context.Context, itemID string) ([]model.Adjustment, error) {
	const q = `
		SELECT id, item_id, delta, note, user_id, created_at
		FROM inventory_adjustments
		WHERE item_id = $1
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, itemID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	out := make([]model.Adjustment, 0)
	for rows.Next() {
		var a model.Adjustment
		if err := rows.Scan(&a.ID, &a.ItemID, &a.Delta, &a.Note, &a.UserID, &a.CreatedAt); err != nil {
			return nil, mapError(err)
		}
		out = append(out, a)
	}
	return out, mapError(rows.Err())
}
