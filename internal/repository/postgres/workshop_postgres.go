package postgres

import (
	"context"
	"database/sql"

	"clubapi/internal/model"
	"clubapi/internal/repository"
)

const workshopColumns = `id, title, description, location, starts_at, ends_at, capacity, price_cents, currency,
	status, cancel_reason, created_by, created_at, updated_at, published_at, finished_at, cancelled_at`

// WorkshopPostgres is a PostgreSQL implementation of repository.WorkshopRepository.
type WorkshopPostgres struct {
	db DBTX
}

func NewWorkshopPostgres(db DBTX) *WorkshopPostgres {
	return &WorkshopPostgres{db: db}
}

var _ repository.WorkshopRepository = (*WorkshopPostgres)(nil)

func scanWorkshop(s scanner) (*model.Workshop, error) {
	var w model.Workshop
	var cancelReason sql.NullString
	var publishedAt, finishedAt, cancelledAt sql.NullTime
	if err := s.Scan(
		&w.ID,
		&w.Title,
		&w.Description,
		&w.Location,
		&w.StartsAt,
		&w.EndsAt,
		&w.Capacity,
		&w.PriceCents,
		&w.Currency,
		&w.Status,
		&cancelReason,
		&w.CreatedBy,
		&w.CreatedAt,
		&w.UpdatedAt,
		&publishedAt,
		&finishedAt,
		&cancelledAt,
	); err != nil {
		return nil, mapError(err)
	}
	w.CancelReason = cancelReason.String
	w.PublishedAt = timePtr(publishedAt)
	w.FinishedAt = timePtr(finishedAt)
	w.CancelledAt = timePtr(cancelledAt)
	return &w, nil
}

func (r *WorkshopPostgres) Create(ctx context.Context, w *model.Workshop) (*model.Workshop, error) {
	q := `
		INSERT INTO workshops (id, title, description, location, starts_at, ends_at, capacity, price_cents,
			currency, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
		RETURNING ` + workshopColumns
	row := r.db.QueryRowContext(ctx, q,
		w.ID,
		w.Title,
		w.Description,
		w.Location,
		w.StartsAt,
		w.EndsAt,
		w.Capacity,
		w.PriceCents,
		w.Currency,
		string(w.Status),
		w.CreatedBy,
		w.CreatedAt,
	)
	return scanWorkshop(row)
}

func (r *WorkshopPostgres) FindByID(ctx context.Context, id string) (*model.Workshop, error) {
	q := `SELECT ` + workshopColumns + ` FROM workshops WHERE id = $1`
	return scanWorkshop(r.db.QueryRowContext(ctx, q, id))
}

func (r *WorkshopPostgres) FindByIDForUpdate(ctx context.Context, id string) (*model.Workshop, error) {
	q := `SELECT ` + workshopColumns + ` FROM workshops WHERE id = $1 FOR UPDATE`
	return scanWorkshop(r.db.QueryRowContext(ctx, q, id))
}

func (r *WorkshopPostgres) List(ctx context.Context, status model.WorkshopStatus, pq repository.PageQuery) (*repository.PageResult[model.Workshop], error) {
	const qCount = `SELECT COUNT(*) FROM workshops WHERE ($1 = '' OR status = $1)`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, string(status)).Scan(&total); err != nil {
		return nil, mapError(err)
	}

	q := `SELECT ` + workshopColumns + `
		FROM workshops
		WHERE ($1 = '' OR status = $1)
		ORDER BY starts_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, q, string(status), pq.Limit, pq.Offset)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	items := make([]model.Workshop, 0)
	for rows.Next() {
		w, err := scanWorkshop(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return &repository.PageResult[model.Workshop]{Items: items, Total: total}, nil
}

func (r *WorkshopPostgres) Update(ctx context.Context, w *model.Workshop) (*model.Workshop, error) {
	q := `
		UPDATE workshops
		SET title = $2, description = $3, location = $4, starts_at = $5, ends_at = $6, capacity = $7,
			price_cents = $8, status = $9, cancel_reason = $10, published_at = $11, finished_at = $12,
			cancelled_at = $13, updated_at = $14
		WHERE id = $1
		RETURNING ` + workshopColumns
	row := r.db.QueryRowContext(ctx, q,
		w.ID,
		w.Title,
		w.Description,
		w.Location,
		w.StartsAt,
		w.EndsAt,
		w.Capacity,
		w.PriceCents,
		string(w.Status),
		nullString(w.CancelReason),
		w.PublishedAt,
		w.FinishedAt,
		w.CancelledAt,
		w.UpdatedAt,
	)
	return scanWorkshop(row)
}

func (r *WorkshopPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM workshops WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return mapDeleteError(err)
	}
	return expectOne(res, nil)
}
