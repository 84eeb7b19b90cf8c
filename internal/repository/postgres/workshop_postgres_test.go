package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubapi/internal/model"
	"clubapi/internal/repository"
)

func workshopRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "title", "description", "location", "starts_at", "ends_at", "capacity", "price_cents", "currency",
		"status", "cancel_reason", "created_by", "created_at", "updated_at", "published_at", "finished_at", "cancelled_at",
	})
}

func workshopRow(id, status string, now time.Time) []driver.Value {
	return []driver.Value{
		id, "Knots 101", "Learn knots", "Boathouse", now.Add(48 * time.Hour), now.Add(50 * time.Hour), 12, int64(1500), "eur",
		status, nil, "staff-1", now, now, nil, nil, nil,
	}
}

func TestWorkshopPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewWorkshopPostgres(db)
	now := time.Now().UTC()
	w := &model.Workshop{
		ID:         "w1",
		Title:      "Knots 101",
		Location:   "Boathouse",
		StartsAt:   now.Add(48 * time.Hour),
		EndsAt:     now.Add(50 * time.Hour),
		Capacity:   12,
		PriceCents: 1500,
		Currency:   "eur",
		Status:     model.WorkshopPlanned,
		CreatedBy:  "staff-1",
		CreatedAt:  now,
	}

	mock.ExpectQuery("INSERT INTO workshops").
		WithArgs("w1", "Knots 101", "", "Boathouse", sqlmock.AnyArg(), sqlmock.AnyArg(), 12, int64(1500), "eur", "planned", "staff-1", now).
		WillReturnRows(workshopRows().AddRow(workshopRow("w1", "planned", now)...))

	got, err := repo.Create(context.Background(), w)

	require.NoError(t, err)
	assert.Equal(t, model.WorkshopPlanned, got.Status)
	assert.Nil(t, got.PublishedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkshopPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewWorkshopPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		row := workshopRow("w1", "cancelled", now)
		row[10] = "rain"
		row[16] = now
		mock.ExpectQuery("SELECT (.+) FROM workshops WHERE id = \\$1$").
			WithArgs("w1").
			WillReturnRows(workshopRows().AddRow(row...))

		w, err := repo.FindByID(ctx, "w1")

		require.NoError(t, err)
		assert.Equal(t, "rain", w.CancelReason)
		require.NotNil(t, w.CancelledAt)
		assert.True(t, w.CancelledAt.Equal(now))
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM workshops WHERE id = \\$1").
			WithArgs("missing").
			WillReturnRows(workshopRows())

		w, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, w)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkshopPostgres_FindByIDForUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM workshops WHERE id = \\$1 FOR UPDATE").
		WithArgs("w1").
		WillReturnRows(workshopRows().AddRow(workshopRow("w1", "published", now)...))

	w, err := NewWorkshopPostgres(db).FindByIDForUpdate(context.Background(), "w1")

	require.NoError(t, err)
	assert.Equal(t, model.WorkshopPublished, w.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkshopPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewWorkshopPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM workshops").
			WithArgs("published").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectQuery("SELECT (.+) FROM workshops (.+) LIMIT \\$2 OFFSET \\$3").
			WithArgs("published", 10, 0).
			WillReturnRows(workshopRows().
				AddRow(workshopRow("w1", "published", now)...).
				AddRow(workshopRow("w2", "published", now)...))

		res, err := repo.List(ctx, model.WorkshopPublished, repository.PageQuery{Limit: 10, Offset: 0})

		require.NoError(t, err)
		assert.Equal(t, 2, res.Total)
		assert.Len(t, res.Items, 2)
	})

	t.Run("count error", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM workshops").
			WithArgs("").
			WillReturnError(errors.New("count failed"))

		res, err := repo.List(ctx, "", repository.PageQuery{Limit: 10})

		assert.EqualError(t, err, "count failed")
		assert.Nil(t, res)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkshopPostgres_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	w := &model.Workshop{ID: "w1", Title: "Knots 101", Status: model.WorkshopPublished, PublishedAt: &now, UpdatedAt: now}

	mock.ExpectQuery("UPDATE workshops").
		WithArgs("w1", "Knots 101", "", "", sqlmock.AnyArg(), sqlmock.AnyArg(), 0, int64(0), "published",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), now).
		WillReturnRows(workshopRows().AddRow(workshopRow("w1", "published", now)...))

	got, err := NewWorkshopPostgres(db).Update(context.Background(), w)

	require.NoError(t, err)
	assert.Equal(t, "w1", got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkshopPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewWorkshopPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM workshops WHERE id = \\$1").WithArgs("w1").WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Delete(ctx, "w1"))

	mock.ExpectExec("DELETE FROM workshops WHERE id = \\$1").WithArgs("hidden").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(ctx, "hidden"), repository.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
