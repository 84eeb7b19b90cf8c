package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubapi/internal/model"
	"clubapi/internal/repository"
)

func refundRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "registration_id", "user_id", "amount_cents", "currency", "reason", "status",
		"provider_refund_id", "decided_by", "decision_note", "created_at", "decided_at",
	})
}

func TestRefundPostgres_FindOpenByRegistration(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRefundPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM refunds WHERE registration_id = \\$1 AND status = 'requested'").
		WithArgs("r1").
		WillReturnRows(refundRows().AddRow("rf1", "r1", "u1", int64(1500), "eur", "sick", "requested", nil, nil, nil, now, nil))

	rf, err := repo.FindOpenByRegistration(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, model.RefundRequested, rf.Status)
	assert.Nil(t, rf.DecidedAt)

	mock.ExpectQuery("SELECT (.+) FROM refunds WHERE registration_id").
		WithArgs("r2").
		WillReturnRows(refundRows())

	_, err = repo.FindOpenByRegistration(ctx, "r2")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefundPostgres_Decide(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	rf := &model.Refund{
		ID: "rf1", Status: model.RefundProcessed, ProviderRefundID: "re_1",
		DecidedBy: "admin-1", DecidedAt: &now,
	}

	mock.ExpectExec("UPDATE refunds").
		WithArgs("rf1", "processed", "re_1", "admin-1", nil, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, NewRefundPostgres(db).Decide(context.Background(), rf))
	assert.NoError(t, mock.ExpectationsWereMet())
}
