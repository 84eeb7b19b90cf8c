package postgres

import (
	"context"
	"database/sql"

	"clubapi/internal/model"
	"clubapi/internal/repository"
)

const refundColumns = `id, registration_id, user_id, amount_cents, currency, reason, status,
	provider_refund_id, decided_by, decision_note, created_at, decided_at`

// RefundPostgres is a PostgreSQL implementation of repository.RefundRepository.
type RefundPostgres struct {
	db DBTX
}

func NewRefundPostgres(db DBTX) *RefundPostgres {
	return &RefundPostgres{db: db}
}

var _ repository.RefundRepository = (*RefundPostgres)(nil)

func scanRefund(s scanner) (*model.Refund, error) {
	var rf model.Refund
	var providerID, decidedBy, note sql.NullString
	var decidedAt sql.NullTime
	if err := s.Scan(
		&rf.ID,
		&rf.RegistrationID,
		&rf.UserID,
		&rf.AmountCents,
		&rf.Currency,
		&rf.Reason,
		&rf.Status,
		&providerID,
		&decidedBy,
		&note,
		&rf.CreatedAt,
		&decidedAt,
	); err != nil {
		return nil, mapError(err)
	}
	rf.ProviderRefundID = providerID.String
	rf.DecidedBy = decidedBy.String
	rf.DecisionNote = note.String
	rf.DecidedAt = timePtr(decidedAt)
	return &rf, nil
}

func (r *RefundPostgres) Create(ctx context.Context, rf *model.Refund) (*model.Refund, error) {
	q := `
		INSERT INTO refunds (id, registration_id, user_id, amount_cents, currency, reason, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + refundColumns
	row := r.db.QueryRowContext(ctx, q,
		rf.ID,
		rf.RegistrationID,
		rf.UserID,
		rf.AmountCents,
		rf.Currency,
		rf.Reason,
		string(rf.Status),
		rf.CreatedAt,
	)
	return scanRefund(row)
}

func (r *RefundPostgres) FindByID(ctx context.Context, id string) (*model.Refund, error) {
	q := `SELECT ` + refundColumns + ` FROM refunds WHERE id = $1`
	return scanRefund(r.db.QueryRowContext(ctx, q, id))
}

func (r *RefundPostgres) FindByIDForUpdate(ctx context.Context, id string) (*model.Refund, error) {
	q := `SELECT ` + refundColumns + ` FROM refunds WHERE id = $1 FOR UPDATE`
	return scanRefund(r.db.QueryRowContext(ctx, q, id))
}

func (r *RefundPostgres) FindOpenByRegistration(ctx context.Context, registrationID string) (*model.Refund, error) {
	q := `SELECT ` + refundColumns + ` FROM refunds WHERE registration_id = $1 AND status = 'requested'`
	return scanRefund(r.db.QueryRowContext(ctx, q, registrationID))
}

func (r *RefundPostgres) List(ctx context.Context, status model.RefundStatus) ([]model.Refund, error) {
	q := `SELECT ` + refundColumns + `
		FROM refunds
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, string(status))
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	out := make([]model.Refund, 0)
	for rows.Next() {
		rf, err := scanRefund(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rf)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (r *RefundPostgres) Decide(ctx context.Context, rf *model.Refund) error {
	const q = `
		UPDATE refunds
		SET status = $2, provider_refund_id = $3, decided_by = $4, decision_note = $5, decided_at = $6
		WHERE id = $1`
	return expectOne(r.db.ExecContext(ctx, q,
		rf.ID,
		string(rf.Status),
		nullString(rf.ProviderRefundID),
		nullString(rf.DecidedBy),
		nullString(rf.DecisionNote),
		rf.DecidedAt,
	))
}
