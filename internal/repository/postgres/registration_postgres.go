package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"clubapi/internal/model"
	"clubapi/internal/repository"
)

const registrationColumns = `id, workshop_id, user_id, email, status, attendance, amount_cents, currency,
	payment_intent_id, checked_in_at, created_at, updated_at`

// RegistrationPostgres is a PostgreSQL implementation of repository.RegistrationRepository.
type RegistrationPostgres struct {
	db DBTX
}

func NewRegistrationPostgres(db DBTX) *RegistrationPostgres {
	return &RegistrationPostgres{db: db}
}

var _ repository.RegistrationRepository = (*RegistrationPostgres)(nil)

func scanRegistration(s scanner) (*model.Registration, error) {
	var reg model.Registration
	var paymentIntent sql.NullString
	var checkedInAt sql.NullTime
	if err := s.Scan(
		&reg.ID,
		&reg.WorkshopID,
		&reg.UserID,
		&reg.Email,
		&reg.Status,
		&reg.Attendance,
		&reg.AmountCents,
		&reg.Currency,
		&paymentIntent,
		&checkedInAt,
		&reg.CreatedAt,
		&reg.UpdatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	reg.PaymentIntentID = paymentIntent.String
	reg.CheckedInAt = timePtr(checkedInAt)
	return &reg, nil
}

func (r *RegistrationPostgres) queryList(ctx context.Context, q string, args ...any) ([]model.Registration, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	out := make([]model.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *reg)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (r *RegistrationPostgres) Create(ctx context.Context, reg *model.Registration) (*model.Registration, error) {
	q := `
		INSERT INTO registrations (id, workshop_id, user_id, email, status, attendance, amount_cents, currency,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING ` + registrationColumns
	row := r.db.QueryRowContext(ctx, q,
		reg.ID,
		reg.WorkshopID,
		reg.UserID,
		reg.Email,
		string(reg.Status),
		string(reg.Attendance),
		reg.AmountCents,
		reg.Currency,
		reg.CreatedAt,
	)
	return scanRegistration(row)
}

func (r *RegistrationPostgres) FindByID(ctx context.Context, id string) (*model.Registration, error) {
	q := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`
	return scanRegistration(r.db.QueryRowContext(ctx, q, id))
}

func (r *RegistrationPostgres) FindByIDForUpdate(ctx context.Context, id string) (*model.Registration, error) {
	q := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1 FOR UPDATE`
	return scanRegistration(r.db.QueryRowContext(ctx, q, id))
}

func (r *RegistrationPostgres) FindActive(ctx context.Context, workshopID, userID string) (*model.Registration, error) {
	q := `SELECT ` + registrationColumns + `
		FROM registrations
		WHERE workshop_id = $1 AND user_id = $2 AND status = ANY($3)
		FOR UPDATE`
	return scanRegistration(r.db.QueryRowContext(ctx, q, workshopID, userID, statusArray(model.ActiveRegistrationStatuses)))
}

func (r *RegistrationPostgres) FindByPaymentIntent(ctx context.Context, paymentIntentID string) (*model.Registration, error) {
	q := `SELECT ` + registrationColumns + ` FROM registrations WHERE payment_intent_id = $1 FOR UPDATE`
	return scanRegistration(r.db.QueryRowContext(ctx, q, paymentIntentID))
}

// CountActive counts every seat of the workshop through a security definer function,
// so the result does not depend on which registrations the caller may read.
func (r *RegistrationPostgres) CountActive(ctx context.Context, workshopID string) (int, error) {
	const q = `SELECT app.active_registration_count($1)`
	var n int
	if err := r.db.QueryRowContext(ctx, q, workshopID).Scan(&n); err != nil {
		return 0, mapError(err)
	}
	return n, nil
}

// LockSeats takes a transaction scoped advisory lock. Members cannot lock the
// workshop row itself because row locks require the UPDATE policy.
func (r *RegistrationPostgres) LockSeats(ctx context.Context, workshopID string) error {
	const q = `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`
	_, err := r.db.ExecContext(ctx, q, "seats:"+workshopID)
	return mapError(err)
}

func (r *RegistrationPostgres) ListByWorkshop(ctx context.Context, workshopID string, statuses []model.RegistrationStatus) ([]model.Registration, error) {
	q := `SELECT ` + registrationColumns + `
		FROM registrations
		WHERE workshop_id = $1 AND (cardinality($2::text[]) = 0 OR status = ANY($2))
		ORDER BY created_at, id`
	return r.queryList(ctx, q, workshopID, statusArray(statuses))
}

func (r *RegistrationPostgres) ListByUser(ctx context.Context, userID string) ([]model.Registration, error) {
	q := `SELECT ` + registrationColumns + `
		FROM registrations
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`
	return r.queryList(ctx, q, userID)
}

func (r *RegistrationPostgres) UpdateStatus(ctx context.Context, id string, status model.RegistrationStatus) error {
	const q = `UPDATE registrations SET status = $2, updated_at = now() WHERE id = $1`
	return expectOne(r.db.ExecContext(ctx, q, id, string(status)))
}

func (r *RegistrationPostgres) SetPaymentIntent(ctx context.Context, id, paymentIntentID string) error {
	const q = `UPDATE registrations SET payment_intent_id = $2, updated_at = now() WHERE id = $1`
	return expectOne(r.db.ExecContext(ctx, q, id, paymentIntentID))
}

func (r *RegistrationPostgres) SetAttendance(ctx context.Context, id string, attendance model.Attendance, checkedInAt *time.Time) error {
	const q = `
		UPDATE registrations
		SET attendance = $2, checked_in_at = COALESCE($3, checked_in_at), updated_at = now()
		WHERE id = $1`
	return expectOne(r.db.ExecContext(ctx, q, id, string(attendance), checkedInAt))
}

func (r *RegistrationPostgres) MarkNoShows(ctx context.Context, workshopID string) (int64, error) {
	const q = `
		UPDATE registrations
		SET attendance = 'no_show', updated_at = now()
		WHERE workshop_id = $1 AND status = 'confirmed' AND attendance = 'unknown'`
	res, err := r.db.ExecContext(ctx, q, workshopID)
	if err != nil {
		return 0, mapError(err)
	}
	return res.RowsAffected()
}

func statusArray(statuses []model.RegistrationStatus) any {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return pq.Array(out)
}

// InterestPostgres is a PostgreSQL implementation of repository.InterestRepository.
type InterestPostgres struct {
	db DBTX
}

func NewInterestPostgres(db DBTX) *InterestPostgres {
	return &InterestPostgres{db: db}
}

var _ repository.InterestRepository = (*InterestPostgres)(nil)

func (r *InterestPostgres) Add(ctx context.Context, workshopID, userID string) error {
	const q = `
		INSERT INTO workshop_interests (workshop_id, user_id, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (workshop_id, user_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, q, workshopID, userID)
	return mapError(err)
}

func (r *InterestPostgres) Remove(ctx context.Context, workshopID, userID string) error {
	const q = `DELETE FROM workshop_interests WHERE workshop_id = $1 AND user_id = $2`
	_, err := r.db.ExecContext(ctx, q, workshopID, userID)
	return mapError(err)
}

func (r *InterestPostgres) Summary(ctx context.Context, workshopID, userID string) (*model.InterestSummary, error) {
	const q = `
		SELECT COUNT(*), COALESCE(bool_or(user_id = $2), false)
		FROM workshop_interests
		WHERE workshop_id = $1`
	out := model.InterestSummary{WorkshopID: workshopID}
	if err := r.db.QueryRowContext(ctx, q, workshopID, userID).Scan(&out.Count, &out.Interested); err != nil {
		return nil, mapError(err)
	}
	return &out, nil
}
