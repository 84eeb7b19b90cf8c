package postgres

import (
	"context"
	"database/sql"

	"clubapi/internal/model"
	"clubapi/internal/repository"
)

const invitationColumns = `id, email, role, status, invited_by, expires_at, accepted_by, accepted_at, created_at`

// InvitationPostgres is a PostgreSQL implementation of repository.InvitationRepository.
type InvitationPostgres struct {
	db DBTX
}

func NewInvitationPostgres(db DBTX) *InvitationPostgres {
	return &InvitationPostgres{db: db}
}

var _ repository.InvitationRepository = (*InvitationPostgres)(nil)

func scanInvitation(s scanner) (*model.Invitation, error) {
	var inv model.Invitation
	var acceptedBy sql.NullString
	var acceptedAt sql.NullTime
	if err := s.Scan(
		&inv.ID,
		&inv.Email,
		&inv.Role,
		&inv.Status,
		&inv.InvitedBy,
		&inv.ExpiresAt,
		&acceptedBy,
		&acceptedAt,
		&inv.CreatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	inv.AcceptedBy = acceptedBy.String
	inv.AcceptedAt = timePtr(acceptedAt)
	return &inv, nil
}

func (r *InvitationPostgres) Create(ctx context.Context, inv *model.Invitation, tokenHash string) (*model.Invitation, error) {
	q := `
		INSERT INTO invitations (id, email, role, status, token_hash, invited_by, expires_at, created_at)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8)
		RETURNING ` + invitationColumns
	row := r.db.QueryRowContext(ctx, q,
		inv.ID,
		inv.Email,
		string(inv.Role),
		string(inv.Status),
		tokenHash,
		inv.InvitedBy,
		inv.ExpiresAt,
		inv.CreatedAt,
	)
	return scanInvitation(row)
}

func (r *InvitationPostgres) FindByID(ctx context.Context, id string) (*model.Invitation, error) {
	q := `SELECT ` + invitationColumns + ` FROM invitations WHERE id = $1`
	return scanInvitation(r.db.QueryRowContext(ctx, q, id))
}

func (r *InvitationPostgres) FindByTokenHashForUpdate(ctx context.Context, tokenHash string) (*model.Invitation, error) {
	q := `SELECT ` + invitationColumns + ` FROM invitations WHERE token_hash = $1 FOR UPDATE`
	return scanInvitation(r.db.QueryRowContext(ctx, q, tokenHash))
}

func (r *InvitationPostgres) List(ctx context.Context, status model.InvitationStatus) ([]model.Invitation, error) {
	q := `SELECT ` + invitationColumns + `
		FROM invitations
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, string(status))
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	out := make([]model.Invitation, 0)
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (r *InvitationPostgres) UpdateStatus(ctx context.Context, inv *model.Invitation) error {
	const q = `UPDATE invitations SET status = $2, accepted_by = $3, accepted_at = $4 WHERE id = $1`
	return expectOne(r.db.ExecContext(ctx, q, inv.ID, string(inv.Status), nullString(inv.AcceptedBy), inv.AcceptedAt))
}

// MemberPostgres is a PostgreSQL implementation of repository.MemberRepository.
type MemberPostgres struct {
	db DBTX
}

func NewMemberPostgres(db DBTX) *MemberPostgres {
	return &MemberPostgres{db: db}
}

var _ repository.MemberRepository = (*MemberPostgres)(nil)

const memberColumns = `user_id, email, display_name, role, created_at, updated_at`

func scanMember(s scanner) (*model.Member, error) {
	var m model.Member
	if err := s.Scan(&m.UserID, &m.Email, &m.DisplayName, &m.Role, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	return &m, nil
}

func (r *MemberPostgres) FindByUserID(ctx context.Context, userID string) (*model.Member, error) {
	q := `SELECT ` + memberColumns + ` FROM user_roles WHERE user_id = $1`
	return scanMember(r.db.QueryRowContext(ctx, q, userID))
}

func (r *MemberPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Member], error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_roles`).Scan(&total); err != nil {
		return nil, mapError(err)
	}

	q := `SELECT ` + memberColumns + ` FROM user_roles ORDER BY email, user_id LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, q, pq.Limit, pq.Offset)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	items := make([]model.Member, 0)
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return &repository.PageResult[model.Member]{Items: items, Total: total}, nil
}

func (r *MemberPostgres) Upsert(ctx context.Context, m *model.Member) (*model.Member, error) {
	q := `
		INSERT INTO user_roles (user_id, email, display_name, role, created_at, updated_at)
		VALUES ($1, lower($2), $3, $4, now(), now())
		ON CONFLICT (user_id) DO UPDATE
		SET email = EXCLUDED.email, display_name = EXCLUDED.display_name, role = EXCLUDED.role, updated_at = now()
		RETURNING ` + memberColumns
	return scanMember(r.db.QueryRowContext(ctx, q, m.UserID, m.Email, m.DisplayName, string(m.Role)))
}

func (r *MemberPostgres) UpdateRole(ctx context.Context, userID string, role model.Role) error {
	const q = `UPDATE user_roles SET role = $2, updated_at = now() WHERE user_id = $1`
	return expectOne(r.db.ExecContext(ctx, q, userID, string(role)))
}
